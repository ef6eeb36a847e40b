package orchestrators

import (
	"context"
	"log/slog"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
)

// CancelSignupInput carries input for the cancel-signup orchestrator.
type CancelSignupInput struct {
	SessionID  string
	PlayerName string
}

// CancelSignupDeps holds dependencies for CancelSignup.
type CancelSignupDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteCancelSignup removes the first exact match of the player from the
// signup list and persists the full list, then reloads the board. There is
// no explicit waiting-list promotion: removing a confirmed player
// re-indexes everyone behind them, which pulls the first waiting entry
// inside the limit.
func ExecuteCancelSignup(ctx context.Context, input CancelSignupInput, deps CancelSignupDeps) error {
	s, ok := deps.Board.Find(input.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	s.Signups = append([]string(nil), s.Signups...)
	if err := s.Leave(input.PlayerName); err != nil {
		return err
	}

	if err := deps.Board.Begin(); err != nil {
		return err
	}
	defer deps.Board.End()

	fields := recordstore.Fields{recordstore.FieldSignups: recordstore.SignupsText(s.Signups)}
	if err := deps.Store.Update(ctx, s.ID, fields); err != nil {
		return err
	}
	slog.Info("signup_cancelled", "id", s.ID, "signups", len(s.Signups))

	return reload(ctx, deps.Store, deps.Board)
}
