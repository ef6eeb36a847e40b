package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/domain/session"
)

// SignUpInput carries input for the sign-up orchestrator.
type SignUpInput struct {
	SessionID  string
	PlayerName string
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteSignUp appends the player to the session's signup list and
// persists the full list as one field update, then reloads the board.
// Signing up twice with the same trimmed name is a no-op, which makes the
// intent idempotent under immediate repetition. A full session is never
// rejected; the player lands on the waiting list by position.
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) error {
	s, ok := deps.Board.Find(input.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	// Work on a copy so a failed update leaves the board untouched.
	s.Signups = append([]string(nil), s.Signups...)
	if err := s.Join(input.PlayerName); err != nil {
		if errors.Is(err, session.ErrAlreadySignedUp) {
			return nil
		}
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
	slog.Info("player_signed_up", "id", s.ID, "signups", len(s.Signups))

	return reload(ctx, deps.Store, deps.Board)
}
