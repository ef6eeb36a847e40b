package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/domain/session"
)

// CreateSessionInput carries input for the create-session orchestrator.
type CreateSessionInput struct {
	Date      string
	Time      string
	Organizer string
	Courts    int // 0 means the club default of 2
}

// CreateSessionDeps holds dependencies for CreateSession.
type CreateSessionDeps struct {
	Store   recordstore.Store
	Board   *board.Board
	Weekday time.Weekday // the club's configured match weekday
}

// ExecuteCreateSession validates the draft, creates the record (the
// organizer is seeded as signup #1 by the store adapter), and reloads the
// board.
// POST: returns the store-assigned session id
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps CreateSessionDeps) (string, error) {
	draft := session.Draft{
		Date:      strings.TrimSpace(input.Date),
		Time:      strings.TrimSpace(input.Time),
		Organizer: strings.TrimSpace(input.Organizer),
		Courts:    input.Courts,
	}
	if draft.Courts == 0 {
		draft.Courts = session.MaxCourts
	}
	if err := draft.Validate(deps.Weekday); err != nil {
		return "", err
	}

	if err := deps.Board.Begin(); err != nil {
		return "", err
	}
	defer deps.Board.End()

	id, err := deps.Store.Create(ctx, draft)
	if err != nil {
		return "", err
	}
	slog.Info("session_created", "id", id, "date", draft.Date, "organizer", draft.Organizer, "courts", draft.Courts)

	return id, reload(ctx, deps.Store, deps.Board)
}
