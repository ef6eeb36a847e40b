package orchestrators

import (
	"context"
	"log/slog"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
)

// DeleteSessionInput carries input for the delete-session orchestrator.
type DeleteSessionInput struct {
	SessionID string
}

// DeleteSessionDeps holds dependencies for DeleteSession.
type DeleteSessionDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteDeleteSession removes the whole session record and reloads the
// board. Deletion is permanent; the UI is expected to confirm first.
func ExecuteDeleteSession(ctx context.Context, input DeleteSessionInput, deps DeleteSessionDeps) error {
	if _, ok := deps.Board.Find(input.SessionID); !ok {
		return ErrSessionNotFound
	}

	if err := deps.Board.Begin(); err != nil {
		return err
	}
	defer deps.Board.End()

	if err := deps.Store.Delete(ctx, input.SessionID); err != nil {
		return err
	}
	slog.Info("session_deleted", "id", input.SessionID)

	return reload(ctx, deps.Store, deps.Board)
}
