package orchestrators

import (
	"context"
	"errors"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
)

// ErrSessionNotFound is returned when an intent names a session id that is
// not on the board. The caller should refresh and retry by hand; another
// client may have deleted the session.
var ErrSessionNotFound = errors.New("session not found")

// RefreshBoardDeps holds dependencies for RefreshBoard.
type RefreshBoardDeps struct {
	Store recordstore.Store
	Board *board.Board
}

// ExecuteRefreshBoard reloads every session from the record store and
// replaces the board wholesale. The store is the sole source of truth:
// local state is never patched, only replaced.
// POST: on success the board holds exactly what the store returned; on
// failure the board is untouched
func ExecuteRefreshBoard(ctx context.Context, deps RefreshBoardDeps) error {
	sessions, err := deps.Store.ListAll(ctx)
	if err != nil {
		return err
	}
	deps.Board.ReplaceAll(sessions)
	return nil
}

// reload is the unconditional post-mutation fetch every mutating
// orchestrator ends with.
func reload(ctx context.Context, store recordstore.Store, b *board.Board) error {
	return ExecuteRefreshBoard(ctx, RefreshBoardDeps{Store: store, Board: b})
}
