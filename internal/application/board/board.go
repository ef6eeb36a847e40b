package board

import (
	"errors"
	"sync"

	"doubles/internal/domain/session"
)

// ErrBusy is returned when a mutation chain is refused because another one
// is already in flight.
var ErrBusy = errors.New("another update is already in flight")

// Board owns the single in-memory copy of the session list. The list is
// only ever replaced wholesale after a full reload from the record store;
// there is no partial or in-place patching. A busy gate serializes mutation
// chains: each user intent performs at most one mutate-then-reload sequence
// before the next may start.
type Board struct {
	mu       sync.Mutex
	sessions []session.Session
	busy     bool
}

// New creates an empty board.
func New() *Board {
	return &Board{}
}

// Begin marks a mutation chain in flight. A second Begin before End returns
// ErrBusy; the caller surfaces the refusal instead of queueing.
func (b *Board) Begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return ErrBusy
	}
	b.busy = true
	return nil
}

// End releases the busy gate.
func (b *Board) End() {
	b.mu.Lock()
	b.busy = false
	b.mu.Unlock()
}

// ReplaceAll swaps in a freshly reloaded session list. This is the only
// mutation entry point.
func (b *Board) ReplaceAll(sessions []session.Session) {
	b.mu.Lock()
	b.sessions = sessions
	b.mu.Unlock()
}

// Snapshot returns a copy of the current session list. Callers must not
// mutate the inner slices of the returned sessions.
func (b *Board) Snapshot() []session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]session.Session, len(b.sessions))
	copy(out, b.sessions)
	return out
}

// Find returns the session with the given id from the current list.
func (b *Board) Find(id string) (session.Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return session.Session{}, false
}
