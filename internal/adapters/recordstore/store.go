package recordstore

import (
	"context"
	"errors"
	"fmt"

	"doubles/internal/domain/session"
)

// Fields is a partial field map for an update: only the named fields are
// replaced, omitted fields keep their stored value.
type Fields map[string]any

// Store persists sessions in the club's record store. The store is the
// sole source of truth: callers never patch local state after a mutation,
// they reload everything with ListAll. There are no transactions and no
// locking; concurrent writers race at last-write-wins granularity per
// update call.
type Store interface {
	// ListAll fetches every record sorted by date ascending. Malformed
	// optional fields decode leniently: a per-field parse failure yields an
	// absent field plus a decode warning, never a failed fetch.
	ListAll(ctx context.Context) ([]session.Session, error)

	// Create inserts a new record from the draft and returns the
	// store-assigned id. The organizer is seeded as the first signup.
	Create(ctx context.Context, draft session.Draft) (string, error)

	// Update replaces only the named fields of the record.
	Update(ctx context.Context, id string, fields Fields) error

	// Delete removes the record.
	Delete(ctx context.Context, id string) error
}

// ErrUnavailable indicates the record store could not be reached at all
// (network or transport failure).
var ErrUnavailable = errors.New("record store unavailable")

// APIError is a rejection returned by the record store.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("record store rejected request: status %d: %s", e.Status, e.Body)
}
