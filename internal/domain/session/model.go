package session

import (
	"errors"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// Player limits per court count. One court hosts a single doubles rotation,
// two courts host two.
const (
	PlayersPerCourt = 4
	MaxCourts       = 2
)

// FieldTextCeiling is the number of characters after which the record store
// silently truncates a long-text field. Inline receipt data at or past this
// length must be treated as cut off.
const FieldTextCeiling = 100000

// Domain errors
var (
	ErrEmptyDate       = errors.New("date cannot be empty")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrWrongWeekday    = errors.New("date must fall on the club's match weekday")
	ErrEmptyTime       = errors.New("time cannot be empty")
	ErrEmptyOrganizer  = errors.New("organizer cannot be empty")
	ErrInvalidCourts   = errors.New("courts must be 1 or 2")
	ErrEmptyPlayerName = errors.New("player name cannot be empty")
	ErrAlreadySignedUp = errors.New("player is already signed up")
	ErrNotSignedUp     = errors.New("player is not signed up")
)

// Receipt is a court-fee document attached to a session: either a hosted
// URL or inline data-URL text, never both.
type Receipt struct {
	URL  string
	Data string
}

// Truncated reports whether inline data hit the store's text ceiling,
// meaning the stored document was cut off and should be surfaced as a
// warning rather than rendered.
func (r *Receipt) Truncated() bool {
	return r != nil && r.URL == "" && len(r.Data) >= FieldTextCeiling
}

// DecodeWarning records one optional field that failed to parse when the
// session was fetched. The field decodes to absent; the record and the rest
// of the batch are unaffected.
type DecodeWarning struct {
	Field  string // "Teams", "Scores", "Receipt1", "Receipt2"
	Reason string
}

// DecodeReport collects the decode warnings for one fetched session.
type DecodeReport []DecodeWarning

// Session represents one organized match slot.
// Signup order is insertion order; the first PlayerLimit() entries are the
// confirmed roster, the remainder the waiting list. Archived-ness is never
// stored on the entity; it is derived from Date at read time.
type Session struct {
	ID        string
	Date      string // YYYY-MM-DD, on the club's match weekday
	Time      string // free text, e.g. "6:00 PM - 8:00 PM"
	Organizer string // by convention also Signups[0] at creation
	Courts    int    // 1 or 2
	Signups   []string
	Teams     *Teams
	Scores    *Scores
	Receipts  [2]*Receipt // one per court
	Decode    DecodeReport
}

// PlayerLimit returns the confirmed-roster capacity: 4 players for one
// court, 8 for two.
func (s *Session) PlayerLimit() int {
	if s.Courts == 1 {
		return PlayersPerCourt
	}
	return PlayersPerCourt * MaxCourts
}

// Join appends a player to the signup list. The name is trimmed and matched
// case-sensitively; a duplicate yields ErrAlreadySignedUp with the roster
// unchanged. Capacity is advisory: Join never rejects a full session, the
// overflow simply lands on the waiting list by position.
// POST: on success the player is the last entry in Signups
func (s *Session) Join(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyPlayerName
	}
	for _, p := range s.Signups {
		if p == name {
			return ErrAlreadySignedUp
		}
	}
	s.Signups = append(s.Signups, name)
	return nil
}

// Leave removes the first exact match of name from the signup list.
// Waiting-list promotion is implicit: positional re-indexing after removal
// moves the first waiting entry inside PlayerLimit().
func (s *Session) Leave(name string) error {
	for i, p := range s.Signups {
		if p == name {
			s.Signups = append(s.Signups[:i], s.Signups[i+1:]...)
			return nil
		}
	}
	return ErrNotSignedUp
}

// Confirmed returns the players inside the limit, in signup order.
func (s *Session) Confirmed() []string {
	limit := s.PlayerLimit()
	if len(s.Signups) <= limit {
		return s.Signups
	}
	return s.Signups[:limit]
}

// Waiting returns the players past the limit, in signup order.
func (s *Session) Waiting() []string {
	limit := s.PlayerLimit()
	if len(s.Signups) <= limit {
		return nil
	}
	return s.Signups[limit:]
}

// IsFull reports whether the confirmed roster is at capacity. Used for UI
// warnings only; signup is never blocked.
func (s *Session) IsFull() bool {
	return len(s.Signups) >= s.PlayerLimit()
}

// HasSignup reports whether the trimmed name is already on the list.
func (s *Session) HasSignup(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range s.Signups {
		if p == name {
			return true
		}
	}
	return false
}

// Draft carries the fields an organizer supplies when creating a session.
type Draft struct {
	Date      string
	Time      string
	Organizer string
	Courts    int
}

// Validate checks the draft against creation rules. The match weekday is
// club configuration, so it is passed in rather than fixed here. Sessions
// already persisted are never revalidated against the weekday.
// POST: Returns nil if valid, a domain error otherwise
func (d *Draft) Validate(weekday time.Weekday) error {
	if strings.TrimSpace(d.Date) == "" {
		return ErrEmptyDate
	}
	day, err := time.Parse(dateFormat, d.Date)
	if err != nil {
		return ErrInvalidDate
	}
	if day.Weekday() != weekday {
		return ErrWrongWeekday
	}
	if strings.TrimSpace(d.Time) == "" {
		return ErrEmptyTime
	}
	if strings.TrimSpace(d.Organizer) == "" {
		return ErrEmptyOrganizer
	}
	if d.Courts < 1 || d.Courts > MaxCourts {
		return ErrInvalidCourts
	}
	return nil
}
