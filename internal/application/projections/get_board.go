package projections

import (
	"time"

	"doubles/internal/domain/calendar"
	"doubles/internal/domain/session"
)

// BoardView is the read model for the match board: current sessions,
// archived sessions, and the open weekday dates an organizer can still
// claim. Archived-ness is recomputed from dates on every build, never
// stored.
type BoardView struct {
	Current        []session.Session
	Archived       []session.Session
	AvailableDates []string
}

// BuildBoard partitions sessions into current and archived by date, sorts
// both partitions by proximity to now (same rule, same tie-break), and
// computes the next upcoming occurrence dates that have no session yet.
// POST: every input session appears in exactly one partition
func BuildBoard(sessions []session.Session, now time.Time, weekday time.Weekday, upcoming int) BoardView {
	organized := make(map[string]bool, len(sessions))
	var view BoardView
	for _, s := range sessions {
		organized[s.Date] = true
		if calendar.IsArchived(s.Date, now) {
			view.Archived = append(view.Archived, s)
		} else {
			view.Current = append(view.Current, s)
		}
	}
	calendar.SortByProximity(view.Current, now)
	calendar.SortByProximity(view.Archived, now)
	view.AvailableDates = calendar.NextOccurrences(now, weekday, upcoming, organized)
	return view
}
