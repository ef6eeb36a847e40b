package calendar

import (
	"math"
	"sort"
	"time"

	"doubles/internal/domain/session"
)

// DateFormat is the wire format for session dates.
const DateFormat = "2006-01-02"

// sameDayCutoffHour is the hour after which a slot on the current day is no
// longer offered: a match starting the same evening is already imminent.
const sameDayCutoffHour = 12

// maxCandidateWeeks bounds the forward scan so that exclusion-heavy inputs
// still terminate.
const maxCandidateWeeks = 104

// NextOccurrences returns the next count dates falling on weekday as
// YYYY-MM-DD strings, skipping any date present in excluding. The scan
// starts from now: if today is the target weekday but the clock is past the
// same-day cutoff, the first occurrence moves to the following week. From
// the first occurrence, candidates advance in fixed 7-day steps until count
// dates are collected or the candidate ceiling is reached.
// POST: results are strictly ascending and exactly 7k days apart
func NextOccurrences(now time.Time, weekday time.Weekday, count int, excluding map[string]bool) []string {
	cursor := midnight(now)
	for cursor.Weekday() != weekday {
		cursor = cursor.AddDate(0, 0, 1)
	}
	if now.Weekday() == weekday && now.Hour() > sameDayCutoffHour {
		cursor = cursor.AddDate(0, 0, 7)
	}

	dates := make([]string, 0, count)
	for week := 0; week < maxCandidateWeeks && len(dates) < count; week++ {
		d := cursor.AddDate(0, 0, week*7).Format(DateFormat)
		if !excluding[d] {
			dates = append(dates, d)
		}
	}
	return dates
}

// IsArchived reports whether a session dated sessionDate has fully elapsed:
// true iff today is on or after the day following the session date. A
// session dated today is not archived; one dated yesterday is. Unparseable
// dates are treated as not archived so the record stays visible.
func IsArchived(sessionDate string, today time.Time) bool {
	d, err := time.ParseInLocation(DateFormat, sessionDate, today.Location())
	if err != nil {
		return false
	}
	return !midnight(today).Before(d.AddDate(0, 0, 1))
}

// SortByProximity orders sessions by ascending absolute day-distance from
// today. Distance ties prefer the chronologically later date; the sort is
// otherwise stable. The same rule applies to current and archived lists,
// including the later-date tie-break. For archived sessions this is
// deliberately not a "most recent first" recency sort.
func SortByProximity(sessions []session.Session, today time.Time) {
	t := midnight(today)
	sort.SliceStable(sessions, func(i, j int) bool {
		di := distanceDays(sessions[i].Date, t)
		dj := distanceDays(sessions[j].Date, t)
		if di != dj {
			return di < dj
		}
		return sessions[i].Date > sessions[j].Date
	})
}

// distanceDays returns the absolute whole-day distance between a YYYY-MM-DD
// date and the given midnight. Unparseable dates sort last.
func distanceDays(date string, today time.Time) int {
	d, err := time.ParseInLocation(DateFormat, date, today.Location())
	if err != nil {
		return math.MaxInt32
	}
	days := int(math.Round(d.Sub(today).Hours() / 24))
	if days < 0 {
		return -days
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
