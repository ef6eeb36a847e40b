package projections_test

import (
	"testing"
	"time"

	"doubles/internal/application/projections"
	"doubles/internal/domain/session"
)

func TestBuildBoardPartitions(t *testing.T) {
	now := time.Date(2025, 9, 10, 10, 0, 0, 0, time.UTC) // a Wednesday

	sessions := []session.Session{
		{ID: "past", Date: "2025-09-03"},
		{ID: "today", Date: "2025-09-10"},
		{ID: "future", Date: "2025-09-17"},
	}

	view := projections.BuildBoard(sessions, now, time.Wednesday, 4)

	if len(view.Current) != 2 {
		t.Fatalf("current = %v, want today and future", idsOf(view.Current))
	}
	if view.Current[0].ID != "today" {
		t.Errorf("nearest current session = %s, want today", view.Current[0].ID)
	}
	if len(view.Archived) != 1 || view.Archived[0].ID != "past" {
		t.Errorf("archived = %v, want [past]", idsOf(view.Archived))
	}
}

// Dates with a session already organized never show up as available.
func TestBuildBoardAvailableDatesExcludeOrganized(t *testing.T) {
	now := time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC) // a Monday

	sessions := []session.Session{
		{ID: "s1", Date: "2025-09-10"},
	}

	view := projections.BuildBoard(sessions, now, time.Wednesday, 3)

	want := []string{"2025-09-17", "2025-09-24", "2025-10-01"}
	if len(view.AvailableDates) != len(want) {
		t.Fatalf("available = %v, want %v", view.AvailableDates, want)
	}
	for i := range want {
		if view.AvailableDates[i] != want[i] {
			t.Errorf("available[%d] = %s, want %s", i, view.AvailableDates[i], want[i])
		}
	}
}

func TestBuildBoardEmpty(t *testing.T) {
	now := time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC)
	view := projections.BuildBoard(nil, now, time.Wednesday, 8)

	if len(view.Current) != 0 || len(view.Archived) != 0 {
		t.Errorf("empty input produced sessions: %+v", view)
	}
	if len(view.AvailableDates) != 8 {
		t.Errorf("available dates = %d, want 8", len(view.AvailableDates))
	}
}

func idsOf(sessions []session.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
