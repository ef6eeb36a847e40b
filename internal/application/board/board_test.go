package board_test

import (
	"errors"
	"testing"

	"doubles/internal/application/board"
	"doubles/internal/domain/session"
)

func TestBusyGate(t *testing.T) {
	b := board.New()

	if err := b.Begin(); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	if err := b.Begin(); !errors.Is(err, board.ErrBusy) {
		t.Fatalf("second Begin = %v, want ErrBusy", err)
	}

	b.End()
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin after End: %v", err)
	}
	b.End()
}

func TestReplaceAllAndFind(t *testing.T) {
	b := board.New()
	b.ReplaceAll([]session.Session{
		{ID: "rec1", Date: "2025-09-03"},
		{ID: "rec2", Date: "2025-09-10"},
	})

	s, ok := b.Find("rec2")
	if !ok || s.Date != "2025-09-10" {
		t.Errorf("Find(rec2) = %+v, %v", s, ok)
	}
	if _, ok := b.Find("rec9"); ok {
		t.Error("Find(rec9) found a session that does not exist")
	}

	// A second ReplaceAll discards the old list wholesale.
	b.ReplaceAll([]session.Session{{ID: "rec3"}})
	if _, ok := b.Find("rec1"); ok {
		t.Error("stale session survived ReplaceAll")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := board.New()
	b.ReplaceAll([]session.Session{{ID: "rec1"}})

	snap := b.Snapshot()
	snap[0].ID = "mutated"

	if s, _ := b.Find("rec1"); s.ID != "rec1" {
		t.Error("mutating a snapshot leaked into the board")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	b := board.New()
	if snap := b.Snapshot(); len(snap) != 0 {
		t.Errorf("empty board snapshot = %v", snap)
	}
}
