package recordstore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"doubles/internal/adapters/recordstore"
	"doubles/internal/domain/session"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := recordstore.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLiteStoreCreateAndList(t *testing.T) {
	store := recordstore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, session.Draft{
		Date: "2025-09-03", Time: "6 PM", Organizer: "Amy", Courts: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(id, "rec") || len(id) != 17 {
		t.Errorf("id = %q, want rec-prefixed 17-char id", id)
	}

	sessions, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.ID != id || s.Date != "2025-09-03" || s.Courts != 1 {
		t.Errorf("session = %+v", s)
	}
	if len(s.Signups) != 1 || s.Signups[0] != "Amy" {
		t.Errorf("signups = %v, want organizer seeded", s.Signups)
	}
}

func TestSQLiteStoreListOrderedByDate(t *testing.T) {
	store := recordstore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	for _, date := range []string{"2025-09-17", "2025-09-03", "2025-09-10"} {
		if _, err := store.Create(ctx, session.Draft{Date: date, Time: "6 PM", Organizer: "Amy", Courts: 2}); err != nil {
			t.Fatalf("Create %s: %v", date, err)
		}
	}

	sessions, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []string{"2025-09-03", "2025-09-10", "2025-09-17"}
	for i, date := range want {
		if sessions[i].Date != date {
			t.Errorf("session[%d].Date = %s, want %s", i, sessions[i].Date, date)
		}
	}
}

func TestSQLiteStoreUpdate(t *testing.T) {
	store := recordstore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, session.Draft{Date: "2025-09-03", Time: "6 PM", Organizer: "Amy", Courts: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	teams := &session.Teams{{Player1: "Amy", Player2: "Bo"}}
	teamsText, err := recordstore.TeamsText(teams)
	if err != nil {
		t.Fatalf("TeamsText: %v", err)
	}
	err = store.Update(ctx, id, recordstore.Fields{
		recordstore.FieldSignups: "Amy\nBo",
		recordstore.FieldTeams:   teamsText,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	sessions, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	s := sessions[0]
	if len(s.Signups) != 2 {
		t.Errorf("signups = %v, want 2 entries", s.Signups)
	}
	if s.Teams == nil || s.Teams[0].Player2 != "Bo" {
		t.Errorf("teams = %+v", s.Teams)
	}
	// Untouched fields keep their values.
	if s.Time != "6 PM" || s.Organizer != "Amy" {
		t.Errorf("untouched fields changed: %+v", s)
	}
}

func TestSQLiteStoreUpdateUnknownField(t *testing.T) {
	store := recordstore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, session.Draft{Date: "2025-09-03", Time: "6 PM", Organizer: "Amy", Courts: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Update(ctx, id, recordstore.Fields{"Nope": "x"}); err == nil {
		t.Error("Update accepted an unknown field")
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := recordstore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, session.Draft{Date: "2025-09-03", Time: "6 PM", Organizer: "Amy", Courts: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	sessions, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions after delete, want 0", len(sessions))
	}
}
