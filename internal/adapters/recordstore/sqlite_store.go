package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"doubles/internal/domain/session"
)

// SQLiteStore implements Store over a local SQLite table. It exists for
// development and tests when no Airtable credential is configured. Field
// text is stored exactly as the remote store would hold it (newline-joined
// signups, JSON text for teams and scores), so the codec and the
// reload-after-mutate discipline behave identically against either backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the backing table if it does not exist.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS session_record (
		id        TEXT PRIMARY KEY,
		date      TEXT NOT NULL,
		time      TEXT NOT NULL,
		organizer TEXT NOT NULL,
		courts    INTEGER NOT NULL DEFAULT 2,
		signups   TEXT NOT NULL DEFAULT '',
		teams     TEXT,
		scores    TEXT,
		receipt1  TEXT,
		receipt2  TEXT
	)`)
	if err != nil {
		return fmt.Errorf("migrate session_record: %w", err)
	}
	return nil
}

// ListAll retrieves every record ordered by date ascending.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]session.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, time, organizer, courts, signups, teams, scores, receipt1, receipt2
		 FROM session_record ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var results []session.Session
	for rows.Next() {
		var id, date, timeLabel, organizer, signups string
		var courts int64
		var teams, scores, receipt1, receipt2 sql.NullString
		if err := rows.Scan(&id, &date, &timeLabel, &organizer, &courts, &signups,
			&teams, &scores, &receipt1, &receipt2); err != nil {
			return nil, err
		}

		fields := map[string]any{
			FieldDate:      date,
			FieldTime:      timeLabel,
			FieldOrganizer: organizer,
			FieldCourts:    courts,
			FieldSignups:   signups,
		}
		if teams.Valid {
			fields[FieldTeams] = teams.String
		}
		if scores.Valid {
			fields[FieldScores] = scores.String
		}
		if receipt1.Valid {
			fields[FieldReceipt1] = receipt1.String
		}
		if receipt2.Valid {
			fields[FieldReceipt2] = receipt2.String
		}
		results = append(results, decodeSession(id, fields))
	}
	return results, rows.Err()
}

// Create inserts a record with a generated Airtable-shaped id.
func (s *SQLiteStore) Create(ctx context.Context, draft session.Draft) (string, error) {
	id := newRecordID()
	fields := draftFields(draft)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_record (id, date, time, organizer, courts, signups) VALUES (?, ?, ?, ?, ?, ?)`,
		id, fields[FieldDate], fields[FieldTime], fields[FieldOrganizer], fields[FieldCourts], fields[FieldSignups])
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update replaces only the named fields.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	var sets []string
	var args []any
	for name, value := range fields {
		column, err := columnFor(name)
		if err != nil {
			return err
		}
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	args = append(args, id)
	_, err := s.db.ExecContext(ctx,
		"UPDATE session_record SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// Delete removes the record.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM session_record WHERE id = ?", id)
	return err
}

// columnFor maps an external field name to its local column.
func columnFor(field string) (string, error) {
	switch field {
	case FieldDate:
		return "date", nil
	case FieldTime:
		return "time", nil
	case FieldOrganizer:
		return "organizer", nil
	case FieldCourts:
		return "courts", nil
	case FieldSignups:
		return "signups", nil
	case FieldTeams:
		return "teams", nil
	case FieldScores:
		return "scores", nil
	case FieldReceipt1:
		return "receipt1", nil
	case FieldReceipt2:
		return "receipt2", nil
	default:
		return "", fmt.Errorf("unknown record field %q", field)
	}
}

// newRecordID generates an Airtable-shaped record id (rec + 14 characters).
func newRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14]
}
