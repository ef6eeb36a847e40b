package recordstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"doubles/internal/domain/session"
)

// External field names on the record store.
const (
	FieldDate      = "Date"
	FieldTime      = "Time"
	FieldOrganizer = "Organizer"
	FieldCourts    = "Courts"
	FieldSignups   = "Signups"
	FieldTeams     = "Teams"
	FieldScores    = "Scores"
	FieldReceipt1  = "Receipt1"
	FieldReceipt2  = "Receipt2"
)

// defaultCourts applies when the Courts field is absent on a record.
const defaultCourts = 2

// SignupsText encodes the signup list as the store's newline-joined text.
func SignupsText(names []string) string {
	return strings.Join(names, "\n")
}

// TeamsText encodes team assignments as the store's JSON text field.
func TeamsText(t *session.Teams) (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode teams: %w", err)
	}
	return string(raw), nil
}

// ScoresText encodes recorded scores as the store's JSON text field.
func ScoresText(sc *session.Scores) (string, error) {
	raw, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("encode scores: %w", err)
	}
	return string(raw), nil
}

// ReceiptValue encodes a receipt for storage: the hosted URL when present,
// otherwise the inline data-URL text.
func ReceiptValue(r *session.Receipt) any {
	if r == nil {
		return ""
	}
	if r.URL != "" {
		return r.URL
	}
	return r.Data
}

// draftFields builds the field map for a create. The organizer signs up as
// player #1 by convention, so Signups is seeded with the organizer name.
func draftFields(d session.Draft) map[string]any {
	return map[string]any{
		FieldDate:      d.Date,
		FieldTime:      d.Time,
		FieldOrganizer: d.Organizer,
		FieldCourts:    d.Courts,
		FieldSignups:   d.Organizer,
	}
}

// decodeSession converts a raw record field map into a Session. Required
// text fields decode permissively (absent means empty); the optional JSON
// fields decode leniently, turning a per-field parse failure into a decode
// warning instead of a failed record.
func decodeSession(id string, fields map[string]any) session.Session {
	s := session.Session{
		ID:        id,
		Date:      stringField(fields, FieldDate),
		Time:      stringField(fields, FieldTime),
		Organizer: stringField(fields, FieldOrganizer),
		Courts:    intField(fields, FieldCourts, defaultCourts),
		Signups:   decodeSignups(stringField(fields, FieldSignups)),
	}

	if raw := stringField(fields, FieldTeams); strings.TrimSpace(raw) != "" {
		var teams session.Teams
		if err := json.Unmarshal([]byte(raw), &teams); err != nil {
			s.Decode = append(s.Decode, warn(id, FieldTeams, err))
		} else {
			s.Teams = &teams
		}
	}

	if raw := stringField(fields, FieldScores); strings.TrimSpace(raw) != "" {
		var scores session.Scores
		if err := json.Unmarshal([]byte(raw), &scores); err != nil {
			s.Decode = append(s.Decode, warn(id, FieldScores, err))
		} else {
			s.Scores = &scores
		}
	}

	for i, field := range []string{FieldReceipt1, FieldReceipt2} {
		v, ok := fields[field]
		if !ok {
			continue
		}
		r, err := decodeReceipt(v)
		if err != nil {
			s.Decode = append(s.Decode, warn(id, field, err))
			continue
		}
		s.Receipts[i] = r
	}

	return s
}

// warn records and logs a single lenient-decode failure.
func warn(id, field string, err error) session.DecodeWarning {
	slog.Warn("session_field_decode_failed", "id", id, "field", field, "error", err.Error())
	return session.DecodeWarning{Field: field, Reason: err.Error()}
}

// decodeSignups splits the newline-joined signup text, trimming entries and
// dropping blanks.
func decodeSignups(text string) []string {
	if text == "" {
		return nil
	}
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// decodeReceipt handles the two shapes the store may hold: an
// attachment-style list of objects with a url, or a raw string that is
// either a hosted URL or inline data-URL text.
func decodeReceipt(v any) (*session.Receipt, error) {
	switch value := v.(type) {
	case string:
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, nil
		}
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			return &session.Receipt{URL: value}, nil
		}
		return &session.Receipt{Data: value}, nil
	case []any:
		if len(value) == 0 {
			return nil, nil
		}
		attachment, ok := value[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("attachment entry is %T, want object", value[0])
		}
		url, ok := attachment["url"].(string)
		if !ok || url == "" {
			return nil, fmt.Errorf("attachment entry has no url")
		}
		return &session.Receipt{URL: url}, nil
	default:
		return nil, fmt.Errorf("receipt field is %T, want string or attachment list", v)
	}
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, key string, fallback int) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}
