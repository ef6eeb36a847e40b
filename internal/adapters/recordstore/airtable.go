package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"doubles/internal/domain/session"
)

// AirtableStore implements Store against the Airtable REST API. The bearer
// credential lives in process memory only. No retries: every failure
// surfaces to the caller and waits for a new user action.
type AirtableStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAirtableStore creates a store for one base and table.
// PRE: apiKey, baseID and table identify an existing Airtable table
// POST: Returns a ready-to-use store
func NewAirtableStore(apiKey, baseID, table string) *AirtableStore {
	return &AirtableStore{
		client:  &http.Client{},
		baseURL: fmt.Sprintf("https://api.airtable.com/v0/%s/%s", baseID, url.PathEscape(table)),
		apiKey:  apiKey,
	}
}

// listResponse is one page of the Airtable list endpoint.
type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

// record is the Airtable wire shape of a single row.
type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ListAll fetches every record sorted by date ascending, following the
// pagination cursor until exhausted.
func (s *AirtableStore) ListAll(ctx context.Context) ([]session.Session, error) {
	var sessions []session.Session
	offset := ""
	for {
		q := url.Values{}
		q.Set("sort[0][field]", FieldDate)
		q.Set("sort[0][direction]", "asc")
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := s.call(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil, &page); err != nil {
			slog.Error("airtable_list_failed", "error", err.Error())
			return nil, err
		}
		for _, rec := range page.Records {
			sessions = append(sessions, decodeSession(rec.ID, rec.Fields))
		}
		if page.Offset == "" {
			return sessions, nil
		}
		offset = page.Offset
	}
}

// Create inserts a single record and returns the store-assigned id.
func (s *AirtableStore) Create(ctx context.Context, draft session.Draft) (string, error) {
	body := map[string]any{"fields": draftFields(draft)}
	var created record
	if err := s.call(ctx, http.MethodPost, s.baseURL, body, &created); err != nil {
		slog.Error("airtable_create_failed", "error", err.Error(), "date", draft.Date)
		return "", err
	}
	slog.Info("airtable_record_created", "id", created.ID, "date", draft.Date)
	return created.ID, nil
}

// Update patches only the named fields of the record; omitted fields keep
// their stored value.
func (s *AirtableStore) Update(ctx context.Context, id string, fields Fields) error {
	body := map[string]any{"fields": fields}
	if err := s.call(ctx, http.MethodPatch, s.baseURL+"/"+id, body, nil); err != nil {
		slog.Error("airtable_update_failed", "error", err.Error(), "id", id)
		return err
	}
	return nil
}

// Delete removes the record.
func (s *AirtableStore) Delete(ctx context.Context, id string) error {
	if err := s.call(ctx, http.MethodDelete, s.baseURL+"/"+id, nil, nil); err != nil {
		slog.Error("airtable_delete_failed", "error", err.Error(), "id", id)
		return err
	}
	return nil
}

// call performs one authenticated request. Transport failures map to
// ErrUnavailable; non-2xx responses map to *APIError with the response
// body. When out is non-nil the response body is decoded into it.
func (s *AirtableStore) call(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
