package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"doubles/internal/adapters/http/middleware"
	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/application/orchestrators"
	"doubles/internal/application/projections"
	"doubles/internal/domain/session"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write_json_failed", "error", err.Error())
	}
}

// intentError maps a failed user intent to a response. Repository failures
// return a generic 502 and leave previously displayed state untouched;
// validation failures echo the domain message.
func intentError(w http.ResponseWriter, err error) {
	var apiErr *recordstore.APIError
	switch {
	case errors.Is(err, board.ErrBusy):
		http.Error(w, "another update is in flight, try again", http.StatusConflict)
	case errors.Is(err, orchestrators.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, recordstore.ErrUnavailable):
		slog.Error("record_store_unreachable", "error", err.Error())
		http.Error(w, "record store unreachable", http.StatusBadGateway)
	case errors.As(err, &apiErr):
		slog.Error("record_store_rejected", "status", apiErr.Status, "body", apiErr.Body)
		http.Error(w, "record store rejected the request", http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// requireAuth wraps an API handler with the session check.
func requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireAuth(h).ServeHTTP
}

// registerRoutes wires the JSON API.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("GET /api/board", requireAuth(handleBoard))
	mux.HandleFunc("GET /api/club-info", requireAuth(handleClubInfo))
	mux.HandleFunc("GET /api/perf", requireAuth(handlePerf))
	mux.HandleFunc("POST /api/sessions", requireAuth(handleCreateSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", requireAuth(handleDeleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/signups", requireAuth(handleSignUp))
	mux.HandleFunc("DELETE /api/sessions/{id}/signups/{name}", requireAuth(handleCancelSignup))
	mux.HandleFunc("PUT /api/sessions/{id}/results", requireAuth(handleRecordResults))
	mux.HandleFunc("POST /api/sessions/{id}/receipts/{court}", requireAuth(handleAttachReceipt))
}

// receiptPayload is the wire shape of an attached receipt.
type receiptPayload struct {
	URL       string `json:"url,omitempty"`
	Data      string `json:"data,omitempty"`
	Truncated bool   `json:"truncated"`
}

// sessionPayload is the wire shape of one session on the board.
type sessionPayload struct {
	ID          string             `json:"id"`
	Date        string             `json:"date"`
	Time        string             `json:"time"`
	Organizer   string             `json:"organizer"`
	Courts      int                `json:"courts"`
	PlayerLimit int                `json:"playerLimit"`
	Confirmed   []string           `json:"confirmed"`
	Waiting     []string           `json:"waiting"`
	Full        bool               `json:"full"`
	Teams       *session.Teams     `json:"teams,omitempty"`
	Scores      *session.Scores    `json:"scores,omitempty"`
	Receipts    [2]*receiptPayload `json:"receipts"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// boardPayload is the wire shape of GET /api/board.
type boardPayload struct {
	Current        []sessionPayload `json:"current"`
	Archived       []sessionPayload `json:"archived"`
	AvailableDates []string         `json:"availableDates"`
}

func toSessionPayload(s session.Session) sessionPayload {
	p := sessionPayload{
		ID:          s.ID,
		Date:        s.Date,
		Time:        s.Time,
		Organizer:   s.Organizer,
		Courts:      s.Courts,
		PlayerLimit: s.PlayerLimit(),
		Confirmed:   s.Confirmed(),
		Waiting:     s.Waiting(),
		Full:        s.IsFull(),
		Teams:       s.Teams,
		Scores:      s.Scores,
	}
	if p.Confirmed == nil {
		p.Confirmed = []string{}
	}
	if p.Waiting == nil {
		p.Waiting = []string{}
	}
	for i, r := range s.Receipts {
		if r == nil {
			continue
		}
		p.Receipts[i] = &receiptPayload{URL: r.URL, Data: r.Data, Truncated: r.Truncated()}
	}
	for _, warning := range s.Decode {
		p.Warnings = append(p.Warnings, warning.Field+": "+warning.Reason)
	}
	return p
}

// handleBoard reloads the session list from the record store and returns
// the partitioned board. The board is rebuilt from the store on every read;
// a failed reload leaves the previously displayed state untouched.
func handleBoard(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.RefreshBoardDeps{Store: app.Store, Board: app.Board}
	if err := orchestrators.ExecuteRefreshBoard(r.Context(), deps); err != nil {
		intentError(w, err)
		return
	}
	writeBoard(w)
}

// writeBoard renders the current board snapshot as JSON.
func writeBoard(w http.ResponseWriter) {
	view := projections.BuildBoard(app.Board.Snapshot(), timeNow(), app.Weekday, app.UpcomingWeeks)

	payload := boardPayload{
		Current:        make([]sessionPayload, 0, len(view.Current)),
		Archived:       make([]sessionPayload, 0, len(view.Archived)),
		AvailableDates: view.AvailableDates,
	}
	for _, s := range view.Current {
		payload.Current = append(payload.Current, toSessionPayload(s))
	}
	for _, s := range view.Archived {
		payload.Archived = append(payload.Archived, toSessionPayload(s))
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleClubInfo renders the club info markdown page.
func handleClubInfo(w http.ResponseWriter, r *http.Request) {
	raw, err := os.ReadFile(app.ClubInfoPath)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert(raw, &buf); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": buf.String()})
}

// handlePerf returns aggregated request and store-call timings.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Hour), 10)
	writeJSON(w, http.StatusOK, snap)
}

// handleLogin checks the club passphrase and issues a session cookie.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.LoginDeps{PassphraseHash: app.PassphraseHash, Passphrase: app.Passphrase}
	if err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{Passphrase: req.Passphrase}, deps); err != nil {
		http.Error(w, "incorrect passphrase", http.StatusUnauthorized)
		return
	}

	token, err := sessions.Create()
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleLogout drops the session and clears the cookie.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
