package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"doubles/internal/adapters/http/middleware"
	"doubles/internal/adapters/http/perf"
	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/domain/session"
)

// fakeStore serves a canned session list and records mutations. Mutation
// correctness lives in the orchestrator tests; here the store only needs
// to be reachable.
type fakeStore struct {
	sessions []session.Session
	listErr  error
	updates  int
	deletes  int
}

func (f *fakeStore) ListAll(ctx context.Context) ([]session.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessions, nil
}

func (f *fakeStore) Create(ctx context.Context, draft session.Draft) (string, error) {
	return "recNEW", nil
}

func (f *fakeStore) Update(ctx context.Context, id string, fields recordstore.Fields) error {
	f.updates++
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.deletes++
	return nil
}

// setupTest wires the package globals around a fake store and returns the
// routed handler with the non-blocking auth middleware applied.
func setupTest(t *testing.T, store recordstore.Store, boardSessions ...session.Session) http.Handler {
	t.Helper()

	b := board.New()
	b.ReplaceAll(boardSessions)

	clubInfo := filepath.Join(t.TempDir(), "club-info.md")
	if err := os.WriteFile(clubInfo, []byte("# Wednesday Night Doubles\n\nDimond Park."), 0o644); err != nil {
		t.Fatal(err)
	}

	app = &App{
		Store:         store,
		Board:         b,
		Weekday:       time.Wednesday,
		UpcomingWeeks: 8,
		Passphrase:    "dimond2025",
		ClubInfoPath:  clubInfo,
	}
	sessions = middleware.NewSessionStore()
	perfCollector = perf.NewCollector(100)

	prevNow := timeNow
	timeNow = func() time.Time { return time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = prevNow })

	mux := http.NewServeMux()
	registerRoutes(mux)
	return middleware.Auth(sessions)(mux)
}

// authedRequest builds a request carrying a valid session cookie.
func authedRequest(t *testing.T, method, url string, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	token, err := sessions.Create()
	if err != nil {
		t.Fatal(err)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	return req
}

func TestAPIRequiresAuth(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	endpoints := []struct {
		method string
		url    string
	}{
		{"GET", "/api/board"},
		{"GET", "/api/club-info"},
		{"POST", "/api/sessions"},
		{"DELETE", "/api/sessions/rec1"},
		{"POST", "/api/sessions/rec1/signups"},
		{"DELETE", "/api/sessions/rec1/signups/Amy"},
		{"PUT", "/api/sessions/rec1/results"},
		{"POST", "/api/sessions/rec1/receipts/1"},
	}

	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.url, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without session = %d, want 401", ep.method, ep.url, w.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"passphrase":"dimond2025"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body.String())
	}
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("login did not set a session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie not HttpOnly")
	}
}

func TestLoginWrongPassphrase(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"passphrase":"nope"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong passphrase = %d, want 401", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			t.Error("failed login set a session cookie")
		}
	}
}

func TestLogout(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := authedRequest(t, "POST", "/api/logout", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

func TestGetBoard(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{
		{ID: "past", Date: "2025-09-03", Time: "6 PM", Organizer: "Amy", Courts: 1, Signups: []string{"Amy"}},
		{ID: "next", Date: "2025-09-10", Time: "6 PM", Organizer: "Bo", Courts: 1,
			Signups: []string{"Bo", "Cy", "Di", "Ed", "Fay"}},
	}}
	handler := setupTest(t, store)

	req := authedRequest(t, "GET", "/api/board", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("board = %d: %s", w.Code, w.Body.String())
	}

	var payload boardPayload
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if len(payload.Current) != 1 || payload.Current[0].ID != "next" {
		t.Errorf("current = %+v, want [next]", payload.Current)
	}
	if len(payload.Archived) != 1 || payload.Archived[0].ID != "past" {
		t.Errorf("archived = %+v, want [past]", payload.Archived)
	}

	next := payload.Current[0]
	if next.PlayerLimit != 4 {
		t.Errorf("playerLimit = %d, want 4", next.PlayerLimit)
	}
	if len(next.Confirmed) != 4 || len(next.Waiting) != 1 || next.Waiting[0] != "Fay" {
		t.Errorf("roster split wrong: confirmed=%v waiting=%v", next.Confirmed, next.Waiting)
	}
	if !next.Full {
		t.Error("full session not flagged")
	}

	// 2025-09-10 already has a session, so it is not offered again.
	for _, d := range payload.AvailableDates {
		if d == "2025-09-10" {
			t.Error("organized date offered as available")
		}
	}
	if len(payload.AvailableDates) != 8 {
		t.Errorf("availableDates = %d entries, want 8", len(payload.AvailableDates))
	}
}

func TestGetBoardStoreDown(t *testing.T) {
	handler := setupTest(t, &fakeStore{listErr: recordstore.ErrUnavailable})

	req := authedRequest(t, "GET", "/api/board", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("board with store down = %d, want 502", w.Code)
	}
}

func TestCreateSession(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	body := `{"date":"2025-09-10","time":"6:00 PM - 8:00 PM","organizer":"Amy","courts":2}`
	req := authedRequest(t, "POST", "/api/sessions", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "recNEW" {
		t.Errorf("id = %q", resp["id"])
	}
}

func TestCreateSessionValidation(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	tests := []struct {
		name string
		body string
	}{
		{"wrong weekday", `{"date":"2025-09-11","time":"6 PM","organizer":"Amy","courts":1}`},
		{"missing organizer", `{"date":"2025-09-10","time":"6 PM","organizer":"","courts":1}`},
		{"malformed json", `{"date":`},
		{"unknown field", `{"date":"2025-09-10","time":"6 PM","organizer":"Amy","courts":1,"extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, "POST", "/api/sessions", tt.body)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("create = %d, want 400", w.Code)
			}
		})
	}
}

func TestSignUpAndCancel(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{
		{ID: "rec1", Date: "2025-09-10", Courts: 1, Signups: []string{"Amy"}},
	}}
	handler := setupTest(t, store, store.sessions...)

	req := authedRequest(t, "POST", "/api/sessions/rec1/signups", `{"name":"Bo"}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("signup = %d: %s", w.Code, w.Body.String())
	}
	if store.updates != 1 {
		t.Errorf("store updates = %d, want 1", store.updates)
	}

	req = authedRequest(t, "DELETE", "/api/sessions/rec1/signups/Amy", "")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel = %d: %s", w.Code, w.Body.String())
	}
	if store.updates != 2 {
		t.Errorf("store updates = %d, want 2", store.updates)
	}
}

func TestSignUpUnknownSession(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := authedRequest(t, "POST", "/api/sessions/rec9/signups", `{"name":"Bo"}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("signup on unknown session = %d, want 404", w.Code)
	}
}

func TestSignUpBusyBoard(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{{ID: "rec1", Courts: 1}}}
	handler := setupTest(t, store, store.sessions...)

	if err := app.Board.Begin(); err != nil {
		t.Fatal(err)
	}
	defer app.Board.End()

	req := authedRequest(t, "POST", "/api/sessions/rec1/signups", `{"name":"Bo"}`)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("signup while busy = %d, want 409", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{{ID: "rec1", Date: "2025-09-10", Courts: 1}}}
	handler := setupTest(t, store, store.sessions...)

	req := authedRequest(t, "DELETE", "/api/sessions/rec1", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d: %s", w.Code, w.Body.String())
	}
	if store.deletes != 1 {
		t.Errorf("store deletes = %d, want 1", store.deletes)
	}
}

func TestRecordResults(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{
		{ID: "rec1", Date: "2025-09-03", Courts: 1, Signups: []string{"Amy", "Bo", "Cy", "Di"}},
	}}
	handler := setupTest(t, store, store.sessions...)

	body := `{
		"teams": [
			{"player1":"Amy","player2":"Bo"},
			{"player1":"Cy","player2":"Di"},
			{"player1":"","player2":""},
			{"player1":"","player2":""}
		],
		"scores": [
			{"matchups":[{"points1":"6","points2":"3"},{"points1":"","points2":""}]},
			{"matchups":[{"points1":"","points2":""},{"points1":"","points2":""}]},
			{"matchups":[{"points1":"","points2":""},{"points1":"","points2":""}]}
		]
	}`
	req := authedRequest(t, "PUT", "/api/sessions/rec1/results", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("record results = %d: %s", w.Code, w.Body.String())
	}
	if store.updates != 1 {
		t.Errorf("store updates = %d, want 1", store.updates)
	}
}

func TestRecordResultsRejectsWaitingPlayer(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{
		{ID: "rec1", Courts: 1, Signups: []string{"Amy", "Bo", "Cy", "Di", "Ed"}},
	}}
	handler := setupTest(t, store, store.sessions...)

	body := `{
		"teams": [
			{"player1":"Ed","player2":""},
			{"player1":"","player2":""},
			{"player1":"","player2":""},
			{"player1":"","player2":""}
		],
		"scores": [
			{"matchups":[{"points1":"","points2":""},{"points1":"","points2":""}]},
			{"matchups":[{"points1":"","points2":""},{"points1":"","points2":""}]},
			{"matchups":[{"points1":"","points2":""},{"points1":"","points2":""}]}
		]
	}`
	req := authedRequest(t, "PUT", "/api/sessions/rec1/results", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("results with waiting player = %d, want 400", w.Code)
	}
}

func TestAttachReceipt(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{{ID: "rec1", Courts: 2}}}
	handler := setupTest(t, store, store.sessions...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "receipt.pdf")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("%PDF-1.4 test receipt"))
	mw.Close()

	req := authedRequest(t, "POST", "/api/sessions/rec1/receipts/2", "")
	req.Body = nopCloser{&buf}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("attach receipt = %d: %s", w.Code, w.Body.String())
	}
	if store.updates != 1 {
		t.Errorf("store updates = %d, want 1", store.updates)
	}
}

func TestAttachReceiptBadCourt(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{{ID: "rec1", Courts: 2}}}
	handler := setupTest(t, store, store.sessions...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "receipt.pdf")
	part.Write([]byte("%PDF-1.4"))
	mw.Close()

	req := authedRequest(t, "POST", "/api/sessions/rec1/receipts/3", "")
	req.Body = nopCloser{&buf}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("court 3 upload = %d, want 400", w.Code)
	}
}

func TestAttachReceiptTruncationRisk(t *testing.T) {
	store := &fakeStore{sessions: []session.Session{{ID: "rec1", Courts: 1}}}
	handler := setupTest(t, store, store.sessions...)

	// Large enough that the base64 encoding passes the field ceiling.
	big := make([]byte, 100000)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "huge.pdf")
	part.Write(big)
	mw.Close()

	req := authedRequest(t, "POST", "/api/sessions/rec1/receipts/1", "")
	req.Body = nopCloser{&buf}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("oversized receipt = %d, want 409: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["truncationRisk"] != true {
		t.Errorf("response = %v, want truncationRisk flag", resp)
	}
	if store.updates != 0 {
		t.Error("refused receipt reached the store")
	}
}

func TestClubInfo(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := authedRequest(t, "GET", "/api/club-info", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("club info = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp["html"], "<h1") {
		t.Errorf("club info html = %q, want rendered heading", resp["html"])
	}
}

func TestPerfEndpoint(t *testing.T) {
	handler := setupTest(t, &fakeStore{})

	req := authedRequest(t, "GET", "/api/perf", "")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("perf = %d", w.Code)
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }
