package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAuth_BlocksAnonymous(t *testing.T) {
	called := false
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/board", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if called {
		t.Error("inner handler ran without a session")
	}
}

func TestRequireAuth_PassesAuthenticated(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create()
	if err != nil {
		t.Fatal(err)
	}

	called := false
	handler := Auth(ss)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/api/board", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if !called {
		t.Error("inner handler never ran")
	}
}
