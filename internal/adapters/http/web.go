package web

import (
	"crypto/rand"
	"log"
	"net/http"
	"os"
	"time"

	"doubles/internal/adapters/http/middleware"
	"doubles/internal/adapters/http/perf"
	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
)

// App holds the wired application dependencies for the HTTP layer.
type App struct {
	Store          recordstore.Store
	Board          *board.Board
	Weekday        time.Weekday // the club's match weekday
	UpcomingWeeks  int          // how many occurrence dates the organize form offers
	PassphraseHash string       // bcrypt hash of the club passphrase
	Passphrase     string       // plaintext fallback for development
	ClubInfoPath   string       // markdown file for the club info page
	CSRFKey        []byte       // 32 bytes; empty generates a per-start dev key
}

// Global app instance (set by NewMux)
var app *App

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, a *App, collector *perf.Collector) http.Handler {
	app = a
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("DOUBLES_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	csrfKey := a.CSRFKey
	if len(csrfKey) != 32 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			log.Fatalf("failed to generate CSRF key: %v", err)
		}
		log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set DOUBLES_CSRF_KEY for production.")
	}

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
