package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	web "doubles/internal/adapters/http"
	"doubles/internal/adapters/http/perf"
	"doubles/internal/adapters/recordstore"
	"doubles/internal/application/board"
	"doubles/internal/application/orchestrators"
	"doubles/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	weekday, err := cfg.Weekday()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Pick the record store: Airtable when credentials are configured,
	// otherwise a local SQLite file with the same field encodings.
	var store recordstore.Store
	if cfg.UseAirtable() {
		store = recordstore.NewAirtableStore(cfg.AirtableKey, cfg.AirtableBase, cfg.AirtableTable)
		log.Printf("Record store: Airtable (base=%s table=%s)", cfg.AirtableBase, cfg.AirtableTable)
	} else {
		dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("database unreachable: %v", err)
		}
		if err := recordstore.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		store = recordstore.NewSQLiteStore(db)
		log.Printf("Record store: local SQLite at %s (set DOUBLES_AIRTABLE_KEY and DOUBLES_AIRTABLE_BASE for the shared base)", cfg.DBPath)
	}

	// Performance instrumentation: wrap the store, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timed := recordstore.NewTimedStore(store, collector)

	sessionBoard := board.New()

	// Warm the board. A failure here is not fatal: the first successful
	// board read will populate it.
	refreshDeps := orchestrators.RefreshBoardDeps{Store: timed, Board: sessionBoard}
	if err := orchestrators.ExecuteRefreshBoard(context.Background(), refreshDeps); err != nil {
		slog.Warn("initial_board_load_failed", "error", err.Error())
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	app := &web.App{
		Store:          timed,
		Board:          sessionBoard,
		Weekday:        weekday,
		UpcomingWeeks:  cfg.UpcomingWeeks,
		PassphraseHash: cfg.PassphraseHash,
		Passphrase:     cfg.Passphrase,
		ClubInfoPath:   cfg.ClubInfoPath,
		CSRFKey:        csrfKey,
	}
	web.RateLimitPerSecond = cfg.RateLimitPerSecond

	mux := web.NewMux(cfg.StaticDir, app, collector)

	log.Printf("Doubles %s starting on %s (env=%s, weekday=%s)", version, cfg.Addr, cfg.Env, weekday)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
