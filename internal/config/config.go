// Package config loads server configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Every field comes from the
// environment; defaults suit local development.
type Config struct {
	Addr      string `env:"DOUBLES_ADDR" envDefault:":8080"`
	Env       string `env:"DOUBLES_ENV" envDefault:"development"`
	StaticDir string `env:"DOUBLES_STATIC_DIR" envDefault:"web/static"`

	// Remote record store. When the key and base are both set the server
	// talks to Airtable; otherwise it falls back to a local SQLite file.
	AirtableKey   string `env:"DOUBLES_AIRTABLE_KEY"`
	AirtableBase  string `env:"DOUBLES_AIRTABLE_BASE"`
	AirtableTable string `env:"DOUBLES_AIRTABLE_TABLE" envDefault:"Matches"`
	DBPath        string `env:"DOUBLES_DB_PATH" envDefault:"doubles.db"`

	// Club access gate. The bcrypt hash wins when both are set.
	Passphrase     string `env:"DOUBLES_PASSPHRASE"`
	PassphraseHash string `env:"DOUBLES_PASSPHRASE_HASH"`

	CSRFKey string `env:"DOUBLES_CSRF_KEY"` // 64 hex chars

	MatchWeekday  string `env:"DOUBLES_MATCH_WEEKDAY" envDefault:"Wednesday"`
	UpcomingWeeks int    `env:"DOUBLES_UPCOMING_WEEKS" envDefault:"8"`
	ClubInfoPath  string `env:"DOUBLES_CLUB_INFO" envDefault:"web/club-info.md"`

	RateLimitPerSecond int `env:"DOUBLES_RATE_LIMIT" envDefault:"10"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := c.Weekday(); err != nil {
		return err
	}
	if c.UpcomingWeeks < 1 {
		return fmt.Errorf("DOUBLES_UPCOMING_WEEKS must be at least 1, got %d", c.UpcomingWeeks)
	}
	if c.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
	}
	if c.Env == "production" {
		if c.Passphrase == "" && c.PassphraseHash == "" {
			return fmt.Errorf("production requires DOUBLES_PASSPHRASE or DOUBLES_PASSPHRASE_HASH")
		}
		if c.CSRFKey == "" {
			return fmt.Errorf("production requires DOUBLES_CSRF_KEY")
		}
	}
	return nil
}

// Weekday parses the configured match weekday name.
func (c Config) Weekday() (time.Weekday, error) {
	want := strings.ToLower(strings.TrimSpace(c.MatchWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == want {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", c.MatchWeekday)
}

// CSRFKeyBytes decodes the hex-encoded CSRF key. Returns nil when unset.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("DOUBLES_CSRF_KEY must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("DOUBLES_CSRF_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// UseAirtable reports whether remote store credentials are configured.
func (c Config) UseAirtable() bool {
	return c.AirtableKey != "" && c.AirtableBase != ""
}
