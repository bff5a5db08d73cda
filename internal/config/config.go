// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's error kinds.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the postgres connection string for the league store.
	DatabaseURL string `koanf:"database_url"`

	// LogStorePath is the sqlite file backing the ball-by-ball log store.
	LogStorePath string `koanf:"log_store_path"`

	// JWTSecret signs session tokens. Required.
	JWTSecret string `koanf:"jwt_secret"`

	// CookieSecure marks the session cookie as HTTPS-only.
	CookieSecure bool `koanf:"cookie_secure"`

	// AdminEmail and AdminPassword provision the bootstrap admin account at
	// startup. Seeding is skipped when either is empty.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	// DefaultCommentaryLimit is the page size when the client omits limit.
	DefaultCommentaryLimit int `koanf:"default_commentary_limit"`

	// MaxCommentaryLimit caps the commentary page size.
	MaxCommentaryLimit int `koanf:"max_commentary_limit"`

	// RecentMatchesLimit bounds the profile's recent-match list.
	RecentMatchesLimit int `koanf:"recent_matches_limit"`

	// RankingConcurrency bounds concurrent per-player sub-queries during
	// leaderboard aggregation.
	RankingConcurrency int `koanf:"ranking_concurrency"`

	// DedupeSize bounds the ball-event idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		DatabaseURL:            "",
		LogStorePath:           "pavilion-logs.db",
		JWTSecret:              "",
		CookieSecure:           false,
		AdminEmail:             "",
		AdminPassword:          "",
		DefaultCommentaryLimit: 20,
		MaxCommentaryLimit:     100,
		RecentMatchesLimit:     10,
		RankingConcurrency:     runtime.NumCPU(),
		DedupeSize:             50_000,
	}
}
