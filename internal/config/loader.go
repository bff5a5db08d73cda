package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if PAVILION_CONFIG is set
//  3. env (prefix PAVILION_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PAVILION_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like PAVILION_DATABASE_URL map to database_url; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("PAVILION_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pavilion_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required", ErrInvalidConfig)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret is required", ErrInvalidConfig)
	case c.DefaultCommentaryLimit < 1:
		return fmt.Errorf("%w: default_commentary_limit must be positive", ErrInvalidConfig)
	case c.MaxCommentaryLimit < c.DefaultCommentaryLimit:
		return fmt.Errorf("%w: max_commentary_limit below default", ErrInvalidConfig)
	case c.RankingConcurrency < 1:
		return fmt.Errorf("%w: ranking_concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
