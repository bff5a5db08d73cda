package league

import (
	"context"
	"fmt"
)

// schema holds the DDL applied at startup. IF NOT EXISTS keeps repeated
// startups idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            SERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL DEFAULT 'player',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS teams (
	id         SERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	captain_id INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS team_members (
	team_id INT NOT NULL,
	user_id INT NOT NULL,
	PRIMARY KEY (team_id, user_id)
);

CREATE TABLE IF NOT EXISTS matches (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	venue        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'scheduled',
	home_team_id INT NOT NULL DEFAULT 0,
	away_team_id INT NOT NULL DEFAULT 0,
	starts_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          SERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price_cents INT NOT NULL DEFAULT 0,
	stock       INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS scores (
	id          SERIAL PRIMARY KEY,
	player_id   INT NOT NULL,
	match_id    TEXT NOT NULL,
	runs        INT NOT NULL DEFAULT 0 CHECK (runs >= 0),
	fours       INT NOT NULL DEFAULT 0 CHECK (fours >= 0),
	sixes       INT NOT NULL DEFAULT 0 CHECK (sixes >= 0),
	balls       INT NOT NULL DEFAULT 0 CHECK (balls >= 0),
	extras      INT NOT NULL DEFAULT 0 CHECK (extras >= 0),
	is_out      BOOLEAN NOT NULL DEFAULT FALSE,
	wicket_type TEXT,
	ball_type   TEXT NOT NULL DEFAULT 'NORMAL'
);

CREATE INDEX IF NOT EXISTS idx_scores_player ON scores (player_id);
CREATE INDEX IF NOT EXISTS idx_scores_match ON scores (match_id);
`

// EnsureSchema applies the DDL.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: apply schema: %w", ErrDataAccess, err)
	}
	return nil
}
