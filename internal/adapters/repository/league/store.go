// Package league provides the relational store for users, teams, matches,
// products, and score rows, backed by postgres.
package league

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/midwicket/pavilion/pkg/metrics"
)

const (
	maxConns    = 10
	pingTimeout = 2 * time.Second
)

// Store wraps a pgx pool with query helpers. Construct with Connect and
// close with Close; handlers receive the store as an injected dependency.
type Store struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// Connect opens and pings a postgres pool.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %w", ErrDataAccess, err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open pool: %w", ErrDataAccess, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrDataAccess, err)
	}

	return &Store{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// query runs a squirrel select and records store metrics.
func (s *Store) query(ctx context.Context, q sq.SelectBuilder) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build query: %w", ErrDataAccess, err)
	}
	start := time.Now()
	rows, err := s.pool.Query(ctx, sql, args...)
	metrics.RecordLeagueQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLeagueQueryError()
		return nil, fmt.Errorf("%w: %w", ErrDataAccess, err)
	}
	return rows, nil
}

// queryRow runs a squirrel select expected to return a single row.
func (s *Store) queryRow(ctx context.Context, q sq.SelectBuilder) (pgx.Row, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build query: %w", ErrDataAccess, err)
	}
	start := time.Now()
	row := s.pool.QueryRow(ctx, sql, args...)
	metrics.RecordLeagueQueryLatency(float64(time.Since(start).Milliseconds()))
	return row, nil
}

// returningRow runs an insert/update carrying a RETURNING clause.
func (s *Store) returningRow(ctx context.Context, q sq.Sqlizer) (pgx.Row, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build statement: %w", ErrDataAccess, err)
	}
	start := time.Now()
	row := s.pool.QueryRow(ctx, sql, args...)
	metrics.RecordLeagueQueryLatency(float64(time.Since(start).Milliseconds()))
	return row, nil
}

// exec runs a squirrel insert/update/delete and records store metrics.
func (s *Store) exec(ctx context.Context, q sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("%w: build statement: %w", ErrDataAccess, err)
	}
	start := time.Now()
	tag, err := s.pool.Exec(ctx, sql, args...)
	metrics.RecordLeagueQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLeagueQueryError()
		return pgconn.CommandTag{}, fmt.Errorf("%w: %w", ErrDataAccess, err)
	}
	return tag, nil
}
