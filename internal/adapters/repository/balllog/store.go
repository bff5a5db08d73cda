// Package balllog provides the document store for ball-by-ball match logs,
// backed by an embedded sqlite database. Documents are append-only except
// for screenshot deletion.
package balllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/pkg/metrics"
)

// SortOrder selects chronological or latest-first reads.
type SortOrder int

const (
	// Ascending replays the match in (over, ball, timestamp) order.
	Ascending SortOrder = iota
	// Descending serves latest-first commentary feeds.
	Descending
)

const schema = `
CREATE TABLE IF NOT EXISTS logs (
	id          TEXT PRIMARY KEY,
	match_id    TEXT NOT NULL,
	player_id   INTEGER NOT NULL,
	action      TEXT NOT NULL,
	runs        INTEGER NOT NULL DEFAULT 0,
	over_no     INTEGER NOT NULL DEFAULT 0,
	ball_no     INTEGER NOT NULL DEFAULT 0,
	commentary  TEXT NOT NULL DEFAULT '',
	extras      INTEGER NOT NULL DEFAULT 0,
	is_wicket   INTEGER NOT NULL DEFAULT 0,
	wicket_type TEXT,
	bowler_id   INTEGER,
	fielder_id  INTEGER,
	payload     TEXT,
	ts          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_match ON logs (match_id, over_no, ball_no, ts);
`

// Store wraps the sqlite handle. A single writer with WAL journaling is
// plenty for ball-by-ball ingestion rates.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the log database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open log store: %w", ErrDataAccess, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply log schema: %w", ErrDataAccess, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close log store: %w", ErrDataAccess, err)
	}
	return nil
}

// Append stores one log document, assigning an id and defaulting the
// timestamp to now. Returns the stored document.
func (s *Store) Append(ctx context.Context, l model.Log) (model.Log, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	payload, err := model.EncodePayload(l.Payload)
	if err != nil {
		return model.Log{}, err
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO logs (id, match_id, player_id, action, runs, over_no, ball_no,
			commentary, extras, is_wicket, wicket_type, bowler_id, fielder_id, payload, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.MatchID, l.PlayerID, l.Action, l.Runs, l.Over, l.Ball,
		l.Commentary, l.Extras, l.IsWicket, l.WicketType, l.BowlerID, l.FielderID,
		nullableBytes(payload), l.Timestamp)
	metrics.RecordLogStoreLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLogStoreError()
		return model.Log{}, fmt.Errorf("%w: append log: %w", ErrDataAccess, err)
	}
	return l, nil
}

// ByMatch returns a match's log documents ordered by (over, ball,
// timestamp). A non-nil over filters to that over; limit <= 0 means no
// limit. A match with zero documents yields an empty slice.
func (s *Store) ByMatch(ctx context.Context, matchID string, order SortOrder, over *int, limit int) ([]model.Log, error) {
	query := `SELECT id, match_id, player_id, action, runs, over_no, ball_no,
		commentary, extras, is_wicket, wicket_type, bowler_id, fielder_id, payload, ts
		FROM logs WHERE match_id = ?`
	args := []any{matchID}
	if over != nil {
		query += " AND over_no = ?"
		args = append(args, *over)
	}
	if order == Descending {
		query += " ORDER BY over_no DESC, ball_no DESC, ts DESC"
	} else {
		query += " ORDER BY over_no ASC, ball_no ASC, ts ASC"
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	metrics.RecordLogStoreLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLogStoreError()
		return nil, fmt.Errorf("%w: query logs: %w", ErrDataAccess, err)
	}
	defer rows.Close()

	var out []model.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate logs: %w", ErrDataAccess, err)
	}
	return out, nil
}

// Get returns one log document; unknown ids yield ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.Log, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, match_id, player_id, action, runs, over_no, ball_no,
			commentary, extras, is_wicket, wicket_type, bowler_id, fielder_id, payload, ts
		 FROM logs WHERE id = ?`, id)
	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Log{}, fmt.Errorf("log %s: %w", id, ErrNotFound)
		}
		return model.Log{}, err
	}
	return l, nil
}

// Delete removes a log document. Only screenshot documents are deletable;
// ball events are immutable history.
func (s *Store) Delete(ctx context.Context, id string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.Action != model.ActionScreenshot {
		return fmt.Errorf("log %s: %w", id, ErrImmutable)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id)
	if err != nil {
		metrics.RecordLogStoreError()
		return fmt.Errorf("%w: delete log: %w", ErrDataAccess, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	return nil
}

// Count reports the total number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count logs: %w", ErrDataAccess, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (model.Log, error) {
	var (
		l       model.Log
		payload []byte
	)
	err := row.Scan(&l.ID, &l.MatchID, &l.PlayerID, &l.Action, &l.Runs, &l.Over, &l.Ball,
		&l.Commentary, &l.Extras, &l.IsWicket, &l.WicketType, &l.BowlerID, &l.FielderID,
		&payload, &l.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Log{}, err
		}
		return model.Log{}, fmt.Errorf("%w: scan log: %w", ErrDataAccess, err)
	}
	p, err := model.DecodePayload(l.Action, payload)
	if err != nil {
		return model.Log{}, err
	}
	l.Payload = p
	return l, nil
}

// nullableBytes keeps empty payloads as NULL rather than empty strings.
func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
