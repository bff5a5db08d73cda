package league

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/midwicket/pavilion/internal/domain/model"
)

// CreateMatch inserts a match. The caller provides the id so that log
// documents recorded in the document store can reference it immediately.
func (s *Store) CreateMatch(ctx context.Context, m model.Match) error {
	_, err := s.exec(ctx, s.sb.Insert("matches").
		Columns("id", "title", "venue", "status", "home_team_id", "away_team_id", "starts_at").
		Values(m.ID, m.Title, m.Venue, m.Status, m.HomeTeamID, m.AwayTeamID, m.StartsAt))
	return err
}

// GetMatch returns one match; unknown ids yield ErrNotFound.
func (s *Store) GetMatch(ctx context.Context, id string) (model.Match, error) {
	row, err := s.queryRow(ctx, s.matchSelect().Where(sq.Eq{"id": id}))
	if err != nil {
		return model.Match{}, err
	}
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
		}
		return model.Match{}, err
	}
	return m, nil
}

// ListMatches returns matches, optionally filtered by status. An empty or
// "all" status returns everything.
func (s *Store) ListMatches(ctx context.Context, status string) ([]model.Match, error) {
	q := s.matchSelect().OrderBy("starts_at DESC")
	if status != "" && status != "all" {
		q = q.Where(sq.Eq{"status": status})
	}
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list matches: %w", ErrDataAccess, err)
	}
	return out, nil
}

// UpdateMatch updates mutable match fields; unknown ids yield ErrNotFound.
func (s *Store) UpdateMatch(ctx context.Context, m model.Match) error {
	tag, err := s.exec(ctx, s.sb.Update("matches").
		Set("title", m.Title).
		Set("venue", m.Venue).
		Set("status", m.Status).
		Set("home_team_id", m.HomeTeamID).
		Set("away_team_id", m.AwayTeamID).
		Set("starts_at", m.StartsAt).
		Where(sq.Eq{"id": m.ID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

// DeleteMatch removes a match; unknown ids yield ErrNotFound.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, s.sb.Delete("matches").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) matchSelect() sq.SelectBuilder {
	return s.sb.Select("id", "title", "venue", "status", "home_team_id", "away_team_id", "starts_at").
		From("matches")
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	if err := row.Scan(&m.ID, &m.Title, &m.Venue, &m.Status, &m.HomeTeamID, &m.AwayTeamID, &m.StartsAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, err
		}
		return model.Match{}, fmt.Errorf("%w: scan match: %w", ErrDataAccess, err)
	}
	return m, nil
}
