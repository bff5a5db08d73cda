package league

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/ranking"
	"github.com/midwicket/pavilion/internal/domain/types"
)

// InsertScore appends one score row. Rows are never mutated afterwards in
// the aggregation path.
func (s *Store) InsertScore(ctx context.Context, sc model.Score) error {
	_, err := s.exec(ctx, s.sb.Insert("scores").
		Columns("player_id", "match_id", "runs", "fours", "sixes", "balls", "extras", "is_out", "wicket_type", "ball_type").
		Values(sc.PlayerID, sc.MatchID, sc.Runs, sc.Fours, sc.Sixes, sc.Balls, sc.Extras, sc.IsOut, sc.WicketType, sc.BallType))
	return err
}

// GroupedByPlayer implements ranking.ScoreSource.
func (s *Store) GroupedByPlayer(ctx context.Context) ([]ranking.PlayerGroup, error) {
	rows, err := s.query(ctx, s.sb.
		Select(
			"player_id",
			"COALESCE(SUM(runs), 0)",
			"COALESCE(SUM(fours), 0)",
			"COALESCE(SUM(sixes), 0)",
			"COALESCE(SUM(balls), 0)",
			"COALESCE(SUM(extras), 0)",
			"COUNT(*)",
		).
		From("scores").
		GroupBy("player_id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ranking.PlayerGroup
	for rows.Next() {
		var g ranking.PlayerGroup
		if err := rows.Scan(&g.PlayerID, &g.Runs, &g.Fours, &g.Sixes, &g.Balls, &g.Extras, &g.Rows); err != nil {
			return nil, fmt.Errorf("%w: scan score group: %w", ErrDataAccess, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: group scores: %w", ErrDataAccess, err)
	}
	return out, nil
}

// PlayerTotals implements ranking.ScoreSource. A player with no rows yields
// a zero group.
func (s *Store) PlayerTotals(ctx context.Context, playerID int) (ranking.PlayerGroup, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select(
			"COALESCE(SUM(runs), 0)",
			"COALESCE(SUM(fours), 0)",
			"COALESCE(SUM(sixes), 0)",
			"COALESCE(SUM(balls), 0)",
			"COALESCE(SUM(extras), 0)",
			"COUNT(*)",
		).
		From("scores").
		Where(sq.Eq{"player_id": playerID}))
	if err != nil {
		return ranking.PlayerGroup{}, err
	}
	g := ranking.PlayerGroup{PlayerID: playerID}
	if err := row.Scan(&g.Runs, &g.Fours, &g.Sixes, &g.Balls, &g.Extras, &g.Rows); err != nil {
		return ranking.PlayerGroup{}, fmt.Errorf("%w: player totals: %w", ErrDataAccess, err)
	}
	return g, nil
}

// CountDotBalls implements ranking.ScoreSource. The leaderboard passes
// normalOnly; the profile variant does not.
func (s *Store) CountDotBalls(ctx context.Context, playerID int, normalOnly bool) (int, error) {
	q := s.sb.Select("COUNT(*)").From("scores").
		Where(sq.Eq{"player_id": playerID, "runs": 0}).
		Where(sq.Gt{"balls": 0})
	if normalOnly {
		q = q.Where(sq.Eq{"ball_type": model.BallTypeNormal})
	}
	return s.countQuery(ctx, q, "count dot balls")
}

// CountWickets implements ranking.ScoreSource.
func (s *Store) CountWickets(ctx context.Context, playerID int) (int, error) {
	q := s.sb.Select("COUNT(*)").From("scores").
		Where(sq.Eq{"player_id": playerID, "is_out": true}).
		Where("wicket_type IS NOT NULL")
	return s.countQuery(ctx, q, "count wickets")
}

// DistinctMatchIDs implements ranking.ScoreSource.
func (s *Store) DistinctMatchIDs(ctx context.Context, playerID int) ([]string, error) {
	rows, err := s.query(ctx, s.sb.
		Select("DISTINCT match_id").
		From("scores").
		Where(sq.Eq{"player_id": playerID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan match id: %w", ErrDataAccess, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: distinct matches: %w", ErrDataAccess, err)
	}
	return out, nil
}

// RecentMatches implements ranking.ScoreSource: per-match sums for the
// player's most recently recorded matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, playerID, limit int) ([]types.MatchPerformance, error) {
	rows, err := s.query(ctx, s.sb.
		Select(
			"match_id",
			"COALESCE(SUM(runs), 0)",
			"COALESCE(SUM(balls), 0)",
			"COALESCE(SUM(fours), 0)",
			"COALESCE(SUM(sixes), 0)",
		).
		From("scores").
		Where(sq.Eq{"player_id": playerID}).
		GroupBy("match_id").
		OrderBy("MAX(id) DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.MatchPerformance
	for rows.Next() {
		var p types.MatchPerformance
		if err := rows.Scan(&p.MatchID, &p.Runs, &p.Balls, &p.Fours, &p.Sixes); err != nil {
			return nil, fmt.Errorf("%w: scan match performance: %w", ErrDataAccess, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent matches: %w", ErrDataAccess, err)
	}
	return out, nil
}

func (s *Store) countQuery(ctx context.Context, q sq.SelectBuilder, op string) (int, error) {
	row, err := s.queryRow(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrDataAccess, op, err)
	}
	return n, nil
}
