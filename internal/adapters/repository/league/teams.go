package league

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/midwicket/pavilion/internal/domain/model"
)

// CreateTeam inserts a team and enrolls the captain as its first member.
func (s *Store) CreateTeam(ctx context.Context, t model.Team) (model.Team, error) {
	row, err := s.returningRow(ctx, s.sb.Insert("teams").
		Columns("name", "captain_id").
		Values(t.Name, t.CaptainID).
		Suffix("RETURNING id, created_at"))
	if err != nil {
		return model.Team{}, err
	}
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Team{}, fmt.Errorf("team %q: %w", t.Name, ErrConflict)
		}
		return model.Team{}, fmt.Errorf("%w: insert team: %w", ErrDataAccess, err)
	}
	if err := s.AddTeamMember(ctx, t.ID, t.CaptainID); err != nil {
		return model.Team{}, err
	}
	return t, nil
}

// ListTeams returns all teams ordered by id.
func (s *Store) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.query(ctx, s.sb.
		Select("id", "name", "captain_id", "created_at").
		From("teams").
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CaptainID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan team: %w", ErrDataAccess, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list teams: %w", ErrDataAccess, err)
	}
	return out, nil
}

// AddTeamMember enrolls a user in a team; joining twice is a no-op.
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID int) error {
	_, err := s.exec(ctx, s.sb.Insert("team_members").
		Columns("team_id", "user_id").
		Values(teamID, userID).
		Suffix("ON CONFLICT (team_id, user_id) DO NOTHING"))
	return err
}

// TeamMemberIDs returns the user ids enrolled in a team.
func (s *Store) TeamMemberIDs(ctx context.Context, teamID int) ([]int, error) {
	rows, err := s.query(ctx, s.sb.
		Select("user_id").
		From("team_members").
		Where(sq.Eq{"team_id": teamID}).
		OrderBy("user_id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan member: %w", ErrDataAccess, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list members: %w", ErrDataAccess, err)
	}
	return out, nil
}
