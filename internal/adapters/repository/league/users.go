package league

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/midwicket/pavilion/internal/domain/model"
	"github.com/midwicket/pavilion/internal/domain/types"
)

const uniqueViolation = "23505"

// CreateUser inserts a user and returns it with its assigned id.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	q := s.sb.Insert("users").
		Columns("name", "email", "role", "password_hash").
		Values(u.Name, u.Email, u.Role, u.PasswordHash).
		Suffix("RETURNING id, created_at")
	row, err := s.returningRow(ctx, q)
	if err != nil {
		return model.User{}, err
	}
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, fmt.Errorf("email %q: %w", u.Email, ErrConflict)
		}
		return model.User{}, fmt.Errorf("%w: insert user: %w", ErrDataAccess, err)
	}
	return u, nil
}

// FindUserByEmail returns the user with the given email, including the
// password hash for credential checks. Missing users yield ErrNotFound.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("id", "name", "email", "role", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"email": email}))
	if err != nil {
		return model.User{}, err
	}
	return scanUser(row)
}

// FindUserByID returns the user with the given id. Missing users yield
// ErrNotFound.
func (s *Store) FindUserByID(ctx context.Context, id int) (model.User, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("id", "name", "email", "role", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return model.User{}, err
	}
	return scanUser(row)
}

// FindPlayer resolves a player's display identity for the ranking
// aggregator. A missing user resolves to (nil, nil), never an error; the
// aggregator drops those rows silently.
func (s *Store) FindPlayer(ctx context.Context, id int) (*types.Player, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("id", "name", "email").
		From("users").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var p types.Player
	if err := row.Scan(&p.ID, &p.Name, &p.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find player: %w", ErrDataAccess, err)
	}
	return &p, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.query(ctx, s.sb.
		Select("id", "name", "email", "role", "password_hash", "created_at").
		From("users").
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan user: %w", ErrDataAccess, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %w", ErrDataAccess, err)
	}
	return out, nil
}

// DeleteUser removes a user. Deleting an unknown id yields ErrNotFound.
func (s *Store) DeleteUser(ctx context.Context, id int) error {
	tag, err := s.exec(ctx, s.sb.Delete("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountPlayers reports how many players have at least one score row.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("COUNT(DISTINCT player_id)").
		From("scores"))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count players: %w", ErrDataAccess, err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("%w: scan user: %w", ErrDataAccess, err)
	}
	return u, nil
}
