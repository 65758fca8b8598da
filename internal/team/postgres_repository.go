package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, t.Name).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Team, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM teams
		WHERE id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// List retrieves all teams ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Team, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM teams
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// Rename updates the team name and returns the updated record.
func (r *PostgresRepository) Rename(ctx context.Context, id int64, name string) (*Team, error) {
	query := `
		UPDATE teams
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, created_at, updated_at`

	var t Team
	err := r.pool.QueryRow(ctx, query, name, id).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("renaming team: %w", err)
	}

	return &t, nil
}

// Delete removes a team by id. Projects, boards, columns and cards owned by
// the team are removed by FK cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// AddMember inserts a membership record. Returns ErrUnknownUser if the user
// does not exist and ErrDuplicateMembership if the pair already exists.
func (r *PostgresRepository) AddMember(ctx context.Context, m *Membership) error {
	if m.Role == "" {
		m.Role = RoleMember
	}

	query := `
		INSERT INTO team_memberships (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, m.TeamID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return ErrUnknownUser
			case "23505":
				return ErrDuplicateMembership
			}
		}
		return fmt.Errorf("inserting membership: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership record by its id.
func (r *PostgresRepository) RemoveMember(ctx context.Context, membershipID int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM team_memberships WHERE id = $1`, membershipID)
	if err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

// ListMembers retrieves the memberships of one team.
func (r *PostgresRepository) ListMembers(ctx context.Context, teamID int64) ([]Membership, error) {
	query := `
		SELECT id, team_id, user_id, role, created_at
		FROM team_memberships
		WHERE team_id = $1
		ORDER BY created_at ASC`

	return r.scanMemberships(ctx, query, teamID)
}

// ListMemberships retrieves all membership records.
func (r *PostgresRepository) ListMemberships(ctx context.Context) ([]Membership, error) {
	query := `
		SELECT id, team_id, user_id, role, created_at
		FROM team_memberships
		ORDER BY created_at ASC`

	return r.scanMemberships(ctx, query)
}

// ClearMembers removes every membership of the given team.
func (r *PostgresRepository) ClearMembers(ctx context.Context, teamID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM team_memberships WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("clearing memberships: %w", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the team.
func (r *PostgresRepository) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM team_memberships WHERE team_id = $1 AND user_id = $2)`,
		teamID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) scanMemberships(ctx context.Context, query string, args ...any) ([]Membership, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	var members []Membership
	for rows.Next() {
		var m Membership
		err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership rows: %w", err)
	}

	if members == nil {
		members = []Membership{}
	}

	return members, nil
}
