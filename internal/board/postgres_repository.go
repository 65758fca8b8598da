package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// Create inserts a new board record.
func (r *PostgresRepository) Create(ctx context.Context, b *Board) error {
	query := `
		INSERT INTO boards (name, description, project_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, b.Name, b.Description, b.ProjectID).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUnknownProject
		}
		return fmt.Errorf("inserting board: %w", err)
	}

	return nil
}

// GetByID retrieves a single board by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Board, error) {
	query := `
		SELECT id, name, description, project_id, created_at, updated_at
		FROM boards
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// List retrieves all boards ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Board, error) {
	query := `
		SELECT id, name, description, project_id, created_at, updated_at
		FROM boards
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.ProjectID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning board row: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating board rows: %w", err)
	}

	if boards == nil {
		boards = []Board{}
	}

	return boards, nil
}

// Update modifies the present fields on a board and returns the updated record.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Board, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE boards
		SET %s
		WHERE id = $%d
		RETURNING id, name, description, project_id, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIdx)

	return r.scanOne(ctx, query, args...)
}

// Delete removes a board by id. Columns and cards on the board are removed
// by FK cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBoardNotFound
	}

	return nil
}

// OwnerTeamID resolves the team that owns the board through its project.
func (r *PostgresRepository) OwnerTeamID(ctx context.Context, boardID int64) (int64, error) {
	query := `
		SELECT p.team_id
		FROM boards b
		JOIN projects p ON b.project_id = p.id
		WHERE b.id = $1`

	var teamID int64
	err := r.pool.QueryRow(ctx, query, boardID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBoardNotFound
		}
		return 0, fmt.Errorf("resolving board owner team: %w", err)
	}

	return teamID, nil
}

// scanOne scans a single Board row from a query. Returns ErrBoardNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Board, error) {
	var b Board
	err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Name, &b.Description, &b.ProjectID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("scanning board row: %w", err)
	}
	return &b, nil
}
