package column

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

// Create inserts a new column record.
func (r *PostgresRepository) Create(ctx context.Context, c *Column) error {
	query := `
		INSERT INTO columns (name, board_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.Name, c.BoardID, c.Position).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUnknownBoard
		}
		return fmt.Errorf("inserting column: %w", err)
	}

	return nil
}

// GetByID retrieves a single column by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Column, error) {
	query := `
		SELECT id, name, board_id, position, created_at, updated_at
		FROM columns
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// List retrieves all columns ordered by position, with id as tie-break.
func (r *PostgresRepository) List(ctx context.Context) ([]Column, error) {
	query := `
		SELECT id, name, board_id, position, created_at, updated_at
		FROM columns
		ORDER BY position ASC, id ASC`

	return r.scanMany(ctx, query)
}

// ListByBoard retrieves the columns of one board ordered by position, with id
// as tie-break.
func (r *PostgresRepository) ListByBoard(ctx context.Context, boardID int64) ([]Column, error) {
	query := `
		SELECT id, name, board_id, position, created_at, updated_at
		FROM columns
		WHERE board_id = $1
		ORDER BY position ASC, id ASC`

	return r.scanMany(ctx, query, boardID)
}

// Update modifies the present fields on a column and returns the updated record.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Column, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Position != nil {
		setClauses = append(setClauses, fmt.Sprintf("position = $%d", argIdx))
		args = append(args, *fields.Position)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE columns
		SET %s
		WHERE id = $%d
		RETURNING id, name, board_id, position, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIdx)

	return r.scanOne(ctx, query, args...)
}

// Delete removes a column by id. Cards in the column are removed by FK cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting column: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrColumnNotFound
	}

	return nil
}

func (r *PostgresRepository) scanMany(ctx context.Context, query string, args ...any) ([]Column, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		err := rows.Scan(&c.ID, &c.Name, &c.BoardID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}

	if columns == nil {
		columns = []Column{}
	}

	return columns, nil
}

// scanOne scans a single Column row from a query. Returns ErrColumnNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Column, error) {
	var c Column
	err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.BoardID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("scanning column row: %w", err)
	}
	return &c, nil
}
