package card

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

// Create inserts a new card record.
func (r *PostgresRepository) Create(ctx context.Context, c *Card) error {
	query := `
		INSERT INTO cards (title, description, column_id, assignee_id, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.Title,
		c.Description,
		c.ColumnID,
		c.AssigneeID,
		c.Position,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapForeignKeyError(err, "inserting card")
	}

	return nil
}

// GetByID retrieves a single card by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Card, error) {
	query := `
		SELECT id, title, description, column_id, assignee_id, position, created_at, updated_at
		FROM cards
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// List retrieves all cards ordered by position, with id as tie-break.
func (r *PostgresRepository) List(ctx context.Context) ([]Card, error) {
	query := `
		SELECT id, title, description, column_id, assignee_id, position, created_at, updated_at
		FROM cards
		ORDER BY position ASC, id ASC`

	return r.scanMany(ctx, query)
}

// ListByColumn retrieves the cards of one column ordered by position, with id
// as tie-break.
func (r *PostgresRepository) ListByColumn(ctx context.Context, columnID int64) ([]Card, error) {
	query := `
		SELECT id, title, description, column_id, assignee_id, position, created_at, updated_at
		FROM cards
		WHERE column_id = $1
		ORDER BY position ASC, id ASC`

	return r.scanMany(ctx, query, columnID)
}

// Update modifies the present fields on a card and returns the updated record.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Card, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *fields.Title)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.ColumnID != nil {
		setClauses = append(setClauses, fmt.Sprintf("column_id = $%d", argIdx))
		args = append(args, *fields.ColumnID)
		argIdx++
	}
	if fields.Position != nil {
		setClauses = append(setClauses, fmt.Sprintf("position = $%d", argIdx))
		args = append(args, *fields.Position)
		argIdx++
	}
	if fields.SetAssignee {
		setClauses = append(setClauses, fmt.Sprintf("assignee_id = $%d", argIdx))
		args = append(args, fields.AssigneeID)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE cards
		SET %s
		WHERE id = $%d
		RETURNING id, title, description, column_id, assignee_id, position, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIdx)

	c, err := r.scanOne(ctx, query, args...)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return nil, err
		}
		return nil, mapForeignKeyError(err, "updating card")
	}

	return c, nil
}

// Delete removes a card by id.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCardNotFound
	}

	return nil
}

func (r *PostgresRepository) scanMany(ctx context.Context, query string, args ...any) ([]Card, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var c Card
		err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ColumnID, &c.AssigneeID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	if cards == nil {
		cards = []Card{}
	}

	return cards, nil
}

// scanOne scans a single Card row from a query. Returns ErrCardNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Card, error) {
	var c Card
	err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Title, &c.Description, &c.ColumnID, &c.AssigneeID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("scanning card row: %w", err)
	}
	return &c, nil
}

// mapForeignKeyError converts FK violations to domain errors based on the
// constraint that failed.
func mapForeignKeyError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		if strings.Contains(pgErr.ConstraintName, "assignee") {
			return ErrUnknownAssignee
		}
		return ErrUnknownColumn
	}
	return fmt.Errorf("%s: %w", op, err)
}
