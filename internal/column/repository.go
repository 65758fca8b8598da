package column

import (
	"context"
	"errors"
)

// ErrColumnNotFound is returned when a column record is not found.
var ErrColumnNotFound = errors.New("column not found")

// ErrUnknownBoard is returned when the referenced board does not exist.
var ErrUnknownBoard = errors.New("column references an unknown board")

// Repository provides CRUD operations on the columns table.
type Repository interface {
	Create(ctx context.Context, c *Column) error
	GetByID(ctx context.Context, id int64) (*Column, error)
	List(ctx context.Context) ([]Column, error)
	ListByBoard(ctx context.Context, boardID int64) ([]Column, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Column, error)
	Delete(ctx context.Context, id int64) error
}
