package card

import (
	"context"
	"errors"
)

// ErrCardNotFound is returned when a card record is not found.
var ErrCardNotFound = errors.New("card not found")

// ErrUnknownColumn is returned when the referenced column does not exist.
var ErrUnknownColumn = errors.New("card references an unknown column")

// ErrUnknownAssignee is returned when the referenced assignee does not exist.
var ErrUnknownAssignee = errors.New("card references an unknown assignee")

// Repository provides CRUD operations on the cards table.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id int64) (*Card, error)
	List(ctx context.Context) ([]Card, error)
	ListByColumn(ctx context.Context, columnID int64) ([]Card, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Card, error)
	Delete(ctx context.Context, id int64) error
}
