package board

import (
	"context"
	"errors"
)

// ErrBoardNotFound is returned when a board record is not found.
var ErrBoardNotFound = errors.New("board not found")

// ErrUnknownProject is returned when the referenced project does not exist.
var ErrUnknownProject = errors.New("board references an unknown project")

// Repository provides CRUD operations on the boards table.
type Repository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id int64) (*Board, error)
	List(ctx context.Context) ([]Board, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Board, error)
	Delete(ctx context.Context, id int64) error

	// OwnerTeamID resolves the team that owns the board through its project.
	OwnerTeamID(ctx context.Context, boardID int64) (int64, error)
}
