package project

import (
	"context"
	"errors"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// ErrUnknownTeam is returned when the referenced team does not exist.
var ErrUnknownTeam = errors.New("project references an unknown team")

// Repository provides CRUD operations on the projects table.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Rename(ctx context.Context, id int64, name string) (*Project, error)
	Delete(ctx context.Context, id int64) error
}
