package board

import "time"

// Board represents a row in the boards table.
type Board struct {
	ID          int64
	Name        string
	Description string
	ProjectID   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields holds user-updatable fields on a board record.
// Nil fields are not updated.
type UpdateFields struct {
	Name        *string
	Description *string
}
