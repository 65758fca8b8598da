package column

import "time"

// Column represents a row in the columns table. Position is an ordering hint
// within the board; it is not unique, ties resolve by id.
type Column struct {
	ID        int64
	Name      string
	BoardID   int64
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateFields holds user-updatable fields on a column record.
// Nil fields are not updated.
type UpdateFields struct {
	Name     *string
	Position *int
}
