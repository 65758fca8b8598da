package card

import "time"

// Card represents a row in the cards table. AssigneeID is nil when the card
// is unassigned; deleting the assigned user clears it without deleting the
// card. Position is an ordering hint within the column; it is not unique,
// ties resolve by id.
type Card struct {
	ID          int64
	Title       string
	Description string
	ColumnID    int64
	AssigneeID  *int64
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields holds user-updatable fields on a card record. Nil fields are
// not updated. SetAssignee distinguishes "leave assignee alone" from
// "assign to AssigneeID", where a nil AssigneeID clears the assignment.
type UpdateFields struct {
	Title       *string
	Description *string
	ColumnID    *int64
	Position    *int
	SetAssignee bool
	AssigneeID  *int64
}
