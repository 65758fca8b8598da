package project

import "time"

// Project represents a row in the projects table.
type Project struct {
	ID        int64
	Name      string
	TeamID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
