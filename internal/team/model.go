package team

import "time"

// Membership roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Team represents a row in the teams table.
type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership represents a row in the team_memberships table.
// The (team_id, user_id) pair is unique.
type Membership struct {
	ID        int64
	TeamID    int64
	UserID    int64
	Role      string
	CreatedAt time.Time
}
