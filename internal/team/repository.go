package team

import (
	"context"
	"errors"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrMembershipNotFound is returned when a membership record is not found.
var ErrMembershipNotFound = errors.New("team membership not found")

// ErrDuplicateMembership is returned when the user is already a member of the team.
var ErrDuplicateMembership = errors.New("user is already a member of the team")

// ErrUnknownUser is returned when a membership references a user that does not exist.
var ErrUnknownUser = errors.New("membership references an unknown user")

// Repository provides CRUD operations on teams and their memberships.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, id int64) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	Rename(ctx context.Context, id int64, name string) (*Team, error)
	Delete(ctx context.Context, id int64) error

	AddMember(ctx context.Context, m *Membership) error
	RemoveMember(ctx context.Context, membershipID int64) error
	ListMembers(ctx context.Context, teamID int64) ([]Membership, error)
	ListMemberships(ctx context.Context) ([]Membership, error)
	ClearMembers(ctx context.Context, teamID int64) error
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
}
