package validation

import (
	"strings"

	"github.com/teamboard/teamboard/internal/team"
)

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	Name string
}

// ValidateCreateTeamRequest validates the fields of a create team request.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}

	return errs
}

// CreateMembershipRequest mirrors the fields needed for membership validation.
type CreateMembershipRequest struct {
	TeamID int64
	UserID int64
	Role   string
}

// ValidateCreateMembershipRequest validates the fields of a create membership request.
func ValidateCreateMembershipRequest(req CreateMembershipRequest) []FieldError {
	var errs []FieldError

	if req.TeamID <= 0 {
		errs = append(errs, FieldError{Field: "team", Message: "team is required"})
	}
	if req.UserID <= 0 {
		errs = append(errs, FieldError{Field: "user", Message: "user is required"})
	}
	if req.Role != "" && req.Role != team.RoleAdmin && req.Role != team.RoleMember {
		errs = append(errs, FieldError{Field: "role", Message: "role must be \"admin\" or \"member\""})
	}

	return errs
}
