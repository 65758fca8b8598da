package validation

import "strings"

// CreateProjectRequest mirrors the fields needed for create project validation.
type CreateProjectRequest struct {
	Name   string
	TeamID int64
}

// ValidateCreateProjectRequest validates the fields of a create project request.
func ValidateCreateProjectRequest(req CreateProjectRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}

	if req.TeamID <= 0 {
		errs = append(errs, FieldError{Field: "team", Message: "team is required"})
	}

	return errs
}

// CreateBoardRequest mirrors the fields needed for create board validation.
type CreateBoardRequest struct {
	Name      string
	ProjectID int64
}

// ValidateCreateBoardRequest validates the fields of a create board request.
func ValidateCreateBoardRequest(req CreateBoardRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}

	if req.ProjectID <= 0 {
		errs = append(errs, FieldError{Field: "project", Message: "project is required"})
	}

	return errs
}
