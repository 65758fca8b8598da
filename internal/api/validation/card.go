package validation

import "strings"

// CreateColumnRequest mirrors the fields needed for create column validation.
type CreateColumnRequest struct {
	Name    string
	BoardID int64
}

// ValidateCreateColumnRequest validates the fields of a create column request.
func ValidateCreateColumnRequest(req CreateColumnRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}

	if req.BoardID <= 0 {
		errs = append(errs, FieldError{Field: "board", Message: "board is required"})
	}

	return errs
}

// CreateCardRequest mirrors the fields needed for create card validation.
type CreateCardRequest struct {
	Title    string
	ColumnID int64
}

// ValidateCreateCardRequest validates the fields of a create card request.
func ValidateCreateCardRequest(req CreateCardRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 255 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
	}

	if req.ColumnID <= 0 {
		errs = append(errs, FieldError{Field: "column", Message: "column is required"})
	}

	return errs
}
