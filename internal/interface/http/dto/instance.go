package dto

import (
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// DateLayout is the wire format of due_back.
const DateLayout = "2006-01-02"

type CreateInstanceRequest struct {
	BookID *uint  `json:"book_id" example:"1"`
	Status string `json:"status" binding:"max=20" example:"available"`
}

// UpdateInstanceRequest replaces every staff-editable field of a copy.
// Version, when set, must match the stored version.
type UpdateInstanceRequest struct {
	BookID   *uint   `json:"book_id" example:"1"`
	Status   string  `json:"status" binding:"max=20" example:"taken"`
	ReaderID *uint   `json:"reader_id" example:"2"`
	DueBack  *string `json:"due_back" example:"2024-07-14"`
	Version  *uint   `json:"version" example:"1"`
}

type AssignReaderRequest struct {
	ReaderID uint   `json:"reader_id" example:"2"`
	DueBack  string `json:"due_back" example:"2024-07-14"`
	Status   string `json:"status" binding:"max=20" example:"taken"`
	Version  *uint  `json:"version" example:"1"`
}

type ReturnInstanceRequest struct {
	Version *uint `json:"version" example:"2"`
}

// ParseDueBack parses a due_back value. Empty yields the zero time so that
// required-field validation reports it.
func ParseDueBack(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.FieldError("due_back", "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseOptionalDueBack is ParseDueBack for nullable fields.
func ParseOptionalDueBack(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDueBack(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
