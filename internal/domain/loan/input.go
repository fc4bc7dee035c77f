package loan

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func statusRule() validation.Rule {
	return validation.In(
		string(StatusAdministered), string(StatusTaken), string(StatusAvailable), string(StatusReserved),
	).Error("must be one of administered, taken, available, reserved")
}

// CreateInput registers a new copy. Status defaults to available.
type CreateInput struct {
	BookID *uint  `json:"book_id"`
	Status string `json:"status"`
}

func (in CreateInput) Validate() error {
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.BookID, validation.NilOrNotEmpty),
		validation.Field(&in.Status, statusRule()),
	))
}

// UpdateInput replaces book, status, reader and due date in one write.
// Version, when set, must match the stored version.
type UpdateInput struct {
	BookID   *uint      `json:"book_id"`
	Status   string     `json:"status"`
	ReaderID *uint      `json:"reader_id"`
	DueBack  *time.Time `json:"due_back"`
	Version  *uint      `json:"version"`
}

func (in UpdateInput) Validate() error {
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.BookID, validation.NilOrNotEmpty),
		validation.Field(&in.Status, validation.Required, statusRule()),
		validation.Field(&in.ReaderID, validation.NilOrNotEmpty),
	))
}

// AssignInput lends a copy to a reader. Status defaults to taken.
type AssignInput struct {
	ReaderID uint      `json:"reader_id"`
	DueBack  time.Time `json:"due_back"`
	Status   string    `json:"status"`
	Version  *uint     `json:"version"`
}

func (in AssignInput) Validate() error {
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.ReaderID, validation.Required),
		validation.Field(&in.DueBack, validation.Required),
		validation.Field(&in.Status, statusRule()),
	))
}

// Filter narrows the staff instance listing.
type Filter struct {
	Status string `json:"status"`
	BookID *uint  `json:"book_id"`
}

func (f Filter) Validate() error {
	return apperrors.FromValidation(validation.ValidateStruct(&f,
		validation.Field(&f.Status, statusRule()),
	))
}
