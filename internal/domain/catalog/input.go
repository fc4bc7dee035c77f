package catalog

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Field limits mirror the column sizes in persistence.
const (
	MaxGenreName   = 200
	MaxAuthorName  = 100
	MaxTitle       = 200
	MaxSummary     = 1000
	MaxISBN        = 13
	MaxDescription = 5000
)

// GenreInput is the writable shape of a genre.
type GenreInput struct {
	Name string `json:"name"`
}

func (in *GenreInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

// Validate checks field rules and returns a ValidationError with field detail.
func (in GenreInput) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxGenreName)),
	))
}

// AuthorInput is the writable shape of an author.
type AuthorInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Description string `json:"description"`
}

func (in *AuthorInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

func (in AuthorInput) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.RuneLength(1, MaxAuthorName)),
		validation.Field(&in.LastName, validation.Required, validation.RuneLength(1, MaxAuthorName)),
		validation.Field(&in.Description, validation.RuneLength(0, MaxDescription)),
	))
}

// BookInput is the writable shape of a book. AuthorID and GenreIDs must
// reference existing records.
type BookInput struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	ISBN     string `json:"isbn"`
	AuthorID *uint  `json:"author_id"`
	GenreIDs []uint `json:"genre_ids"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.ISBN = strings.TrimSpace(in.ISBN)
}

func (in BookInput) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, MaxTitle)),
		validation.Field(&in.Summary, validation.RuneLength(0, MaxSummary)),
		validation.Field(&in.ISBN, validation.Required, validation.RuneLength(1, MaxISBN)),
		validation.Field(&in.AuthorID, validation.NilOrNotEmpty),
	))
}
