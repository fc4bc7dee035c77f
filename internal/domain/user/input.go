package user

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// RegisterInput provisions an account.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Staff     bool   `json:"is_staff"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

// Validate requires a 8-64 character password with letters and digits.
func (in RegisterInput) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Username,
			validation.Required,
			validation.Length(3, 150),
			validation.Match(usernamePattern).Error("may contain only letters, digits and @.+-_"),
		),
		validation.Field(&in.Email, is.EmailFormat, validation.Length(0, 254)),
		validation.Field(&in.Password,
			validation.Required,
			validation.Length(8, 64),
			validation.Match(hasLetter).Error("must contain a letter"),
			validation.Match(hasDigit).Error("must contain a digit"),
		),
		validation.Field(&in.FirstName, validation.Length(0, 150)),
		validation.Field(&in.LastName, validation.Length(0, 150)),
	))
}

// ProfileInput is what a user may change about themselves.
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (in *ProfileInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
}

func (in ProfileInput) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Length(0, 150)),
		validation.Field(&in.LastName, validation.Length(0, 150)),
		validation.Field(&in.Email, is.EmailFormat, validation.Length(0, 254)),
	))
}
