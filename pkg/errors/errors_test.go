package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleInput struct {
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
}

func (in titleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.ISBN, validation.Length(0, 13)),
	)
}

func TestFromValidation_FieldDetail(t *testing.T) {
	err := FromValidation(titleInput{ISBN: "12345678901234"}.Validate())
	require.Error(t, err)

	appErr := GetAppError(err)
	assert.Equal(t, ErrCodeInvalidParams, appErr.Code)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "isbn")
	assert.True(t, IsValidation(err))
}

func TestFromValidation_Nil(t *testing.T) {
	assert.NoError(t, FromValidation(titleInput{Title: "Dune", ISBN: "9780441013593"}.Validate()))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, "query failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetAppError_WrapsPlainErrors(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
}

func TestPredicates(t *testing.T) {
	notFound := New(ErrCodeBookNotFound, "book not found")

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", notFound)))
	assert.False(t, IsNotFound(ErrForbidden))

	assert.True(t, IsPermissionDenied(ErrForbidden))
	assert.True(t, IsPermissionDenied(ErrUnauthorized))
	assert.False(t, IsPermissionDenied(notFound))

	assert.True(t, IsConflict(ErrConflict))
	assert.False(t, IsConflict(ErrInternal))
}

func TestIs_MatchesByCode(t *testing.T) {
	assert.ErrorIs(t, FieldError("isbn", "too long"), ErrInvalidParams)
	assert.NotErrorIs(t, ErrForbidden, ErrUnauthorized)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(0))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrCodeForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeInstanceNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidParams))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeDatabaseError))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeTokenRevoked))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrCodeTooManyRequests))
}

func TestWithCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrStorageError.WithCause(cause)

	assert.ErrorIs(t, err, ErrStorageError)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrStorageError.Err)
	assert.Equal(t, 500, HTTPStatus(err.Code))
}
