package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppError is the error type returned across layer boundaries.
// Code is a business code for clients, Message is safe to show,
// Fields carries per-field validation detail and Err is the internal
// cause that is logged but never serialized.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k]
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so a freshly built NotFound matches the
// package-level sentinel with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// New creates an AppError.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap hides a system error (database, network) behind an internal error.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCause returns a copy of e carrying err. The copy still matches e
// under errors.Is.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// =========================================
// Error codes
// =========================================
// - 4xxxx: caller errors
// - 5xxxx: server errors

const (
	// system (50000-50099)
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002
	ErrCodeStorageError  = 50003
	ErrCodeUnavailable   = 50300

	// authentication and authorization (40100-40199)
	ErrCodeUnauthorized = 40100
	ErrCodeInvalidToken = 40101
	ErrCodeTokenExpired = 40102
	ErrCodeTokenRevoked = 40103
	ErrCodeForbidden    = 40104

	// missing resources (40400-40499)
	ErrCodeNotFound         = 40400
	ErrCodeUserNotFound     = 40401
	ErrCodeBookNotFound     = 40402
	ErrCodeAuthorNotFound   = 40403
	ErrCodeGenreNotFound    = 40404
	ErrCodeInstanceNotFound = 40405
	ErrCodeReviewNotFound   = 40406
	ErrCodeProfileNotFound  = 40407

	// business rules (40000-40099)
	ErrCodeBusinessError  = 40000
	ErrCodeDuplicateEntry = 40009
	ErrCodeConflict       = 40010

	// parameters (40900-40999)
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901

	// rate limiting
	ErrCodeTooManyRequests = 42900
)

var (
	ErrInternal      = New(ErrCodeInternal, "internal error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrRedisError    = New(ErrCodeRedisError, "cache error")
	ErrStorageError  = New(ErrCodeStorageError, "file storage error")
	ErrUnavailable   = New(ErrCodeUnavailable, "service temporarily unavailable")

	ErrUnauthorized = New(ErrCodeUnauthorized, "authentication required")
	ErrInvalidToken = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "token expired")
	ErrTokenRevoked = New(ErrCodeTokenRevoked, "token has been revoked")
	ErrForbidden    = New(ErrCodeForbidden, "permission denied")

	ErrNotFound = New(ErrCodeNotFound, "resource not found")
	ErrConflict = New(ErrCodeConflict, "record was modified concurrently")

	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "too many requests")
)

// =========================================
// Helpers
// =========================================

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError, wrapping anything else as internal.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}

// NewValidation builds a ValidationError with field-level detail.
func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: ErrInvalidParams.Message,
		Fields:  fields,
	}
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, message string) *AppError {
	return NewValidation(map[string]string{field: message})
}

// FromValidation converts the result of an ozzo Validate() call. Nil stays nil,
// per-field errors become Fields, internal validator failures are wrapped.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var ves validation.Errors
	if errors.As(err, &ves) {
		fields := make(map[string]string, len(ves))
		for field, fe := range ves {
			if fe == nil {
				continue
			}
			fields[field] = fe.Error()
		}
		return NewValidation(fields)
	}
	var ie validation.InternalError
	if errors.As(err, &ie) {
		return Wrap(ie.InternalError(), "validation failed")
	}
	if IsAppError(err) {
		return err
	}
	return &AppError{Code: ErrCodeInvalidParams, Message: err.Error()}
}

// IsNotFound reports whether err carries a 404xx code.
func IsNotFound(err error) bool {
	return codeIn(err, 40400, 40499)
}

// IsValidation reports whether err is a parameter error.
func IsValidation(err error) bool {
	return codeIn(err, 40900, 40999)
}

// IsPermissionDenied reports whether err is an authentication or authorization failure.
func IsPermissionDenied(err error) bool {
	return codeIn(err, 40100, 40199)
}

// IsConflict reports whether err is a concurrent-modification or duplicate error.
func IsConflict(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == ErrCodeConflict || appErr.Code == ErrCodeDuplicateEntry
}

func codeIn(err error, lo, hi int) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code >= lo && appErr.Code <= hi
}

// HTTPStatus maps a business code onto an HTTP status.
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeUnauthorized, code == ErrCodeInvalidToken, code == ErrCodeTokenExpired, code == ErrCodeTokenRevoked:
		return http.StatusUnauthorized
	case code >= 40100 && code <= 40199:
		return http.StatusForbidden
	case code >= 40400 && code <= 40499:
		return http.StatusNotFound
	case code == ErrCodeConflict, code == ErrCodeDuplicateEntry:
		return http.StatusConflict
	case code >= 40000 && code <= 40999:
		return http.StatusBadRequest
	case code == ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case code == ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
