package loan

import (
	"strings"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Status is the lending state of a physical copy.
type Status string

const (
	StatusAdministered Status = "administered"
	StatusTaken        Status = "taken"
	StatusAvailable    Status = "available"
	StatusReserved     Status = "reserved"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAdministered, StatusTaken, StatusAvailable, StatusReserved}

// Valid reports whether s is one of the four statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAdministered, StatusTaken, StatusAvailable, StatusReserved:
		return true
	}
	return false
}

// Label is the human-readable form.
func (s Status) Label() string {
	switch s {
	case StatusAdministered:
		return "Administered"
	case StatusTaken:
		return "Taken"
	case StatusAvailable:
		return "Available"
	case StatusReserved:
		return "Reserved"
	}
	return string(s)
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts a status name in any case. Empty input is an error.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperrors.FieldError("status", "must be one of administered, taken, available, reserved")
	}
	return s, nil
}
