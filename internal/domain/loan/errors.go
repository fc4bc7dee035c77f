package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrInstanceNotFound = apperrors.New(apperrors.ErrCodeInstanceNotFound, "book instance not found")
	ErrReaderNotFound   = apperrors.New(apperrors.ErrCodeUserNotFound, "reader not found")

	// ErrStaleInstance is returned when the instance changed since it was read.
	ErrStaleInstance = apperrors.New(apperrors.ErrCodeConflict, "book instance was modified concurrently")
)
