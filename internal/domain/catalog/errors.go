package catalog

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrGenreNotFound  = apperrors.New(apperrors.ErrCodeGenreNotFound, "genre not found")
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "author not found")
	ErrBookNotFound   = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")

	// ErrGenreDuplicate is returned when a genre name is already taken.
	ErrGenreDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "genre already exists")
)
