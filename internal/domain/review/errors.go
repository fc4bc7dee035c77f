package review

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "review not found")
	ErrBookNotFound   = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")
)
