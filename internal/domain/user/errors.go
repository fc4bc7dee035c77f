package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrUserNotFound    = apperrors.New(apperrors.ErrCodeUserNotFound, "user not found")
	ErrProfileNotFound = apperrors.New(apperrors.ErrCodeProfileNotFound, "profile not found")

	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "username already taken")
	ErrInvalidPassword   = apperrors.New(apperrors.ErrCodeUnauthorized, "invalid username or password")
)
