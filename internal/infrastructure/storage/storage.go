// Package storage keeps uploaded files (profile photos, book covers) in an
// S3-compatible object store and hands back their public URLs.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// FileStore saves and removes uploaded files.
type FileStore interface {
	// Save stores r under key and returns the public URL.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object behind a URL returned by Save.
	Remove(ctx context.Context, url string) error
}

// ErrDisabled is returned by the disabled store.
var ErrDisabled = apperrors.New(apperrors.ErrCodeUnavailable, "file storage is disabled")

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// CheckImage validates an upload against the accepted image types and maxSize.
// field names the form field in the returned ValidationError.
func CheckImage(field, contentType string, size, maxSize int64) error {
	if _, ok := imageTypes[normalizeType(contentType)]; !ok {
		return apperrors.FieldError(field, "must be a jpeg, png, gif or webp image")
	}
	if size <= 0 {
		return apperrors.FieldError(field, "cannot be empty")
	}
	if maxSize > 0 && size > maxSize {
		return apperrors.FieldError(field, "file is too large")
	}
	return nil
}

// ObjectKey builds a fresh key under prefix, e.g. profiles/7/<uuid>.png.
func ObjectKey(prefix, contentType string) string {
	ext := imageTypes[normalizeType(contentType)]
	return path.Join(prefix, uuid.NewString()+ext)
}

func normalizeType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

type disabled struct{}

// NewDisabled returns a store that rejects every upload.
func NewDisabled() FileStore {
	return disabled{}
}

func (disabled) Save(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrDisabled
}

func (disabled) Remove(context.Context, string) error {
	return nil
}
