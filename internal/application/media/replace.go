// Package media replaces an entity's image (profile photo, book cover) across
// the object store and the database.
package media

import (
	"context"
	"io"
	"time"

	"github.com/xiebiao/library/internal/infrastructure/storage"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/saga"
)

// Upload is a file received from a client.
type Upload struct {
	Field       string // form field, used in validation errors
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Replacer stores a new image, points the record at it and then removes the
// previous image. If the record update fails the new file is deleted again.
type Replacer struct {
	store   storage.FileStore
	maxSize int64
	timeout time.Duration
}

func NewReplacer(store storage.FileStore, maxSize int64) *Replacer {
	return &Replacer{
		store:   store,
		maxSize: maxSize,
		timeout: 30 * time.Second,
	}
}

// Replace runs the upload saga. prefix is the object key prefix, oldURL the
// current image (may be empty) and setURL persists the new URL.
func (r *Replacer) Replace(ctx context.Context, prefix string, up Upload, oldURL string, setURL func(ctx context.Context, url string) error) (string, error) {
	field := up.Field
	if field == "" {
		field = "file"
	}
	if err := storage.CheckImage(field, up.ContentType, up.Size, r.maxSize); err != nil {
		return "", err
	}

	var newURL string
	s := saga.NewSaga(r.timeout)
	s.AddStep("store-file",
		func(ctx context.Context) error {
			url, err := r.store.Save(ctx, storage.ObjectKey(prefix, up.ContentType), up.Reader, up.Size, up.ContentType)
			if err != nil {
				return err
			}
			newURL = url
			return nil
		},
		func(ctx context.Context) error {
			return r.store.Remove(ctx, newURL)
		},
	)
	s.AddStep("record-url",
		func(ctx context.Context) error {
			return setURL(ctx, newURL)
		},
		nil,
	)

	if err := s.Execute(ctx); err != nil {
		return "", err
	}

	if oldURL != "" && oldURL != newURL {
		if err := r.store.Remove(ctx, oldURL); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("url", oldURL).Msg("previous file not removed")
		}
	}
	return newURL, nil
}
