package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"png", "image/png", 100, false},
		{"jpeg with params", "image/jpeg; charset=binary", 100, false},
		{"upper case", "IMAGE/WEBP", 100, false},
		{"pdf", "application/pdf", 100, true},
		{"empty", "image/png", 0, true},
		{"too large", "image/png", 2048, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckImage("photo", tt.contentType, tt.size, 1024)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, apperrors.GetAppError(err).Fields, "photo")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestObjectKey(t *testing.T) {
	a := ObjectKey("profiles/7", "image/png")
	b := ObjectKey("profiles/7", "image/png")

	assert.True(t, strings.HasPrefix(a, "profiles/7/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "http://minio:9000/library",
		publicBase(config.StorageConfig{Endpoint: "minio:9000", Bucket: "library"}))
	assert.Equal(t, "https://cdn.example.org/library",
		publicBase(config.StorageConfig{Endpoint: "minio:9000", Bucket: "library", PublicURL: "https://cdn.example.org/"}))
}

func TestKeyFromURL(t *testing.T) {
	base := "http://minio:9000/library"

	key, ok := keyFromURL(base, base+"/covers/3/a.png")
	assert.True(t, ok)
	assert.Equal(t, "covers/3/a.png", key)

	_, ok = keyFromURL(base, "https://elsewhere.org/a.png")
	assert.False(t, ok)
	_, ok = keyFromURL(base, "")
	assert.False(t, ok)
}

func TestStorageError(t *testing.T) {
	err := storageError(circuitbreaker.ErrOpenState)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	err = storageError(errors.New("access denied"))
	assert.ErrorIs(t, err, apperrors.ErrStorageError)
}

func TestDisabled(t *testing.T) {
	store := NewDisabled()

	_, err := store.Save(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, store.Remove(context.Background(), "http://x/y"))
}
