package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "mem://" + key
	m.objects[url] = body
	return url, nil
}

func (m *memStore) Remove(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	return nil
}

func png(body string) Upload {
	return Upload{Field: "photo", Reader: strings.NewReader(body), Size: int64(len(body)), ContentType: "image/png"}
}

func TestReplace_Success(t *testing.T) {
	store := newMemStore()
	store.objects["mem://old.png"] = []byte("old")
	r := NewReplacer(store, 1024)

	var recorded string
	url, err := r.Replace(context.Background(), "profiles/7", png("new"), "mem://old.png",
		func(_ context.Context, u string) error {
			recorded = u
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, url, recorded)
	assert.True(t, strings.HasPrefix(url, "mem://profiles/7/"))
	assert.Contains(t, store.objects, url)
	assert.NotContains(t, store.objects, "mem://old.png")
}

func TestReplace_RecordFailureRemovesNewFile(t *testing.T) {
	store := newMemStore()
	store.objects["mem://old.png"] = []byte("old")
	r := NewReplacer(store, 1024)

	dbErr := errors.New("deadlock")
	_, err := r.Replace(context.Background(), "covers/1", png("new"), "mem://old.png",
		func(context.Context, string) error { return dbErr })

	assert.ErrorIs(t, err, dbErr)
	assert.Len(t, store.objects, 1)
	assert.Contains(t, store.objects, "mem://old.png")
}

func TestReplace_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.saveErr = apperrors.ErrUnavailable
	r := NewReplacer(store, 1024)

	called := false
	_, err := r.Replace(context.Background(), "covers/1", png("new"), "",
		func(context.Context, string) error {
			called = true
			return nil
		})

	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.False(t, called)
}

func TestReplace_RejectsBadUpload(t *testing.T) {
	r := NewReplacer(newMemStore(), 4)

	_, err := r.Replace(context.Background(), "p", png("too large"), "", nil)
	require.Error(t, err)
	assert.Contains(t, apperrors.GetAppError(err).Fields, "photo")

	up := png("x")
	up.ContentType = "text/plain"
	_, err = r.Replace(context.Background(), "p", up, "", nil)
	assert.True(t, apperrors.IsValidation(err))
}
