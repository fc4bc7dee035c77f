package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSessionStore_Revoke(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "abc", time.Minute))
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "expired", 0))
	assert.False(t, mr.Exists("revoked:expired"))
}

func TestVisitCounter_Incr(t *testing.T) {
	client, mr := newTestClient(t)
	counter := NewVisitCounter(client, time.Hour)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := counter.Incr(ctx, "user:7")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := counter.Incr(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	assert.Equal(t, time.Hour, mr.TTL("visits:user:7"))
}

func TestJSONCache(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewJSONCache(client, "summary", 30*time.Second)
	ctx := context.Background()

	type counts struct {
		Books int64 `json:"books"`
	}

	var got counts
	hit, err := cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, counts{Books: 7}))
	hit, err = cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(7), got.Books)

	require.NoError(t, cache.Delete(ctx))
	hit, err = cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, counts{Books: 1}))
	mr.FastForward(time.Minute)
	hit, err = cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
