package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// JSONCache stores one JSON value under a fixed key.
type JSONCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// SummaryKey holds the cached catalog summary.
const SummaryKey = "catalog:summary"

// NewJSONCache creates a cache for key. ttl <= 0 keeps values forever.
func NewJSONCache(client *redis.Client, key string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, key: key, ttl: ttl}
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *JSONCache) Get(ctx context.Context, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "read cache")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, apperrors.Wrap(err, "decode cache")
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "encode cache")
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "write cache")
	}
	return nil
}

func (c *JSONCache) Delete(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return apperrors.Wrap(err, "clear cache")
	}
	return nil
}
