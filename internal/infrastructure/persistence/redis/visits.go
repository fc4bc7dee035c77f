package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// VisitCounter counts summary page visits per visitor.
// Keys: visits:{visitor}, expiring ttl after the last visit.
type VisitCounter struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVisitCounter creates a visit counter.
func NewVisitCounter(client *redis.Client, ttl time.Duration) *VisitCounter {
	return &VisitCounter{client: client, ttl: ttl}
}

// Incr records a visit and returns the visitor's count including it.
func (c *VisitCounter) Incr(ctx context.Context, visitor string) (int64, error) {
	key := fmt.Sprintf("visits:%s", visitor)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperrors.Wrap(err, "count visit")
	}
	return incr.Val(), nil
}
