package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// SessionStore keeps revoked token ids until the tokens would expire anyway.
// Keys: revoked:{jti}.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a session store.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}

// Revoke blacklists a token id for ttl.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "revoke token")
	}
	return nil
}

// IsRevoked reports whether a token id is blacklisted.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}
