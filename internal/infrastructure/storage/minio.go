package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/logger"
)

// MinioStore is a FileStore backed by one MinIO bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string // <public url>/<bucket>
	breaker *circuitbreaker.CircuitBreaker
}

// NewMinioStore connects to the configured endpoint and creates the bucket
// when missing.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", map[string]interface{}{"bucket": cfg.Bucket})
	}

	store := &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg),
		breaker: newBreaker("storage"),
	}
	return store, nil
}

func publicBase(cfg config.StorageConfig) string {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return base + "/" + cfg.Bucket
}

func newBreaker(name string) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed", map[string]interface{}{
			"name": name,
			"from": from.String(),
			"to":   to.String(),
		})
	})
	return cb
}

func (s *MinioStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return "", storageError(err)
	}

	logger.FromContext(ctx).Debug().Str("bucket", s.bucket).Str("key", key).Int64("size", size).Msg("file stored")
	return s.baseURL + "/" + key, nil
}

// Remove ignores URLs that point outside the bucket.
func (s *MinioStore) Remove(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.baseURL, url)
	if !ok {
		return nil
	}

	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	})
	if err != nil {
		return storageError(err)
	}
	return nil
}

func keyFromURL(base, url string) (string, bool) {
	key, ok := strings.CutPrefix(url, base+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func storageError(err error) error {
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return apperrors.ErrUnavailable.WithCause(err)
	}
	return apperrors.ErrStorageError.WithCause(err)
}
