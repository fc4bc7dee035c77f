package main

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/storage"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         filepath.Join(t.TempDir(), "library.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Redis:   config.RedisConfig{Host: mr.Host(), Port: port},
		Catalog: config.CatalogConfig{PageSize: 3},
	}
}

func TestProviders_LocalStack(t *testing.T) {
	cfg := localConfig(t)

	db, closeDB, err := provideDB(cfg)
	require.NoError(t, err)
	t.Cleanup(closeDB)

	client, closeRedis, err := provideRedis(cfg)
	require.NoError(t, err)
	t.Cleanup(closeRedis)

	health := provideHealthServer(db, client)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Refresh(context.Background()))

	pub, closePub, err := provideEventPublisher(cfg)
	require.NoError(t, err)
	closePub()
	assert.IsType(t, messaging.NopPublisher{}, pub)

	store, err := provideFileStore(cfg)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "covers/x.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, storage.ErrDisabled)
}
