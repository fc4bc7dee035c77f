package main

import (
	"context"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/application/media"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/review"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/infrastructure/storage"
	grpcapi "github.com/xiebiao/library/internal/interface/grpc"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
)

// App is everything main needs to run and stop the service.
type App struct {
	Config *config.Config
	Engine *gin.Engine
	Health *grpcapi.HealthServer
}

func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideRedis(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideCatalogService(cfg *config.Config, genres catalog.GenreRepository, authors catalog.AuthorRepository, books catalog.BookRepository) catalog.Service {
	return catalog.NewService(genres, authors, books, cfg.Catalog.PageSize)
}

func provideLoanService(cfg *config.Config, repo loan.Repository, catalogService catalog.Service, userService user.Service) loan.Service {
	return loan.NewService(repo, catalogService, userService, cfg.Catalog.PageSize)
}

func provideReviewService(repo review.Repository, catalogService catalog.Service) review.Service {
	return review.NewService(repo, catalogService)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

func provideVisitCounter(cfg *config.Config, client *goredis.Client) *redis.VisitCounter {
	return redis.NewVisitCounter(client, cfg.Cache.VisitTTL)
}

func provideSummaryCache(cfg *config.Config, client *goredis.Client) *redis.JSONCache {
	return redis.NewJSONCache(client, redis.SummaryKey, cfg.Cache.SummaryTTL)
}

// provideFileStore returns MinIO when storage is enabled; otherwise uploads
// fail with 503 and everything else keeps working.
func provideFileStore(cfg *config.Config) (storage.FileStore, error) {
	if !cfg.Storage.Enabled {
		logger.Warn("file storage disabled, uploads will be rejected", nil)
		return storage.NewDisabled(), nil
	}
	return storage.NewMinioStore(context.Background(), cfg.Storage)
}

func provideReplacer(cfg *config.Config, store storage.FileStore) *media.Replacer {
	return media.NewReplacer(store, cfg.Storage.MaxSize)
}

func provideEventPublisher(cfg *config.Config) (apploan.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewLoanEventPublisher(pub), func() { _ = pub.Close() }, nil
}

func provideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimit.SearchRPS, cfg.RateLimit.SearchBurst)
}

func provideGinEngine(
	cfg *config.Config,
	catalogHandler *handler.CatalogHandler,
	manageHandler *handler.ManageHandler,
	instanceHandler *handler.InstanceHandler,
	profileHandler *handler.ProfileHandler,
	authMiddleware *middleware.AuthMiddleware,
	searchLimiter *middleware.RateLimiter,
) *gin.Engine {
	return router.New(
		router.Options{
			Mode:    cfg.Server.Mode,
			Swagger: cfg.Server.Mode != gin.ReleaseMode,
			Metrics: true,
		},
		router.Handlers{
			Catalog:  catalogHandler,
			Manage:   manageHandler,
			Instance: instanceHandler,
			Profile:  profileHandler,
		},
		authMiddleware,
		searchLimiter,
	)
}

func provideHealthServer(db *gorm.DB, client *goredis.Client) *grpcapi.HealthServer {
	return grpcapi.NewHealthServer(map[string]grpcapi.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}, 0)
}
