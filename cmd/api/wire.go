//go:build wireinject
// +build wireinject

// Regenerate wire_gen.go with `wire gen ./cmd/api`.

package main

import (
	"github.com/google/wire"

	"github.com/xiebiao/library/internal/application/account"
	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
)

var infrastructureSet = wire.NewSet(
	config.Load,
	provideDB,
	provideRedis,
	provideFileStore,
	provideEventPublisher,
)

var repositorySet = wire.NewSet(
	mysql.NewGenreRepository,
	mysql.NewAuthorRepository,
	mysql.NewBookRepository,
	mysql.NewInstanceRepository,
	mysql.NewReviewRepository,
	mysql.NewUserRepository,
	redis.NewSessionStore,
	provideVisitCounter,
	provideSummaryCache,
)

var domainSet = wire.NewSet(
	provideCatalogService,
	provideLoanService,
	provideReviewService,
	user.NewService,
)

var applicationSet = wire.NewSet(
	provideReplacer,
	appcatalog.NewSummaryUseCase,
	appcatalog.NewBrowseUseCase,
	appcatalog.NewSearchUseCase,
	appcatalog.NewSubmitReviewUseCase,
	appcatalog.NewManageUseCase,
	apploan.NewInstancesUseCase,
	apploan.NewMyInstancesUseCase,
	account.NewProfileUseCase,
	wire.Bind(new(appcatalog.VisitCounter), new(*redis.VisitCounter)),
	wire.Bind(new(appcatalog.SummaryCache), new(*redis.JSONCache)),
	wire.Bind(new(appcatalog.CacheInvalidator), new(*redis.JSONCache)),
	wire.Bind(new(apploan.CacheInvalidator), new(*redis.JSONCache)),
	wire.Bind(new(apploan.BookLookup), new(catalog.Service)),
)

var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideRateLimiter,
	middleware.NewAuthMiddleware,
	wire.Bind(new(middleware.RevocationChecker), new(*redis.SessionStore)),
)

var handlerSet = wire.NewSet(
	handler.NewCatalogHandler,
	handler.NewManageHandler,
	handler.NewInstanceHandler,
	handler.NewProfileHandler,
)

// InitializeApp wires the HTTP engine and the gRPC health server. The
// returned cleanup closes the database, Redis and the event publisher.
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
		provideHealthServer,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
