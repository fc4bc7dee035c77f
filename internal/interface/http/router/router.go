// Package router assembles the gin engine: global middleware, the /api/v1
// routes and the operational endpoints.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Manage   *handler.ManageHandler
	Instance *handler.InstanceHandler
	Profile  *handler.ProfileHandler
}

// Options toggles the operational endpoints.
type Options struct {
	Mode    string // gin mode: debug | release | test
	Swagger bool
	Metrics bool
}

// New builds the engine. Authenticate resolves who the caller is and every
// /api/v1 route then passes through Authorize with its operation, so access
// is decided before path, query or body parsing.
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware, searchLimiter *middleware.RateLimiter) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.Tracing(),
		middleware.RequestLogger(),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	if opts.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(auth.Authenticate())
	{
		v1.GET("/summary", middleware.Authorize(access.OpViewSummary), h.Catalog.Summary)
		v1.GET("/search", middleware.Authorize(access.OpSearch), searchLimiter.Middleware(), h.Catalog.Search)
		v1.GET("/my-instances", middleware.Authorize(access.OpListMyInstances), h.Instance.MyInstances)

		manage := middleware.Authorize(access.OpManageCatalog)
		browse := middleware.Authorize(access.OpBrowseCatalog)

		genres := v1.Group("/genres")
		{
			genres.GET("", browse, h.Catalog.ListGenres)
			genres.POST("", manage, h.Manage.CreateGenre)
			genres.PUT("/:id", manage, h.Manage.UpdateGenre)
			genres.DELETE("/:id", manage, h.Manage.DeleteGenre)
		}

		authors := v1.Group("/authors")
		{
			authors.GET("", browse, h.Catalog.ListAuthors)
			authors.GET("/:id", browse, h.Catalog.GetAuthor)
			authors.POST("", manage, h.Manage.CreateAuthor)
			authors.PUT("/:id", manage, h.Manage.UpdateAuthor)
			authors.DELETE("/:id", manage, h.Manage.DeleteAuthor)
		}

		books := v1.Group("/books")
		{
			books.GET("", browse, h.Catalog.ListBooks)
			books.GET("/:id", browse, h.Catalog.GetBook)
			books.POST("/:id/reviews", middleware.Authorize(access.OpSubmitReview), h.Catalog.SubmitReview)
			books.POST("", manage, h.Manage.CreateBook)
			books.PUT("/:id", manage, h.Manage.UpdateBook)
			books.DELETE("/:id", manage, h.Manage.DeleteBook)
			books.POST("/:id/cover", manage, h.Manage.UploadCover)
		}

		instances := v1.Group("/instances")
		{
			instances.GET("", middleware.Authorize(access.OpListInstances), h.Instance.List)
			instances.GET("/:id", middleware.Authorize(access.OpViewInstance), h.Instance.Get)
			instances.POST("", middleware.Authorize(access.OpCreateInstance), h.Instance.Create)
			instances.PUT("/:id", middleware.Authorize(access.OpUpdateInstance), h.Instance.Update)
			instances.POST("/:id/assign", middleware.Authorize(access.OpAssignReader), h.Instance.AssignReader)
			instances.POST("/:id/return", middleware.Authorize(access.OpReturnInstance), h.Instance.Return)
		}

		profile := v1.Group("/profile")
		{
			profile.GET("", middleware.Authorize(access.OpViewProfile), h.Profile.Get)
			profile.PUT("", middleware.Authorize(access.OpUpdateProfile), h.Profile.Update)
			profile.POST("/photo", middleware.Authorize(access.OpUpdateProfile), h.Profile.UploadPhoto)
		}
	}

	return r
}
