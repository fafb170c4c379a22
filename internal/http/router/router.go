package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/erp-gateway/internal/config"
	"github.com/straye-as/erp-gateway/internal/http/handler"
	"github.com/straye-as/erp-gateway/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/erp-gateway/docs" // Import generated swagger docs
)

type Router struct {
	cfg           *config.Config
	logger        *zap.Logger
	rateLimiter   *middleware.RateLimiter
	entityHandler *handler.EntityHandler
	authHandler   *handler.AuthHandler
	healthHandler *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	entityHandler *handler.EntityHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	return &Router{
		cfg:           cfg,
		logger:        logger,
		rateLimiter:   rateLimiter,
		entityHandler: entityHandler,
		authHandler:   authHandler,
		healthHandler: healthHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health checks
	r.Get("/health", rt.healthHandler.Health)
	r.Get("/health/adapters", rt.healthHandler.Adapters)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Backend sessions
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/logout/{adapterName}", rt.authHandler.Logout)

		// Standardized entity surface
		r.Route("/{entityType}", func(r chi.Router) {
			r.Get("/", rt.entityHandler.Search)
			r.Post("/", rt.entityHandler.Create)
			r.Get("/{id}", rt.entityHandler.GetByID)
			r.Put("/{id}", rt.entityHandler.Update)
			r.Delete("/{id}", rt.entityHandler.Delete)
		})
	})

	return r
}
