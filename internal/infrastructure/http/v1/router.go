// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"docgate/internal/domain/auth"
	"docgate/internal/domain/documents"
	"docgate/internal/infrastructure/http/v1/handlers"
	"docgate/internal/infrastructure/http/v1/middleware"
	"docgate/internal/infrastructure/storage/postgres"
	"docgate/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// Authenticator is the validation strategy chosen at startup.
	Authenticator auth.Authenticator

	// AuthService serves delegated auth endpoints. Nil outside multi-user
	// mode, which leaves those endpoints unmounted.
	AuthService *auth.Service

	// DocumentService serves upload tracking and visibility resolution.
	DocumentService *documents.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		// Every protected endpoint runs the same validation strategy; the
		// strategy never changes after startup.
		protected := v1.Group("")
		protected.Use(middleware.Validated(cfg.Authenticator))

		// Delegated auth endpoints exist only in multi-user mode.
		if cfg.AuthService != nil {
			authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
			authHandler.RegisterRoutes(v1.Group("/auth"), protected.Group("/auth"))

			userHandler := handlers.NewUserHandler(baseHandler, cfg.AuthService)
			users := protected.Group("/users")
			users.Use(middleware.RequireRole(auth.RoleAdmin))
			userHandler.RegisterRoutes(users)
		}

		documentHandler := handlers.NewDocumentHandler(baseHandler, cfg.DocumentService)
		documentHandler.RegisterRoutes(protected.Group("/documents"))
	}

	return router
}
