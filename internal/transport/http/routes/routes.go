package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/transport/http/handlers"
	"github.com/wayfare-dev/wayfare/internal/transport/http/middleware"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Sessions     *usecase.SessionService
	Registration *usecase.RegistrationService
	Accounts     *usecase.AccountService
	Verification *usecase.VerificationService
	Planners     *usecase.PlannerService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	checks := make([]handlers.ReadinessCheck, 0, 2)
	if deps.Database != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "postgres", Probe: deps.Database.Ping})
	}
	if deps.Cache != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Probe: deps.Cache.HealthCheck})
	}

	healthHandler := handlers.NewHealthHandler(checks...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.RequireAuth(deps.Services.Sessions)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Config, deps.Services.Sessions, deps.Services.Registration)
		authHandler.RegisterRoutes(api.Group("/auth"))

		accountGroup := api.Group("/account")
		accountGroup.Use(authMiddleware)
		accountHandler := handlers.NewAccountHandler(deps.Services.Accounts, deps.Services.Sessions, deps.Services.Verification)
		accountHandler.RegisterRoutes(accountGroup)

		plannerGroup := api.Group("/planners")
		plannerGroup.Use(authMiddleware)
		plannerHandler := handlers.NewPlannerHandler(deps.Services.Planners)
		plannerHandler.RegisterRoutes(plannerGroup)
	}

	return r
}
