package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/api/http/handlers"
	"github.com/spec-kit/user-directory/internal/auth"
	"github.com/spec-kit/user-directory/internal/observability"
	"github.com/spec-kit/user-directory/internal/pipeline"
)

// PipelineConfig bundles dependencies for the request pipeline.
type PipelineConfig struct {
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Authenticator *auth.Authenticator
	Production    bool
	PublicPaths   []string
}

// NewPipeline builds the request pipeline in its fixed order.
func NewPipeline(cfg PipelineConfig) *pipeline.Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline.New(
		NewErrorContainmentStage(logger, cfg.Metrics, cfg.Production),
		auth.NewAuthenticationStage(cfg.Authenticator, logger, cfg.PublicPaths...).WithMetrics(cfg.Metrics),
		NewAuditStage(logger, cfg.Metrics),
		auth.NewAuthorizationStage(),
		NewRoutingStage(logger, cfg.Metrics, cfg.Production),
	)
}

// NewApp creates the fiber application. Context values are immutable so they
// stay valid in log entries after the request is released.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		Immutable:             true,
		DisableStartupMessage: true,
	})
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Pipeline *pipeline.Pipeline
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
}

// RegisterRoutes installs the pipeline ahead of every route and wires the handlers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Pipeline.Handler())

	app.Get("/health/live", cfg.Health.Live)

	authGroup := app.Group("/api/auth")
	authGroup.Get("/info", cfg.Auth.Info)
	authGroup.Get("/validate", cfg.Auth.Validate)

	users := app.Group("/api/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
