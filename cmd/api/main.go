package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-directory/internal/api/http"
	"github.com/spec-kit/user-directory/internal/api/http/handlers"
	"github.com/spec-kit/user-directory/internal/auth"
	"github.com/spec-kit/user-directory/internal/cache"
	"github.com/spec-kit/user-directory/internal/config"
	"github.com/spec-kit/user-directory/internal/events"
	"github.com/spec-kit/user-directory/internal/observability"
	"github.com/spec-kit/user-directory/internal/repository"
	"github.com/spec-kit/user-directory/internal/service"
	"github.com/spec-kit/user-directory/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := auth.RegistryFromConfig(cfg.Auth.Tokens)
	if err != nil {
		logger.Fatal("invalid token configuration", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(registry, logger)

	queryCache := cache.NewQueryCache()
	worker.StartCachePruner(ctx, queryCache, cfg.Cache.PruneInterval(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	worker.RegisterUserEventLogger(dispatcher, logger)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   repository.NewMemoryUserRepository(repository.SeedUsers()),
		Cache:      queryCache,
		CacheTTL:   cache.TTL{Absolute: cfg.Cache.AbsoluteTTL(), Sliding: cfg.Cache.SlidingTTL()},
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Pipeline: httptransport.NewPipeline(httptransport.PipelineConfig{
			Logger:        logger,
			Metrics:       metrics,
			Authenticator: authenticator,
			Production:    cfg.App.IsProduction(),
		}),
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Auth:   handlers.NewAuthHandler(registry),
		Users:  handlers.NewUsersHandler(userService),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
