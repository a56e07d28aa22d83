package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/bookticket/user-service/internal/api/http"
	"github.com/bookticket/user-service/internal/api/http/handlers"
	"github.com/bookticket/user-service/internal/auth"
	"github.com/bookticket/user-service/internal/config"
	"github.com/bookticket/user-service/internal/events"
	"github.com/bookticket/user-service/internal/observability"
	"github.com/bookticket/user-service/internal/persistence"
	"github.com/bookticket/user-service/internal/repository"
	"github.com/bookticket/user-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tokenMgr, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("invalid signing key", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var accountRepo repository.AccountRepository
	if pool := pg.PoolHandle(); pool != nil {
		accountRepo = repository.NewAccountRepository(pool)
	} else {
		logger.Warn("running with in-memory account store")
		accountRepo = repository.NewMemoryAccountRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger)
	auditService.RegisterHandlers()

	accountService := service.NewAccountService(accountRepo, dispatcher, logger, cfg.Auth.BcryptCost)
	limiter := service.NewLoginLimiter(redis.Client, cfg.Limiter, logger)
	authService := service.NewAuthService(accountService, tokenMgr, limiter, logger)
	authMiddleware := auth.NewMiddleware(tokenMgr)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	accountsHandler := handlers.NewAccountsHandler(authService, accountService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Accounts:       accountsHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
