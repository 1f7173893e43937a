package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/account-service/internal/api/http"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/notify"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/persistence"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/internal/worker"
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

	redisConn := persistence.NewRedis(cfg.Redis, logger)
	defer redisConn.Close()

	var (
		userRepo  repository.UserRepository
		tokenRepo repository.ConfirmationTokenRepository
		resetRepo repository.PasswordResetRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		tokenRepo = repository.NewConfirmationTokenRepository(pool)
		resetRepo = repository.NewPasswordResetRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		tokenRepo = repository.NewMemoryConfirmationTokenRepository()
		resetRepo = repository.NewMemoryPasswordResetRepository()
	}

	metrics := observability.NewMetrics()
	notifier := notify.NewLogNotifier(logger, cfg.Notify.EmailFrom)
	dispatcher := notify.NewDispatcher(notifier, logger, metrics, cfg.Notify.QueueSize, cfg.Notify.Workers)
	defer dispatcher.Close()

	accountService := service.NewAccountService(cfg.Lifecycle, service.AccountDependencies{
		UserRepo:  userRepo,
		TokenRepo: tokenRepo,
		Sink:      dispatcher,
		Metrics:   metrics,
		Logger:    logger,
	})
	resetService := service.NewPasswordResetService(cfg.Lifecycle, service.ResetDependencies{
		UserRepo:  userRepo,
		ResetRepo: resetRepo,
		Sink:      dispatcher,
		Metrics:   metrics,
		Logger:    logger,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)
	hierarchy := auth.NewHierarchy(auth.DefaultHierarchyEdges)

	sweeper := worker.NewResetTokenSweeper(resetService, redisConn.Client, logger, cfg.Lifecycle.SweepInterval())
	go sweeper.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redisConn),
		Accounts:       handlers.NewAccountsHandler(accountService, tokenManager),
		Password:       handlers.NewPasswordHandler(resetService),
		AuthMiddleware: authMiddleware,
		Hierarchy:      hierarchy,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
