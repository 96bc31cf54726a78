package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/localink/localink-backend/config"
	"github.com/localink/localink-backend/internal/auth"
	authmw "github.com/localink/localink-backend/internal/auth/middleware"
	"github.com/localink/localink-backend/internal/automation"
	"github.com/localink/localink-backend/internal/bootstrap"
	"github.com/localink/localink-backend/internal/chat"
	"github.com/localink/localink-backend/internal/logging"
	"github.com/localink/localink-backend/internal/metrics"
	onboardinghttp "github.com/localink/localink-backend/internal/onboarding/http"
	onboardingrepo "github.com/localink/localink-backend/internal/onboarding/repository"
	onboardingsvc "github.com/localink/localink-backend/internal/onboarding/service"
	relayhttp "github.com/localink/localink-backend/internal/relay/http"
	"github.com/localink/localink-backend/internal/storage/postgres"
)

const serviceName = "localink-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)
	metrics.Init()

	var (
		pool  *pgxpool.Pool
		sqlDB *sql.DB
		rdb   *redis.Client
		err   error
	)

	pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.ConnString()})
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	err = postgres.EnsureSchema(ctx, conn, logger)
	conn.Release()
	if err != nil {
		return err
	}

	sqlDB, err = postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Relay.Store == config.StoreRedis {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	store, err := bootstrap.RelayStore(cfg.Relay.Store, pool, rdb)
	if err != nil {
		return err
	}

	authHandler, err := authMiddleware(ctx, cfg, logger)
	if err != nil {
		return err
	}

	dispatcher := automation.NewDispatcher(
		automation.NewClient(cfg.Automation.WebhookURL, cfg.Automation.Timeout),
		logger.Named("automation"),
	)
	defer dispatcher.Wait()

	submissions := onboardingsvc.NewSubmissionService(
		onboardingrepo.NewBusinessRepository(sqlDB),
		dispatcher,
		logger.Named("onboarding"),
	)
	chatRelay := chat.NewRelay(automation.NewClient(cfg.Automation.ChatWebhookURL, cfg.Automation.Timeout))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Logger:      logger,
		DB:          pool,
		Redis:       rdb,
		RelayStore:  store,
		RelayOptions: relayhttp.Options{
			RequireAuth:        cfg.Relay.RequireAuth,
			RateLimitPerMinute: cfg.Relay.RateLimitPerMinute,
		},
		Auth:       authHandler,
		Onboarding: onboardinghttp.New(submissions),
		Chat:       chat.NewHandler(chatRelay),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.App.Version),
			zap.String("relay_store", cfg.Relay.Store),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// authMiddleware verifies Firebase ID tokens when enabled and otherwise
// trusts the development identity headers.
func authMiddleware(ctx context.Context, cfg *config.Config, logger *zap.Logger) (gin.HandlerFunc, error) {
	if !cfg.Firebase.Enabled {
		logger.Warn("firebase disabled, trusting X-User-Id headers")
		return auth.HeaderIdentity(), nil
	}

	client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return authmw.FirebaseAuthMiddleware(client), nil
}
