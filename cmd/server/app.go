package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AllexanderGM/feeling-sub000/internal/api"
	"github.com/AllexanderGM/feeling-sub000/internal/api/middleware"
	"github.com/AllexanderGM/feeling-sub000/internal/config"
	"github.com/AllexanderGM/feeling-sub000/internal/metrics"
	"github.com/AllexanderGM/feeling-sub000/internal/platform/logger"
	"github.com/AllexanderGM/feeling-sub000/internal/platform/postgres"
	"github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// application holds the long-lived components of the server. Everything
// here is constructed once at startup and torn down at shutdown; nothing
// lives in package-level globals.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	tokenStore   store.TokenStore
	bookingStore store.BookingStore

	jwtService auth.JWTService
	passwords  *auth.BcryptVerifier
	userCache  *usercache.Cache
	limiter    *middleware.RateLimiter
	sweeper    *cron.Cron
	metrics    *metrics.Pipeline
	pipeline   *middleware.Pipeline
}

// newApplication loads configuration and constructs every component.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewUserStore(db)
	tokenStore := postgres.NewTokenStore(db)
	bookingStore := postgres.NewBookingStore(db)

	userCache := usercache.New(
		userStore,
		time.Duration(cfg.Cache.UserTTLSeconds)*time.Second,
		cfg.Cache.MaxEntries,
	)

	pipelineMetrics := metrics.NewPipeline()
	classifier := middleware.NewRouteClassifier(middleware.DefaultRouteRules())
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	sweeper, err := limiter.StartSweeper()
	if err != nil {
		return nil, err
	}

	resolver := api.NewOwnerResolver(userStore, bookingStore)
	pipeline := middleware.NewPipeline(
		middleware.NewRateLimitMiddleware(limiter, classifier, pipelineMetrics),
		middleware.NewTokenAuthenticator(classifier, jwtService, tokenStore, userCache, pipelineMetrics),
		middleware.NewOwnershipGuard(classifier, resolver, pipelineMetrics),
	)

	return &application{
		config:       cfg,
		logger:       appLogger,
		db:           db,
		userStore:    userStore,
		tokenStore:   tokenStore,
		bookingStore: bookingStore,
		jwtService:   jwtService,
		passwords:    auth.NewBcryptVerifier(cfg.Auth.BCryptCost),
		userCache:    userCache,
		limiter:      limiter,
		sweeper:      sweeper,
		metrics:      pipelineMetrics,
		pipeline:     pipeline,
	}, nil
}

// run starts the HTTP server and blocks until shutdown.
func (app *application) run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources at shutdown.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
