package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/dougsimpsoncodes/myailandlord/internal/invites/http"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/metrics"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/postgres"
	"github.com/dougsimpsoncodes/myailandlord/internal/invites/store/drivers/sqlite"
	"github.com/dougsimpsoncodes/myailandlord/pkg/cryptox"
	"github.com/dougsimpsoncodes/myailandlord/pkg/jwtx"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
	"github.com/dougsimpsoncodes/myailandlord/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the invitation service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db           store.Store
	codec        *service.TokenCodec
	keys         *jwtx.KeySet
	verifier     *jwtx.KeySetVerifier
	jwksFetcher  *jwtx.JWKSFetcher
	limiter      ratelimit.Limiter
	closeLimiter func() error

	// Services
	issueService        *service.IssueService
	validateService     *service.ValidateService
	acceptService       *service.AcceptService
	revokeService       *service.RevokeService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router

	// Cancels background loops bound to the application lifetime
	stop context.CancelFunc
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "invite-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := slogx.WithContext(context.Background(), app.logger)

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initTokenCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keys, verifier, fetcher, err := InitVerifier(ctx, app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize bearer verification: %w", err)
	}
	app.keys, app.verifier, app.jwksFetcher = keys, verifier, fetcher

	limiter, closeLimiter, err := InitLimiter(ctx, app.cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	app.limiter, app.closeLimiter = limiter, closeLimiter

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Start launches the background loops: JWKS refresh and housekeeping.
func (app *Application) Start() {
	ctx, cancel := context.WithCancel(slogx.WithContext(context.Background(), app.logger))
	app.stop = cancel

	app.jwksFetcher.Start(ctx)
	app.housekeepingService.Start()
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.Start()

	app.logger.Info("invite service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down invite service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop background loops
	if app.stop != nil {
		app.jwksFetcher.Stop()
		app.housekeepingService.Stop()
		app.stop()
	}

	if err := app.closeLimiter(); err != nil {
		app.logger.Error("error closing rate limiter backend", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("invite service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var db store.Store
	switch app.cfg.DatabaseDriver {
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pg, err := postgres.NewStore(ctx, app.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = pg
	case "sqlite", "":
		host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		lite, err := sqlite.NewStore(host)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = lite
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initTokenCodec loads the hashing secret shared by every instance
func (app *Application) initTokenCodec() error {
	secret, err := cryptox.LoadOrGenerateSecret(app.cfg.TokenSecretFile)
	if err != nil {
		return fmt.Errorf("failed to load token secret: %w", err)
	}

	hasher, err := cryptox.NewKeyedHasher(secret, service.HashPurpose)
	if err != nil {
		return fmt.Errorf("failed to derive token hashing key: %w", err)
	}

	codec, err := service.NewTokenCodec(hasher)
	if err != nil {
		return err
	}
	app.codec = codec
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.issueService = &service.IssueService{
		Store:  app.db,
		Codec:  app.codec,
		Policy: app.cfg.Issue,
	}
	app.validateService = &service.ValidateService{
		Store: app.db,
		Codec: app.codec,
		Grace: app.cfg.AcceptGrace,
	}
	app.acceptService = &service.AcceptService{
		Store: app.db,
		Codec: app.codec,
		Grace: app.cfg.AcceptGrace,
	}
	app.revokeService = &service.RevokeService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.TokenRetention,
		app.cfg.BucketIdleTTL,
	)
	app.housekeepingService.OnCleanup = metrics.ObserveCleanup
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		app.limiter,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AllowedOrigins = app.cfg.AllowedOrigins
	router.TrustProxyHeaders = app.cfg.TrustProxyHeaders
	router.RequestTimeout = app.cfg.RequestTimeout

	// Wire services to router
	router.IssueService = app.issueService
	router.ValidateService = app.validateService
	router.AcceptService = app.acceptService
	router.RevokeService = app.revokeService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
