package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/docchat/internal/docchat/docsvc"
	httpapi "github.com/aussiebroadwan/docchat/internal/docchat/http"
	"github.com/aussiebroadwan/docchat/internal/docchat/service"
	"github.com/aussiebroadwan/docchat/internal/docchat/storage"
	"github.com/aussiebroadwan/docchat/internal/docchat/store"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/mongo"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/postgres"
	"github.com/aussiebroadwan/docchat/internal/docchat/store/drivers/sqlite"
	"github.com/aussiebroadwan/docchat/pkg/cryptox"
	"github.com/aussiebroadwan/docchat/pkg/httpx"
	"github.com/aussiebroadwan/docchat/pkg/jwtx"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the docchat server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	signer  *jwtx.HS256
	hasher  *cryptox.Hasher
	files   storage.Storage
	uploads string // set for local storage only
	index   *docsvc.Client
	redis   *redis.Client

	// Services
	authService     *service.AuthService
	documentService *service.DocumentService
	chatService     *service.ChatService
	monitor         *service.UpstreamMonitor // nil without a document service

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "docchat",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	steps := []func(context.Context) error{
		app.initCrypto,
		app.initStorage,
		app.initRateLimits,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			app.closeResources()
			return nil, err
		}
	}

	app.initDocumentService()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.monitor != nil {
		app.monitor.Start()
	}

	app.logger.Info("docchat starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"storage", app.cfg.StorageDriver,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeResources()
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
	app.logger.Info("shutting down docchat...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("docchat stopped")
	return nil
}

// closeResources stops the monitor and releases redis and the database.
// Only the database error is returned.
func (app *Application) closeResources() error {
	if app.monitor != nil {
		app.monitor.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if app.db == nil {
		return nil
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	case DriverMongo:
		db, err = mongo.NewStore(ctx, app.cfg.Mongo)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCrypto loads the pepper and builds the token signer
func (app *Application) initCrypto(_ context.Context) error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	secret := app.cfg.JWTSecret
	if secret == "" {
		secret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate signing secret: %w", err)
		}
		app.logger.Warn("JWT_SECRET not set, using an ephemeral secret; sessions end on restart")
	}

	app.signer, err = jwtx.NewHS256([]byte(secret))
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	return nil
}

func (app *Application) initStorage(ctx context.Context) error {
	switch app.cfg.StorageDriver {
	case StorageS3:
		s3, err := storage.NewS3(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		app.files = s3
	default:
		local, err := storage.NewLocal(app.cfg.UploadDir, app.cfg.PublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize upload dir: %w", err)
		}
		app.files = local
		app.uploads = local.Dir()
	}
	return nil
}

// initRateLimits connects to redis when configured so replicas share counters
func (app *Application) initRateLimits(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, app.cfg.RedisConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.logger.Info("rate limits backed by redis")
	return nil
}

func (app *Application) initDocumentService() {
	if app.cfg.DocumentServiceURL == "" {
		app.logger.Warn("DOCUMENT_SERVICE_URL not set; uploads are stored but not indexed and chat is unavailable")
		return
	}

	app.index = docsvc.New(app.cfg.DocumentServiceURL, app.cfg.DocumentServiceTimeout)
	app.monitor = service.NewUpstreamMonitor(app.index, app.logger, app.cfg.UpstreamCheckInterval)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
		Tokens: app.signer,
	}

	app.documentService = &service.DocumentService{
		Store:   app.db,
		Storage: app.files,
	}
	app.chatService = &service.ChatService{}

	// A typed nil would defeat the services' nil checks.
	if app.index != nil {
		app.documentService.Index = app.index
		app.chatService.Index = app.index
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)

	if app.redis != nil {
		router.RateLimits = httpx.RateLimits{New: httpx.RedisLimiterFactory(app.redis)}
	}
	router.UploadDir = app.uploads
	router.MaxUploadBytes = app.cfg.MaxUploadBytes

	// Wire services to router
	router.AuthService = app.authService
	router.DocumentService = app.documentService
	router.ChatService = app.chatService
	router.Monitor = app.monitor
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
