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

	httpapi "github.com/bormonoff/Auth-Service/internal/auth/http"
	"github.com/bormonoff/Auth-Service/internal/auth/revocation"
	"github.com/bormonoff/Auth-Service/internal/auth/service"
	"github.com/bormonoff/Auth-Service/internal/auth/store"
	"github.com/bormonoff/Auth-Service/internal/auth/store/drivers/postgres"
	"github.com/bormonoff/Auth-Service/internal/auth/store/drivers/sqlite"
	"github.com/bormonoff/Auth-Service/pkg/cryptox"
	"github.com/bormonoff/Auth-Service/pkg/jwtx"
	"github.com/bormonoff/Auth-Service/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application owns the auth service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	redis  *redis.Client
	cache  revocation.Cache
	codec  *jwtx.Codec
	hasher *cryptox.Argon2Hasher

	// Services
	sessionService      *service.SessionService
	userService         *service.UserService
	rolesService        *service.RolesService
	accessService       *service.AccessService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New connects to the database and redis, applies migrations, creates the
// bootstrap administrator when configured and builds the HTTP server.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initSecrets(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	app.initCache()

	app.initServices()
	if err := app.bootstrap(ctx); err != nil {
		_ = app.close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the
// store and the redis client.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// close releases the store and the redis client, returning the first error.
func (app *Application) close() error {
	var first error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			first = err
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// initSecrets builds the token codec and the password hasher.
func (app *Application) initSecrets() error {
	codec, err := jwtx.NewCodec([]byte(app.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewArgon2Hasher(pepper)
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Pool{
			MaxOpenConns:    app.cfg.DBMaxOpenConns,
			MaxIdleConns:    app.cfg.DBMaxIdleConns,
			ConnMaxLifetime: 30 * time.Minute,
		})
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCache creates the redis client backing the access-token denylist.
// Connectivity is not required at startup; /readyz reports it.
func (app *Application) initCache() {
	app.redis = revocation.NewRedisClient(revocation.RedisConfig{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	app.cache = revocation.NewRedisCache(app.redis, app.cfg.RedisKeyPrefix)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	loginPattern := app.cfg.LoginRegexp()

	app.accessService = &service.AccessService{Store: app.db}
	app.sessionService = &service.SessionService{
		Codec:        app.codec,
		Store:        app.db,
		Roles:        app.accessService,
		Passwords:    app.hasher,
		Revocations:  app.cache,
		AccessTTL:    app.cfg.AccessTokenTTL,
		RefreshTTL:   app.cfg.RefreshTokenTTL,
		LoginPattern: loginPattern,
	}
	app.userService = &service.UserService{
		Store:        app.db,
		Passwords:    app.hasher,
		LoginPattern: loginPattern,
	}
	app.rolesService = &service.RolesService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Passwords: app.hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrap creates the configured administrator on an empty database.
func (app *Application) bootstrap(ctx context.Context) error {
	if app.cfg.BootstrapAdminLogin == "" {
		return nil
	}

	admin, err := app.bootstrapService.Bootstrap(ctx, service.BootstrapAdmin{
		Login:    app.cfg.BootstrapAdminLogin,
		Password: app.cfg.BootstrapAdminPassword,
		Email:    app.cfg.BootstrapAdminEmail,
		Role:     app.cfg.AdminRole,
	})
	switch {
	case errors.Is(err, service.ErrBootstrapAlready):
		app.logger.Debug("bootstrap skipped, users already exist")
		return nil
	case err != nil:
		return fmt.Errorf("failed to bootstrap administrator: %w", err)
	}

	app.logger.Info("bootstrap administrator created", "login", admin.Login, "role", app.cfg.AdminRole)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
		app.cfg.RateLimits,
		app.cfg.AdminRole,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.AccessService = app.accessService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
