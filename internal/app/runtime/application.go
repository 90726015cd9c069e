// Package runtime turns a configuration into a running clinic server.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	app "github.com/R3E-Network/petclinic/internal/app"
	"github.com/R3E-Network/petclinic/internal/app/httpapi"
	"github.com/R3E-Network/petclinic/internal/app/i18n"
	"github.com/R3E-Network/petclinic/internal/app/storage/sqlstore"
	"github.com/R3E-Network/petclinic/internal/config"
	"github.com/R3E-Network/petclinic/internal/middleware"
	"github.com/R3E-Network/petclinic/internal/platform/database"
	"github.com/R3E-Network/petclinic/internal/platform/migrations"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// DefaultShutdownTimeout bounds Shutdown when the config does not.
const DefaultShutdownTimeout = 10 * time.Second

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg     *config.Config
	log     *logger.Logger
	app     *app.Application
	handler http.Handler
	server  *http.Server
	db      *sqlx.DB
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	return logger.New(logger.LoggingConfig{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		FilePrefix: cfg.FilePrefix,
	})
}

// NewApplication opens the configured store, applies migrations when asked
// to and builds the router and HTTP server. Nothing listens until Run.
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = NewLogger(cfg.Logging)
	}

	stores, db, err := buildStores(context.Background(), cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	application, err := app.New(stores, log, app.WithPageSize(cfg.Pagination.PageSize))
	if err != nil {
		closeDB()
		return nil, err
	}

	bundle, err := i18n.Embedded(cfg.I18n.DefaultLanguage)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("load locales: %w", err)
	}

	opts := httpapi.Options{
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        cfg.Metrics.Enabled,
		TrustedProxies: cfg.Server.TrustedProxies,
	}
	if cfg.RateLimit.Enabled() {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.CleanupInterval, log)
		if err := application.Attach(limiter); err != nil {
			closeDB()
			return nil, err
		}
		opts.RateLimiter = limiter
	}

	handler, err := httpapi.NewHandler(application, bundle, opts)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("build router: %w", err)
	}

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		handler: handler,
		db:      db,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}, nil
}

// App exposes the composed services.
func (a *Application) App() *app.Application {
	return a.app
}

// Handler exposes the root HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Run starts the lifecycle services and the HTTP server, then blocks until
// the context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", ln.Addr().String()).
			WithField("driver", a.cfg.Database.Driver).
			Info("HTTP server listening")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, the lifecycle services and the
// database connection.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return errors.Join(errs...)
}

// Migrate applies the embedded migrations to the configured database and
// reports the resulting schema version.
func Migrate(ctx context.Context, cfg *config.Config, log *logger.Logger) (uint, error) {
	if !cfg.Database.IsSQL() {
		return 0, fmt.Errorf("migrations need a SQL driver, got %q", cfg.Database.Driver)
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := migrations.Up(db.DB, cfg.Database.Driver); err != nil {
		return 0, err
	}
	version, dirty, err := migrations.Version(db.DB, cfg.Database.Driver)
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	if log != nil {
		log.WithField("version", version).Info("migrations applied")
	}
	return version, nil
}

func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, *sqlx.DB, error) {
	if !cfg.Database.IsSQL() {
		return app.Stores{}, nil, nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}
	if cfg.Database.Migrate {
		if err := migrations.Up(db.DB, cfg.Database.Driver); err != nil {
			_ = db.Close()
			return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.WithField("driver", cfg.Database.Driver).Info("database migrated")
	}
	return app.StoresFrom(sqlstore.New(db)), db, nil
}
