// Package server wires the view service together: it opens the PostgreSQL
// pool, applies migrations, builds the services and runs the HTTP API until
// the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server/config"
	"github.com/dmitrijs2005/viewstore/internal/server/httpapi"
	"github.com/dmitrijs2005/viewstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/viewstore/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sqlx.DB, error) {
		return sqlx.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sqlx.DB
	server *httpapi.HTTPServer
}

// NewApp opens the database, migrates it and builds the HTTP server.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetMaxIdleConns(c.DBMaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	views := services.NewViewService(db, rm, logger)
	thumbnails := services.NewThumbnailService(views, c)
	srv := httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, views, thumbnails, c.SecretKey, c.RequestTimeout,
		httpapi.WithAllowedOrigins(c.CORSAllowedOrigins...))

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// Run serves until ctx is canceled or SIGINT/SIGTERM/SIGQUIT arrives, then
// shuts the server down and closes the pool.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "max_open_conns", app.config.DBMaxOpenConns)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("db close error: %w", cerr)
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
