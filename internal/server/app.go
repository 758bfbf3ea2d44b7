// Package server initializes and runs the gallery application server.
// It validates configuration, wires the selected storage backend into the
// item service, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gallerykeeper/internal/logging"
	"gallerykeeper/internal/server/auth"
	"gallerykeeper/internal/server/config"
	"gallerykeeper/internal/server/httpapi"
	"gallerykeeper/internal/server/items"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService *auth.Service
	itemService *items.Service
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	repo, err := newRepository(c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	as := auth.NewService(c)
	is := items.NewService(repo)

	return &App{config: c, logger: logger, authService: as, itemService: is}, nil
}

// newRepository picks the item storage backend from config.
func newRepository(c *config.Config, logger logging.Logger) (items.Repository, error) {
	switch c.StorageBackend {
	case config.BackendS3:
		return items.NewS3Repository(c, logger)
	case config.BackendPostgres:
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := items.RunMigrations(context.Background(), db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
		return items.NewPostgresRepository(db)
	case config.BackendMemory:
		return items.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", c.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.authService, app.itemService)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	// The server still comes up when the store is unreachable; item writes
	// fail individually and /api/health reports disconnected.
	if err := app.itemService.Ping(ctx); err != nil {
		app.logger.Warn(ctx, "Item store access check failed, items may not save properly", "error", err.Error())
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
