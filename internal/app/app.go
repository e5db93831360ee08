// Package app wires the configured store, event log and registry together.
// It is the only place that decides process-wide lifetimes.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/config"
	"github.com/axellelanca/urlregistry/internal/eventlog"
	"github.com/axellelanca/urlregistry/internal/logging"
	"github.com/axellelanca/urlregistry/internal/repository"
	"github.com/axellelanca/urlregistry/internal/services"
	"github.com/axellelanca/urlregistry/internal/shortcode"
)

// App holds the long-lived components shared by the CLI and the server.
type App struct {
	Config   *config.Config
	Logger   *zap.SugaredLogger
	Store    repository.Store
	Events   *eventlog.Log
	Registry *services.URLRegistry
}

// New builds an App from cfg. A nil logger is built from cfg.Log.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	if logger == nil {
		l, err := logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	store, err := repository.NewStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var sink eventlog.Sink = eventlog.NopSink{}
	if cfg.Storage.Type != repository.TypeMemory && cfg.EventLog.FilePath != "" {
		sink = eventlog.NewFileSink(afero.NewOsFs(), cfg.EventLog.FilePath)
	}
	events := eventlog.New(
		eventlog.WithCapacity(cfg.EventLog.Capacity),
		eventlog.WithPersistLimit(cfg.EventLog.PersistLimit),
		eventlog.WithSink(sink),
		eventlog.WithLogger(logger),
	)
	events.Restore()

	registry := services.NewURLRegistry(ctx, store,
		services.WithGenerator(shortcode.NewGenerator(cfg.Registry.CodeLength)),
		services.WithMaxAttempts(cfg.Registry.MaxAttempts),
		services.WithEventLog(events),
		services.WithLogger(logger),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Events:   events,
		Registry: registry,
	}, nil
}

// MonitorInterval returns the configured expiry refresh period.
func (a *App) MonitorInterval() time.Duration {
	if a.Config.Monitor.IntervalSeconds < 1 {
		return time.Minute
	}
	return time.Duration(a.Config.Monitor.IntervalSeconds) * time.Second
}

// ShortURL formats the full short URL for code.
func (a *App) ShortURL(code string) string {
	return a.Config.Server.BaseURL + "/" + code
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	err := a.Store.Close()
	_ = a.Logger.Sync()
	return err
}
