package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/cmd"
	"github.com/axellelanca/urlregistry/internal/api"
	"github.com/axellelanca/urlregistry/internal/location"
	"github.com/axellelanca/urlregistry/internal/monitor"
	"github.com/axellelanca/urlregistry/internal/workers"
)

const shutdownTimeout = 10 * time.Second

// RunServerCmd represents the 'run-server' command.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Start the JSON query API and the background processes.",
	Long: `Loads the registry, starts the asynchronous click workers and the expiry
monitor, then serves the query API until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}

func runServer(c *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := cmd.NewApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.Config
	logger := a.Logger

	dispatcher := workers.NewClickDispatcher(a.Registry, cfg.Analytics.WorkerCount, cfg.Analytics.BufferSize, a.Events, logger)
	defer dispatcher.Stop()

	urlMonitor := monitor.NewExpiryMonitor(a.Registry, a.MonitorInterval(), a.Events, logger)
	go urlMonitor.Start(ctx)
	// Runs before dispatcher.Stop and a.Close: no refresh pass may outlive the store.
	defer func() {
		stop()
		<-urlMonitor.Done()
	}()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, api.NewHandler(a.Registry, a.Events,
		api.WithClickQueue(dispatcher),
		api.WithLocator(location.Mock{}),
		api.WithBaseURL(cfg.Server.BaseURL),
		api.WithDefaultValidity(cfg.Registry.DefaultValidityMinutes),
		api.WithLogger(logger),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	a.Events.Info("Application started", map[string]any{"addr": srv.Addr, "records": a.Registry.Len()})

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
