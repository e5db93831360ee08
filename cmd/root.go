package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/urlregistry/internal/app"
	"github.com/axellelanca/urlregistry/internal/config"
)

// Cfg holds the configuration loaded before any subcommand runs.
var Cfg *config.Config

var configPath string

// RootCmd is the base command; subcommands register themselves from their own init().
var RootCmd = &cobra.Command{
	Use:   "urlregistry",
	Short: "A registry of expiring short URL aliases",
	Long: `urlregistry creates short aliases for URLs with a bounded validity window,
resolves them while they are active and keeps per-alias click statistics.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./configs/config.yaml)")
}

func initConfig() {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	Cfg = cfg
}

// NewApp builds the application from Cfg. Callers must Close it.
func NewApp(ctx context.Context) (*app.App, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return app.New(ctx, Cfg, nil)
}
