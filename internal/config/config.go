package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML keys to Go struct fields.
type Config struct {
	// Server configuration for the JSON query API
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port (default: 8080)
		BaseURL string `mapstructure:"base_url"` // Prefix used to display full short URLs
	} `mapstructure:"server"`

	// Storage selects the persistence backend: file, sqlite, redis or memory
	Storage struct {
		Type     string `mapstructure:"type"`
		FilePath string `mapstructure:"file_path"` // JSON snapshot path for the file backend
	} `mapstructure:"storage"`

	// Database configuration for the sqlite backend
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Redis configuration for the redis backend
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		Key      string `mapstructure:"key"` // Key holding the JSON snapshot
	} `mapstructure:"redis"`

	// Registry tuning
	Registry struct {
		CodeLength             int `mapstructure:"code_length"`              // Length of generated codes
		MaxAttempts            int `mapstructure:"max_attempts"`             // Retry budget for generated codes
		DefaultValidityMinutes int `mapstructure:"default_validity_minutes"` // Used by the CLI and API when none is given
	} `mapstructure:"registry"`

	// EventLog configuration for the operational event buffer
	EventLog struct {
		Capacity     int    `mapstructure:"capacity"`      // Entries kept in memory
		PersistLimit int    `mapstructure:"persist_limit"` // Newest entries written to disk
		FilePath     string `mapstructure:"file_path"`
	} `mapstructure:"eventlog"`

	// Monitor configuration for the periodic expiry refresh
	Monitor struct {
		IntervalSeconds int `mapstructure:"interval_seconds"`
	} `mapstructure:"monitor"`

	// Analytics configuration for asynchronous click recording
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Queue size per click worker
		WorkerCount int `mapstructure:"worker_count"` // Number of click worker goroutines
	} `mapstructure:"analytics"`

	// Log configuration for the zap logger
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

// setDefaults registers a default for every key so env overrides work without a file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.file_path", "data/short_urls.json")
	v.SetDefault("database.name", "url_registry.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "urlregistry:records")
	v.SetDefault("registry.code_length", 6)
	v.SetDefault("registry.max_attempts", 20)
	v.SetDefault("registry.default_validity_minutes", 30)
	v.SetDefault("eventlog.capacity", 1000)
	v.SetDefault("eventlog.persist_limit", 100)
	v.SetDefault("eventlog.file_path", "data/event_log.json")
	v.SetDefault("monitor.interval_seconds", 60)
	v.SetDefault("analytics.buffer_size", 1000)
	v.SetDefault("analytics.worker_count", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load loads the application configuration using Viper.
// An empty path searches ./configs/config.yaml. A missing file is not an error;
// defaults and environment variables (SERVER_PORT, STORAGE_TYPE, ...) apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
