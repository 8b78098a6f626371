package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/devcomfort/instructable-pcgrl/models"
)

// Config holds everything read from the environment at startup
type Config struct {
	Addr         string
	SinkBackend  string
	SinkFile     string
	DatabaseURL  string
	GridRows     int
	GridCols     int
	MaxHistory   int
	BootFragment string
}

// Defaults used when the environment leaves a value unset
const (
	DefaultAddr       = ":8080"
	DefaultSinkFile   = "editor_state.json"
	DefaultGridRows   = 16
	DefaultGridCols   = 16
	DefaultMaxHistory = 20
)

// Sink backend names accepted in SINK_BACKEND
const (
	BackendMemory   = "memory"
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

// Load reads the configuration from the environment. A local .env
// file is honored when present; real deployments set the variables
// directly.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:         getEnv("ADDR", DefaultAddr),
		SinkBackend:  getEnv("SINK_BACKEND", BackendJSON),
		SinkFile:     getEnv("SINK_FILE", DefaultSinkFile),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		BootFragment: os.Getenv("BOOT_FRAGMENT"),
	}

	var err error
	if cfg.GridRows, err = getEnvInt("GRID_ROWS", DefaultGridRows); err != nil {
		return nil, err
	}
	if cfg.GridCols, err = getEnvInt("GRID_COLS", DefaultGridCols); err != nil {
		return nil, err
	}
	if cfg.MaxHistory, err = getEnvInt("MAX_HISTORY", DefaultMaxHistory); err != nil {
		return nil, err
	}

	switch cfg.SinkBackend {
	case BackendMemory, BackendJSON, BackendPostgres:
	default:
		return nil, fmt.Errorf("SINK_BACKEND must be one of %s, %s or %s, got %q",
			BackendMemory, BackendJSON, BackendPostgres, cfg.SinkBackend)
	}
	if cfg.SinkBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("SINK_BACKEND=postgres requires DATABASE_URL")
	}
	if cfg.GridRows < 1 || cfg.GridCols < 1 {
		return nil, fmt.Errorf("grid shape must be positive, got %dx%d", cfg.GridRows, cfg.GridCols)
	}
	if cfg.MaxHistory < 1 {
		return nil, fmt.Errorf("MAX_HISTORY must be at least 1, got %d", cfg.MaxHistory)
	}

	return cfg, nil
}

// Shape returns the configured default grid shape
func (c *Config) Shape() models.GridShape {
	return models.GridShape{Rows: c.GridRows, Cols: c.GridCols}
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt returns the integer value of an environment variable or a
// default
func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return value, nil
}
