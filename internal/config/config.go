// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load
const (
	EnvDataDir          = "MOMENTUM_DATA_DIR"
	EnvStrategyFile     = "MOMENTUM_STRATEGY_FILE"
	EnvLogLevel         = "LOG_LEVEL"
	EnvPort             = "GO_PORT"
	EnvDevMode          = "DEV_MODE"
	EnvSchedule         = "ALLOCATION_SCHEDULE"
	EnvSchedulerEnabled = "SCHEDULER_ENABLED"
	EnvHistoryLookback  = "HISTORY_LOOKBACK"
	EnvJobTimeout       = "ALLOCATION_JOB_TIMEOUT"
)

// Defaults
const (
	DefaultDataDir         = "./data"
	DefaultLogLevel        = "info"
	DefaultPort            = 8010
	DefaultHistoryLookback = 120
	DefaultJobTimeout      = 5 * time.Minute

	// MinHistoryLookback is the shortest history that yields MACD(12, 26, 9)
	MinHistoryLookback = 34
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for all databases (always absolute)
	StrategyFile     string // Optional YAML strategy; empty selects the built-in strategy
	LogLevel         string
	Port             int
	DevMode          bool
	Schedule         string // Six-field cron override; empty follows the strategy interval
	SchedulerEnabled bool
	HistoryLookback  int // Bars per ticker loaded from history
	JobTimeout       time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv(EnvDataDir, DefaultDataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:          dataDir,
		StrategyFile:     getEnv(EnvStrategyFile, ""),
		LogLevel:         getEnv(EnvLogLevel, DefaultLogLevel),
		Port:             getEnvAsInt(EnvPort, DefaultPort),
		DevMode:          getEnvAsBool(EnvDevMode, false),
		Schedule:         getEnv(EnvSchedule, ""),
		SchedulerEnabled: getEnvAsBool(EnvSchedulerEnabled, true),
		HistoryLookback:  getEnvAsInt(EnvHistoryLookback, DefaultHistoryLookback),
		JobTimeout:       getEnvAsDuration(EnvJobTimeout, DefaultJobTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data directory is empty", ErrInvalidConfig)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.HistoryLookback < MinHistoryLookback {
		return fmt.Errorf("%w: %s must be at least %d, got %d",
			ErrInvalidConfig, EnvHistoryLookback, MinHistoryLookback, c.HistoryLookback)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, EnvJobTimeout)
	}
	return nil
}

// HistoryDBPath returns the path of the price history database
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// RunsDBPath returns the path of the allocation run log database
func (c *Config) RunsDBPath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
