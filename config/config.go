package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradeJournal/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // "json" or "console"

	// HTTP API
	HTTPAddr        string
	APIToken        string // Bearer token; empty disables auth
	GinMode         string
	ShutdownTimeout time.Duration

	// Background recalculation
	RecalcCron       string // Cron spec with a seconds field
	RunRecalcOnStart bool

	// Analytics
	InitialBalance float64 // Starting balance for the performance equity curve

	// Tracing
	TracingEnabled bool
}

// fileConfig is the optional YAML base layer. Environment variables override it.
type fileConfig struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	HTTP struct {
		Addr                   string `yaml:"addr"`
		APIToken               string `yaml:"api_token"`
		GinMode                string `yaml:"gin_mode"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"http"`
	Recalc struct {
		Cron       string `yaml:"cron"`
		RunOnStart *bool  `yaml:"run_on_start"`
	} `yaml:"recalc"`
	Analytics struct {
		InitialBalance float64 `yaml:"initial_balance"`
	} `yaml:"analytics"`
	Tracing struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_PATH),
// the .env file and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	base, err := loadFile(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Database
	cfg.DBPath = getEnv("DB_PATH", orDefault(base.Database.Path, "./data/trades.db"))
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", orDefault(base.Log.Level, "INFO")))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", orDefault(base.Log.Format, "json")))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be 'json' or 'console', got '%s'", cfg.LogFormat))
	}

	// HTTP API
	cfg.HTTPAddr = getEnv("HTTP_ADDR", orDefault(base.HTTP.Addr, ":8080"))
	cfg.APIToken = getEnv("API_TOKEN", base.HTTP.APIToken)
	cfg.GinMode = getEnv("GIN_MODE", orDefault(base.HTTP.GinMode, "release"))

	shutdownDefault := base.HTTP.ShutdownTimeoutSeconds
	if shutdownDefault == 0 {
		shutdownDefault = 10
	}
	shutdownSeconds, err := getEnvAsIntRequired("SHUTDOWN_TIMEOUT_SECONDS", shutdownDefault)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SHUTDOWN_TIMEOUT_SECONDS: %v", err))
	} else if shutdownSeconds <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	cfg.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	// Background recalculation
	cfg.RecalcCron = getEnv("RECALC_CRON", orDefault(base.Recalc.Cron, "0 */5 * * * *"))
	runOnStart := true
	if base.Recalc.RunOnStart != nil {
		runOnStart = *base.Recalc.RunOnStart
	}
	cfg.RunRecalcOnStart = getEnvAsBool("RUN_RECALC_ON_START", runOnStart)

	// Analytics
	balanceDefault := base.Analytics.InitialBalance
	if balanceDefault == 0 {
		balanceDefault = 10000.0
	}
	cfg.InitialBalance, err = getEnvAsFloatRequired("INITIAL_BALANCE", balanceDefault)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_BALANCE: %v", err))
	} else if cfg.InitialBalance <= 0 {
		errs = append(errs, "INITIAL_BALANCE must be positive")
	}

	// Tracing
	tracingDefault := false
	if base.Tracing.Enabled != nil {
		tracingDefault = *base.Tracing.Enabled
	}
	cfg.TracingEnabled = getEnvAsBool("TRACING_ENABLED", tracingDefault)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file '%s': %w", path, err)
	}
	return fc, nil
}

// --- Env Var Helpers ---

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
