// Package config loads application configuration from environment
// variables, optionally overlaid by a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "github.com/zach-sndr/twitcanva/domain/config"
)

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment"`

	// Storage configuration
	WorkflowDir  string `yaml:"workflow_dir"`
	DatabasePath string `yaml:"database_path"`
	StoreBackend string `yaml:"store_backend"` // "file" or "sqlite"

	// Canvas tuning
	MaxHistoryDepth         int           `yaml:"max_history_depth"`
	MinZoom                 float64       `yaml:"min_zoom"`
	MaxZoom                 float64       `yaml:"max_zoom"`
	ConnectorClickThreshold time.Duration `yaml:"connector_click_threshold"`

	// Generation
	GenerationStatusTTL time.Duration `yaml:"generation_status_ttl"`
	StatusSweepInterval time.Duration `yaml:"status_sweep_interval"`
	GeneratorEndpoint   string        `yaml:"generator_endpoint"`

	// Logging and features
	LogLevel      string `yaml:"log_level"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	WatchFiles    bool   `yaml:"watch_files"`
}

// LoadConfig loads configuration from environment variables. If
// TWITCANVA_CONFIG names a YAML file, its values are applied first and
// environment variables override them.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("TWITCANVA_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.WorkflowDir = getEnv("WORKFLOW_DIR", cfg.WorkflowDir)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.MaxHistoryDepth = getEnvInt("MAX_HISTORY_DEPTH", cfg.MaxHistoryDepth)
	cfg.MinZoom = getEnvFloat("MIN_ZOOM", cfg.MinZoom)
	cfg.MaxZoom = getEnvFloat("MAX_ZOOM", cfg.MaxZoom)
	cfg.ConnectorClickThreshold = getEnvDuration("CONNECTOR_CLICK_THRESHOLD", cfg.ConnectorClickThreshold)
	cfg.GenerationStatusTTL = getEnvDuration("GENERATION_STATUS_TTL", cfg.GenerationStatusTTL)
	cfg.StatusSweepInterval = getEnvDuration("STATUS_SWEEP_INTERVAL", cfg.StatusSweepInterval)
	cfg.GeneratorEndpoint = getEnv("GENERATOR_ENDPOINT", cfg.GeneratorEndpoint)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.WatchFiles = getEnvBool("WATCH_FILES", cfg.WatchFiles)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func defaults() *Config {
	return &Config{
		Environment:             "development",
		WorkflowDir:             defaultWorkflowDir(),
		DatabasePath:            "",
		StoreBackend:            "file",
		MaxHistoryDepth:         50,
		MinZoom:                 0.1,
		MaxZoom:                 2.0,
		ConnectorClickThreshold: 200 * time.Millisecond,
		GenerationStatusTTL:     5 * time.Minute,
		StatusSweepInterval:     30 * time.Second,
		LogLevel:                "info",
		EnableMetrics:           false,
		WatchFiles:              false,
	}
}

func defaultWorkflowDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.twitcanva/workflows"
	}
	return "./workflows"
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.StoreBackend != "file" && c.StoreBackend != "sqlite" {
		return fmt.Errorf("STORE_BACKEND must be \"file\" or \"sqlite\", got %q", c.StoreBackend)
	}
	if c.StoreBackend == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required when STORE_BACKEND is sqlite")
	}
	if c.MinZoom <= 0 || c.MaxZoom <= c.MinZoom {
		return fmt.Errorf("invalid zoom bounds [%v, %v]", c.MinZoom, c.MaxZoom)
	}
	if c.MaxHistoryDepth < 1 {
		return fmt.Errorf("MAX_HISTORY_DEPTH must be at least 1")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DomainConfig derives the domain-level configuration from the
// application config.
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := domainconfig.LoadDomainConfig(c.Environment)
	dc.MaxHistoryDepth = c.MaxHistoryDepth
	dc.MinZoom = c.MinZoom
	dc.MaxZoom = c.MaxZoom
	dc.ConnectorClickThreshold = c.ConnectorClickThreshold
	dc.GenerationStatusTTL = c.GenerationStatusTTL
	dc.StatusSweepInterval = c.StatusSweepInterval
	return dc
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
