// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port      string
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "text" or "json"

	// Invocation journal
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Subgraph gateway
	GraphAPIKey     string
	GraphGatewayURL string
	GraphConfigPath string

	// Blockchain analytics API
	GoldRushAPIKey string
	GoldRushAPIURL string

	// Shared upstream settings
	UpstreamTimeout time.Duration

	// Browser origins allowed to call the API. Empty disables CORS.
	CORSAllowedOrigins string

	// Tracing
	OTLPEndpoint string
}

const (
	DefaultGraphGatewayURL = "https://gateway.thegraph.com/api"
	DefaultGraphConfigPath = "config/graph-config.json"
	DefaultGoldRushAPIURL  = "https://api.covalenthq.com"
	DefaultPort            = "8080"
	DefaultEnv             = "development"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultUpstreamTimeout = 30 * time.Second
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", DefaultPort),
		Env:             getEnv("ENV", DefaultEnv),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:       getEnv("LOG_FORMAT", DefaultLogFormat),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		GraphAPIKey:     os.Getenv("THEGRAPH_API_KEY"), // Required, no default
		GraphGatewayURL: getEnv("GRAPH_GATEWAY_URL", DefaultGraphGatewayURL),
		GraphConfigPath: getEnv("GRAPH_CONFIG_PATH", DefaultGraphConfigPath),
		GoldRushAPIKey:  os.Getenv("GOLDRUSH_API_KEY"),
		GoldRushAPIURL:  getEnv("GOLDRUSH_API_URL", DefaultGoldRushAPIURL),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.GraphAPIKey == "" {
		return fmt.Errorf("THEGRAPH_API_KEY is required")
	}
	if err := validBaseURL("GRAPH_GATEWAY_URL", c.GraphGatewayURL); err != nil {
		return err
	}
	if err := validBaseURL("GOLDRUSH_API_URL", c.GoldRushAPIURL); err != nil {
		return err
	}
	if c.GraphConfigPath == "" {
		return fmt.Errorf("GRAPH_CONFIG_PATH is required")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func validBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL", name)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt64(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
