// Package config loads and validates reporter configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all reporter configuration.
type Config struct {
	// Store settings.
	MaxStoredActions int           // Retention cap; oldest actions are evicted past this.
	RetentionMaxAge  time.Duration // Actions older than this are evicted on record/complete. 0 disables.

	// Report settings.
	ReportWindow time.Duration // Default window when a report has no start time.

	// Persistence sink. Empty disables archival.
	SinkPath string

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		MaxStoredActions: envInt("CLARIO_MAX_STORED_ACTIONS", 10_000),
		RetentionMaxAge:  envDuration("CLARIO_RETENTION_MAX_AGE", 720*time.Hour),
		ReportWindow:     envDuration("CLARIO_REPORT_WINDOW", 24*time.Hour),
		SinkPath:         envStr("CLARIO_SINK_PATH", ""),
		OTELEndpoint:     envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:     envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:      envStr("OTEL_SERVICE_NAME", "clario-reporter"),
		LogLevel:         envStr("CLARIO_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c Config) Validate() error {
	if c.MaxStoredActions <= 0 {
		return fmt.Errorf("config: CLARIO_MAX_STORED_ACTIONS must be positive")
	}
	if c.ReportWindow <= 0 {
		return fmt.Errorf("config: CLARIO_REPORT_WINDOW must be positive")
	}
	if c.RetentionMaxAge < 0 {
		return fmt.Errorf("config: CLARIO_RETENTION_MAX_AGE must not be negative")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
