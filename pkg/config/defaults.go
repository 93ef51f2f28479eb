package config

import (
	"os"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultOutput         = OutputText
	DefaultLogLevel       = "warn"
	DefaultLogEncoding    = "console"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvLogSources  = "ISELOG_LOG_SOURCES"
	EnvLogLevel    = "ISELOG_LOG_LEVEL"
	EnvPostgresDSN = "ISELOG_POSTGRES_DSN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogSources: []string{},
		Output:     DefaultOutput,
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	// Sources from the environment only fill an empty list
	if len(c.LogSources) == 0 {
		if v := os.Getenv(EnvLogSources); v != "" {
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.LogSources = append(c.LogSources, s)
				}
			}
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}

	if dsn := os.Getenv(EnvPostgresDSN); dsn != "" && c.Export.PostgresDSN == "" {
		c.Export.PostgresDSN = dsn
	}
}
