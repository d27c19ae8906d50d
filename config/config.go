package config

import (
	"log/slog"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - ci.go: CI provider identifiers and API access
//   - leader.go: leader election and polling
//   - export.go: result export (file, redis)
//   - observability.go: metrics and notifications
type AppConfig struct {
	// CI describes the build and job this process belongs to.
	CI CIConfig

	// Travis configures the Travis CI API client.
	Travis TravisConfig

	// Leader configuration
	Leader LeaderConfig

	// Result export configuration
	Export ExportConfig
	Redis  RedisConfig `envPrefix:"REDIS_"`

	// Logging configuration
	Log LogConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.CI.Sanitize()
	c.Travis.Sanitize()
	c.Leader.Sanitize()
	c.Export.Sanitize()
	c.Redis.Sanitize()
	c.Log.Sanitize()
	c.Observability.Sanitize()
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format is either json or text.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Sanitize normalises level and format names.
func (c *LogConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format != "text" {
		c.Format = "json"
	}
}

// SlogLevel maps Level onto a slog.Level, defaulting to info.
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
