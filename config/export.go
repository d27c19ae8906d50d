package config

import (
	"strings"
	"time"
)

// DefaultExportFile is the file the parent shell sources after the run.
const DefaultExportFile = ".to_export_back"

// ExportConfig controls where the run result is written.
type ExportConfig struct {
	// File receives "export KEY=VALUE" lines. An empty value (set through
	// --export-file) disables the file export.
	File string `env:"LEADER_EXPORT_FILE" envDefault:".to_export_back"`

	// Report prints the textual report to stdout.
	Report bool `env:"LEADER_REPORT" envDefault:"true"`
}

// Sanitize trims the export path.
func (c *ExportConfig) Sanitize() {
	c.File = strings.TrimSpace(c.File)
}

// RedisConfig contains Redis configuration for publishing results.
type RedisConfig struct {
	// Addr enables the redis export when set.
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"   envDefault:""`
	DB       int           `env:"DB"         envDefault:"0"`
	TTL      time.Duration `env:"RESULT_TTL" envDefault:"24h"`
	Prefix   string        `env:"KEY_PREFIX" envDefault:"matrix-leader:build:"`
}

// Sanitize applies guardrails to Redis configuration values.
func (c *RedisConfig) Sanitize() {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.DB < 0 {
		c.DB = 0
	}
	if strings.TrimSpace(c.Prefix) == "" {
		c.Prefix = "matrix-leader:build:"
	}
}

// IsEnabled reports whether results should be published to Redis.
func (c *RedisConfig) IsEnabled() bool {
	return c.Addr != ""
}
