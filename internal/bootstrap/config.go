package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/target/matrix-leader/config"
	apperrors "github.com/target/matrix-leader/internal/errors"
)

// InitLogger initializes the structured logger on w (stderr when nil) and
// tags every record with a fresh run_id.
func InitLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from a .env file, if present, and the environment.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "load .env file")
		}
	}
	return ParseConfig(env.Options{})
}

// ParseConfig parses and sanitises AppConfig using opts.
func ParseConfig(opts env.Options) (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, apperrors.Wrap(fmt.Errorf("parse config: %w", err), apperrors.ErrCodeConfiguration, "invalid configuration")
	}

	cfg.Sanitize()
	return cfg, nil
}
