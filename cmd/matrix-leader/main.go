package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/matrix-leader/internal/bootstrap"
	apperrors "github.com/target/matrix-leader/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:])) //nolint:forbidigo // exit status is the contract with the build script
}

func run(args []string) int {
	flags, err := parseFlags(args, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	if flags.help {
		return apperrors.ExitOK
	}

	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.Log, os.Stderr)
	if cfgErr != nil {
		logger.Error("load config", "error", cfgErr)
		return apperrors.ExitCode(cfgErr)
	}
	flags.apply(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, logger, bootstrap.AppOptions{Config: cfg, Logger: logger})
}

func execute(ctx context.Context, logger *slog.Logger, opts bootstrap.AppOptions) int {
	app, err := bootstrap.NewApp(ctx, opts)
	if err != nil {
		logger.ErrorContext(ctx, "initialise matrix leader", "error", err)
		return apperrors.ExitCode(err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.WarnContext(ctx, "shutdown", "error", cerr)
		}
	}()

	res, err := app.Execute(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "matrix leader failed",
			"role", res.Role,
			"error_code", apperrors.GetCode(err),
			"field", apperrors.GetField(err),
			"error", err,
		)
		return apperrors.ExitCode(err)
	}

	logger.InfoContext(ctx, "matrix leader finished", "role", res.Role, "aggregate_status", res.Status)
	return apperrors.ExitOK
}
