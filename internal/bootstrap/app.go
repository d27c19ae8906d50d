package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/target/matrix-leader/config"
	"github.com/target/matrix-leader/internal/adapters/export"
	redisstore "github.com/target/matrix-leader/internal/adapters/redis"
	"github.com/target/matrix-leader/internal/adapters/travis"
	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
	"github.com/target/matrix-leader/internal/observability/statsd"
	"github.com/target/matrix-leader/internal/service"
	"github.com/target/matrix-leader/internal/service/outcomenotifier"
)

// notifyTimeout bounds outcome delivery after the run context is gone.
const notifyTimeout = 30 * time.Second

// AppOptions groups what NewApp needs to wire the leader.
type AppOptions struct {
	Config     config.AppConfig // Required: sanitised configuration
	Logger     *slog.Logger     // Optional: structured logger
	Stdout     io.Writer        // Optional: report destination, os.Stdout when nil
	HTTPClient *http.Client     // Optional: Travis API client
	Timer      backoff.Timer    // Optional: wait loop timer
}

// App is the wired leader process: run, export, notify.
type App struct {
	Leader   *service.LeaderService
	Notifier *outcomenotifier.Service
	// Exporter is built after a successful run, so a job that fails its
	// preconditions never connects to Redis.
	Exporter *export.Fanout

	cfg     config.AppConfig
	logger  *slog.Logger
	metrics *statsd.Client
	redis   redis.UniversalClient
	stdout  io.Writer
}

// NewApp builds the Travis client, leader service and notifier from
// configuration. Optional integrations that fail to initialise are logged and
// left out.
func NewApp(_ context.Context, opts AppOptions) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := travis.NewClient(travis.Config{
		Entry:      cfg.Travis.Entry,
		MatrixPath: cfg.Travis.MatrixPath,
		Accept:     cfg.Travis.Accept,
		Timeout:    cfg.Travis.Timeout,
		HTTPClient: opts.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	metricsClient := buildMetrics(logger, cfg.Observability.Metrics, cfg.CI.BuildID)

	leader, err := service.NewLeaderService(service.LeaderServiceOptions{
		Fetcher:   client,
		Exchanger: client,
		Config:    cfg.Leader,
		Logger:    logger,
		Metrics:   sinkOrNil(metricsClient),
		Timer:     opts.Timer,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create leader service")
	}

	app := &App{
		Leader:   leader,
		Notifier: buildOutcomeNotifier(logger, cfg.Observability.Notifications),
		cfg:      cfg,
		logger:   logger,
		metrics:  metricsClient,
		stdout:   opts.Stdout,
	}
	return app, nil
}

// sinkOrNil avoids handing a typed nil pointer to an interface field.
func sinkOrNil(c *statsd.Client) statsd.Sink {
	if c == nil {
		return nil
	}
	return c
}

func (a *App) buildExporters(ctx context.Context, stdout io.Writer) *export.Fanout {
	fanout := export.NewFanout(a.logger)

	if a.cfg.Export.File != "" {
		fanout.Add("file", export.NewFileExporter(a.cfg.Export.File))
	}
	if a.cfg.Export.Report {
		fanout.Add("report", export.NewReportExporter(stdout))
	}
	if a.cfg.Redis.IsEnabled() {
		client, err := ConnectRedis(ctx, a.cfg.Redis, a.logger)
		if err != nil {
			a.logger.WarnContext(ctx, "redis export disabled", "error", err)
		} else {
			a.redis = client
			store := redisstore.NewResultStore(client, a.cfg.Redis.Prefix, a.cfg.Redis.TTL)
			fanout.Add("redis", export.NewRedisExporter(store))
		}
	}
	return fanout
}

// Execute runs the leader election, exports a successful result and
// notifies sinks about anything other than a clean leader success.
func (a *App) Execute(ctx context.Context) (matrix.Result, error) {
	res, runErr := a.Leader.Run(ctx, service.RunInput{
		JobNumber:   a.cfg.CI.JobNumber,
		BuildID:     a.cfg.CI.BuildID,
		GitHubToken: a.cfg.CI.GitHubToken,
	})

	if runErr == nil {
		a.Exporter = a.buildExporters(ctx, a.stdout)
		a.logger.DebugContext(ctx, "exporting result", "role", res.Role, "exporters", a.Exporter.Len())
		if err := a.Exporter.Export(ctx, res); err != nil {
			runErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "export result")
		}
	}

	if a.Notifier.Enabled() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		a.Notifier.NotifyResult(nctx, res, runErr)
		cancel()
	}

	return res, runErr
}

// Close releases network resources held by the app.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.metrics.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd: %w", err))
	}
	return errors.Join(errs...)
}
