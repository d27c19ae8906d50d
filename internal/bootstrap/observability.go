package bootstrap

import (
	"log/slog"

	"github.com/target/matrix-leader/config"
	"github.com/target/matrix-leader/internal/observability/notify/pagerduty"
	"github.com/target/matrix-leader/internal/observability/notify/slack"
	"github.com/target/matrix-leader/internal/observability/statsd"
	"github.com/target/matrix-leader/internal/service/outcomenotifier"
)

// buildMetrics returns a statsd client, or nil when metrics are disabled or
// the sink cannot be reached.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig, buildID string) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	var tags map[string]string
	if buildID != "" {
		tags = map[string]string{"build_id": buildID}
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled:    true,
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		Logger:     logger,
		GlobalTags: tags,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

func buildOutcomeNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *outcomenotifier.Service {
	if !cfg.Enabled {
		return outcomenotifier.NewService(outcomenotifier.Options{Logger: logger})
	}

	sinks := make([]outcomenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:     cfg.Slack.WebhookURL,
			Channel:        cfg.Slack.Channel,
			Username:       cfg.Slack.Username,
			Timeout:        cfg.Timeout,
			RetryLimit:     cfg.RetryLimit,
			BuildURLPrefix: cfg.Slack.BuildURLPrefix,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, outcomenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Endpoint:   cfg.PagerDuty.Endpoint,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, outcomenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return outcomenotifier.NewService(outcomenotifier.Options{
		Logger: logger,
		Sinks:  sinks,
	})
}
