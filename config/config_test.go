package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func parseWith(t *testing.T, vars map[string]string) AppConfig {
	t.Helper()
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseWith(t, map[string]string{})

	if cfg.CI.JobNumber != "" {
		t.Errorf("expected empty job number, got %q", cfg.CI.JobNumber)
	}
	if cfg.Travis.Entry != DefaultTravisEntry {
		t.Errorf("expected travis entry %q, got %q", DefaultTravisEntry, cfg.Travis.Entry)
	}
	if cfg.Travis.MatrixPath != "matrix" {
		t.Errorf("expected matrix path 'matrix', got %q", cfg.Travis.MatrixPath)
	}
	if cfg.Travis.Accept != DefaultTravisAccept {
		t.Errorf("expected accept %q, got %q", DefaultTravisAccept, cfg.Travis.Accept)
	}
	if cfg.Leader.MasterIndex != 1 {
		t.Errorf("expected master index 1, got %d", cfg.Leader.MasterIndex)
	}
	if got := cfg.Leader.PollInterval(); got != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", got)
	}
	if cfg.Leader.MaxWait != 0 {
		t.Errorf("expected no max wait, got %v", cfg.Leader.MaxWait)
	}
	if cfg.Export.File != DefaultExportFile {
		t.Errorf("expected export file %q, got %q", DefaultExportFile, cfg.Export.File)
	}
	if cfg.Redis.IsEnabled() {
		t.Error("expected redis export to be disabled without an address")
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("expected metrics to be disabled by default")
	}
}

func TestAppConfig_ParseCIEnv(t *testing.T) {
	cfg := parseWith(t, map[string]string{
		"TRAVIS_JOB_NUMBER":       " 123.1 ",
		"TRAVIS_BUILD_ID":         "987654",
		"GITHUB_TOKEN":            "gh-secret",
		"TRAVIS_ENTRY":            "https://api.travis-ci.com/",
		"TRAVIS_MATRIX_PATH":      "jobs",
		"LEADER_POLLING_INTERVAL": "12",
		"LEADER_MASTER_INDEX":     "2",
		"LEADER_MAX_WAIT":         "45m",
		"LEADER_REQUIRE_AUTH":     "true",
		"REDIS_ADDR":              "localhost:6379",
		"REDIS_RESULT_TTL":        "1h",
	})

	if cfg.CI.JobNumber != "123.1" {
		t.Errorf("expected trimmed job number, got %q", cfg.CI.JobNumber)
	}
	if cfg.CI.BuildID != "987654" {
		t.Errorf("expected build id 987654, got %q", cfg.CI.BuildID)
	}
	if cfg.CI.GitHubToken != "gh-secret" {
		t.Errorf("expected github token, got %q", cfg.CI.GitHubToken)
	}
	if cfg.Travis.Entry != "https://api.travis-ci.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Travis.Entry)
	}
	if cfg.Travis.MatrixPath != "jobs" {
		t.Errorf("expected matrix path 'jobs', got %q", cfg.Travis.MatrixPath)
	}
	if got := cfg.Leader.PollInterval(); got != 12*time.Second {
		t.Errorf("expected 12s poll interval, got %v", got)
	}
	if cfg.Leader.MasterIndex != 2 {
		t.Errorf("expected master index 2, got %d", cfg.Leader.MasterIndex)
	}
	if cfg.Leader.MaxWait != 45*time.Minute {
		t.Errorf("expected max wait 45m, got %v", cfg.Leader.MaxWait)
	}
	if !cfg.Leader.RequireAuth {
		t.Error("expected RequireAuth to be true")
	}
	if !cfg.Redis.IsEnabled() || cfg.Redis.TTL != time.Hour {
		t.Errorf("unexpected redis config: %#v", cfg.Redis)
	}
}

func TestLeaderConfig_Sanitize(t *testing.T) {
	cfg := LeaderConfig{PollingIntervalSeconds: 0, MaxWait: -time.Second}
	cfg.Sanitize()

	if cfg.PollingIntervalSeconds != 5 {
		t.Errorf("expected polling interval to fall back to 5, got %d", cfg.PollingIntervalSeconds)
	}
	if cfg.MaxWait != 0 {
		t.Errorf("expected negative max wait to clamp to 0, got %v", cfg.MaxWait)
	}
}

func TestTravisConfig_Sanitize(t *testing.T) {
	cfg := TravisConfig{Entry: "  ", MatrixPath: " ", Accept: " ", Timeout: 0}
	cfg.Sanitize()

	if cfg.Entry != DefaultTravisEntry {
		t.Errorf("expected default entry, got %q", cfg.Entry)
	}
	if cfg.MatrixPath != "matrix" {
		t.Errorf("expected default matrix path, got %q", cfg.MatrixPath)
	}
	if cfg.Accept != DefaultTravisAccept {
		t.Errorf("expected default accept, got %q", cfg.Accept)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		cfg := LogConfig{Level: input, Format: "TEXT"}
		cfg.Sanitize()
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", input, got, want)
		}
		if cfg.Format != "text" {
			t.Errorf("expected format to be normalised to text, got %q", cfg.Format)
		}
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}
	cfg.Sanitize()

	if cfg.IsEnabled() {
		t.Error("expected metrics to be disabled without an address")
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	t.Run("disabled globally", func(t *testing.T) {
		cfg := ObservabilityNotificationsConfig{
			Enabled: false,
			Slack:   SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/x"},
		}
		cfg.Sanitize()
		if cfg.Slack.Enabled {
			t.Error("expected slack to be disabled when notifications are off")
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := ObservabilityNotificationsConfig{
			Enabled:    true,
			RetryLimit: -1,
			Slack:      SlackNotificationConfig{Enabled: true},
			PagerDuty:  PagerDutyNotificationConfig{Enabled: true, RoutingKey: "  "},
		}
		cfg.Sanitize()
		if cfg.Slack.Enabled || cfg.PagerDuty.Enabled {
			t.Errorf("expected sinks without credentials to be disabled: %#v", cfg)
		}
		if cfg.RetryLimit != 0 {
			t.Errorf("expected retry limit clamped to 0, got %d", cfg.RetryLimit)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
		if cfg.Slack.Username != defaultObservabilityName {
			t.Errorf("expected default slack username, got %q", cfg.Slack.Username)
		}
	})
}
