package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/matrix-leader/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL     string
	Channel        string
	Username       string
	Timeout        time.Duration
	RetryLimit     int
	Client         *http.Client
	BuildURLPrefix string
}

// Client delivers outcome notifications to a Slack webhook.
type Client struct {
	webhookURL     string
	channel        string
	username       string
	buildURLPrefix string
	poster         *notify.Poster
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	return &Client{
		webhookURL:     webhookURL,
		channel:        strings.TrimSpace(cfg.Channel),
		username:       notify.FallbackString(strings.TrimSpace(cfg.Username), "matrix-leader"),
		buildURLPrefix: strings.TrimSpace(cfg.BuildURLPrefix),
		poster:         notify.NewPoster("slack webhook", cfg.Client, cfg.Timeout, cfg.RetryLimit),
	}, nil
}

// SendOutcome posts a formatted message to Slack.
func (c *Client) SendOutcome(ctx context.Context, payload notify.OutcomePayload) error {
	body, err := json.Marshal(c.formatMessage(payload))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return c.poster.Post(ctx, c.webhookURL, body)
}

func (c *Client) formatMessage(payload notify.OutcomePayload) map[string]any {
	timestamp := payload.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	text := strings.Builder{}
	writeHeader(&text, payload)
	appendDetails(&text, payload, c.formatBuildValue(payload.BuildID))
	appendMetadata(&text, payload.Metadata)
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func writeHeader(text *strings.Builder, payload notify.OutcomePayload) {
	text.WriteString("*Build matrix outcome*")
	if payload.Status != "" {
		text.WriteString(" `")
		text.WriteString(payload.Status)
		text.WriteByte('`')
	}
	if payload.JobNumber != "" {
		text.WriteString(" (leader ")
		text.WriteString(escapeText(payload.JobNumber))
		text.WriteByte(')')
	}
	text.WriteByte('\n')
}

func appendDetails(text *strings.Builder, payload notify.OutcomePayload, buildValue string) {
	fields := []struct {
		label string
		value string
	}{
		{"Severity", notify.FallbackString(payload.Severity, notify.SeverityCritical)},
		{"Build", buildValue},
		{"Failed jobs", escapeText(strings.Join(payload.Failed, ", "))},
		{"Succeeded jobs", escapeText(strings.Join(payload.Succeeded, ", "))},
		{"Error class", payload.ErrorClass},
		{"Error", escapeText(payload.Error)},
	}

	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		text.WriteString("• ")
		text.WriteString(field.label)
		text.WriteString(": ")
		text.WriteString(field.value)
		text.WriteByte('\n')
	}
}

func appendMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	text.WriteString("• Metadata:\n")
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		text.WriteString("    • ")
		text.WriteString(k)
		text.WriteString(": ")
		text.WriteString(escapeText(metadata[k]))
		text.WriteByte('\n')
	}
}

// formatBuildValue renders the build id, linked when a URL prefix is configured.
func (c *Client) formatBuildValue(buildID string) string {
	raw := strings.TrimSpace(buildID)
	if raw == "" {
		return ""
	}
	id := escapeText(raw)
	if link := c.buildLink(raw); link != "" {
		return fmt.Sprintf("<%s|%s>", link, id)
	}
	return id
}

func (c *Client) buildLink(buildID string) string {
	if c.buildURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.buildURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), buildID)
	if err != nil {
		return ""
	}
	return link
}

func escapeText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}
