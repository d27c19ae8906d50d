// Package notify defines the outcome notification payload and the HTTP
// delivery shared by the Slack and PagerDuty sinks.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
)

// OutcomePayload captures what we emit when the minions did not all succeed
// or the leader itself could not finish waiting.
type OutcomePayload struct {
	BuildID    string
	JobNumber  string
	Status     string
	Failed     []string
	Succeeded  []string
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming outcome notifications.
type Sink interface {
	SendOutcome(ctx context.Context, payload OutcomePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload OutcomePayload) error

// SendOutcome implements the Sink interface.
func (f SinkFunc) SendOutcome(ctx context.Context, payload OutcomePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// FallbackString returns fallback when value is empty.
func FallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
