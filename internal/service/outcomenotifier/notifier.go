// Package outcomenotifier fans out non-success matrix outcomes to notification sinks.
package outcomenotifier

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/target/matrix-leader/internal/domain/matrix"
	obserrors "github.com/target/matrix-leader/internal/observability/errors"
	"github.com/target/matrix-leader/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the outcome notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
}

// Service dispatches outcome events to all registered sinks.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService constructs an outcome notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "outcome_notifier")

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{
			Name: name,
			Sink: entry.Sink,
		})
	}

	return &Service{
		logger: logger,
		sinks:  sinks,
	}
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

// NotifyResult notifies sinks when a leader run ended with anything other than
// every minion succeeding. Minion results and successes are skipped.
func (s *Service) NotifyResult(ctx context.Context, res matrix.Result, runErr error) {
	if !s.Enabled() {
		return
	}
	if runErr == nil && (res.Role != matrix.RoleLeader || res.Status.Succeeded()) {
		return
	}
	s.dispatch(ctx, BuildPayload(res, runErr))
}

// BuildPayload converts a run result into a notification payload.
func BuildPayload(res matrix.Result, runErr error) notify.OutcomePayload {
	payload := notify.OutcomePayload{
		BuildID:    res.BuildID,
		JobNumber:  res.JobNumber,
		Status:     string(res.Status),
		OccurredAt: time.Now(),
		Metadata: map[string]string{
			"polls":  strconv.Itoa(res.Polls),
			"waited": res.Waited.Round(time.Second).String(),
		},
	}
	for _, job := range res.Snapshot {
		if job.IsSucceeded {
			payload.Succeeded = append(payload.Succeeded, job.Number)
		} else {
			payload.Failed = append(payload.Failed, job.Number)
		}
	}

	switch {
	case runErr != nil:
		payload.Severity = notify.SeverityCritical
		payload.Error = runErr.Error()
		payload.ErrorClass = obserrors.Classify(runErr)
	case res.Status == matrix.OthersFailed:
		payload.Severity = notify.SeverityError
	default:
		payload.Severity = notify.SeverityWarning
	}
	return payload
}

func (s *Service) dispatch(ctx context.Context, payload notify.OutcomePayload) {
	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendOutcome(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "outcome notification delivery error",
					"sink", entry.Name,
					"build_id", payload.BuildID,
					"status", payload.Status,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}
