package outcomenotifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
	"github.com/target/matrix-leader/internal/observability/notify"
)

type capture struct {
	mu       sync.Mutex
	payloads []notify.OutcomePayload
}

func (c *capture) sink() notify.Sink {
	return notify.SinkFunc(func(_ context.Context, p notify.OutcomePayload) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.payloads = append(c.payloads, p)
		return nil
	})
}

func leaderResult(status matrix.AggregateStatus) matrix.Result {
	return matrix.Result{
		Role:      matrix.RoleLeader,
		Status:    status,
		BuildID:   "555",
		JobNumber: "42.1",
		Polls:     3,
		Snapshot: matrix.Snapshot{
			{Number: "42.2", IsFinished: true, IsSucceeded: true},
			{Number: "42.3", IsFinished: true},
		},
	}
}

func TestServiceNotifiesMixedOutcome(t *testing.T) {
	c := &capture{}
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "capture", Sink: c.sink()}}})

	svc.NotifyResult(context.Background(), leaderResult(matrix.Unknown), nil)

	require.Len(t, c.payloads, 1)
	p := c.payloads[0]
	assert.Equal(t, "unknown", p.Status)
	assert.Equal(t, notify.SeverityWarning, p.Severity)
	assert.Equal(t, []string{"42.3"}, p.Failed)
	assert.Equal(t, []string{"42.2"}, p.Succeeded)
	assert.Equal(t, "3", p.Metadata["polls"])
}

func TestServiceSkipsSuccessAndMinions(t *testing.T) {
	c := &capture{}
	svc := NewService(Options{Sinks: []SinkRegistration{{Sink: c.sink()}}})

	svc.NotifyResult(context.Background(), leaderResult(matrix.OthersSucceeded), nil)
	svc.NotifyResult(context.Background(), matrix.Result{Role: matrix.RoleMinion}, nil)

	assert.Empty(t, c.payloads)
}

func TestServiceNotifiesRunError(t *testing.T) {
	c := &capture{}
	svc := NewService(Options{Sinks: []SinkRegistration{{Sink: c.sink()}}})

	svc.NotifyResult(context.Background(), matrix.Result{Role: matrix.RoleLeader, BuildID: "9"}, apperrors.Fetch("status 503"))

	require.Len(t, c.payloads, 1)
	assert.Equal(t, notify.SeverityCritical, c.payloads[0].Severity)
	assert.Equal(t, "fetch", c.payloads[0].ErrorClass)
}

func TestBuildPayloadSeverity(t *testing.T) {
	assert.Equal(t, notify.SeverityError, BuildPayload(leaderResult(matrix.OthersFailed), nil).Severity)
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{Sinks: []SinkRegistration{{Name: "nil"}}})
	assert.False(t, svc.Enabled())

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())
	nilSvc.NotifyResult(context.Background(), leaderResult(matrix.Unknown), nil)
}

func TestServiceLogsErrors(t *testing.T) {
	// A failing sink must not panic or block the others.
	c := &capture{}
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{Name: "fail", Sink: notify.SinkFunc(func(context.Context, notify.OutcomePayload) error {
				return errors.New("boom")
			})},
			{Name: "capture", Sink: c.sink()},
		},
	})

	svc.NotifyResult(context.Background(), leaderResult(matrix.OthersFailed), nil)
	assert.Len(t, c.payloads, 1)
}
