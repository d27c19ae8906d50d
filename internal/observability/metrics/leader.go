// Package metrics standardises the metrics emitted by the leader wait loop.
package metrics

import (
	"time"

	"github.com/target/matrix-leader/internal/domain/matrix"
	obserrors "github.com/target/matrix-leader/internal/observability/errors"
	"github.com/target/matrix-leader/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultFinished = "finished"
	ResultWaiting  = "waiting"
	ResultError    = "error"
)

// PollMetric describes one snapshot fetch.
type PollMetric struct {
	Result   string
	Waiting  int
	Duration time.Duration
	Err      error
}

// EmitPoll emits a counter and fetch latency for a single poll.
func EmitPoll(sink statsd.Sink, in PollMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}

	sink.Count("leader.poll", 1, tags)
	if in.Waiting > 0 {
		sink.Count("leader.waiting_jobs", int64(in.Waiting), nil)
	}
	if in.Duration > 0 {
		sink.Timing("leader.fetch", in.Duration, CloneTags(tags))
	}
}

// OutcomeMetric describes the end of a run.
type OutcomeMetric struct {
	Role   matrix.Role
	Status matrix.AggregateStatus
	Polls  int
	Waited time.Duration
	Err    error
}

// EmitOutcome emits the run outcome and total wait time.
func EmitOutcome(sink statsd.Sink, in OutcomeMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"role": string(in.Role)}
	switch {
	case in.Err != nil:
		tags["status"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	case in.Status != "":
		tags["status"] = string(in.Status)
	}

	sink.Count("leader.outcome", 1, tags)
	if in.Polls > 0 {
		sink.Count("leader.polls", int64(in.Polls), CloneTags(tags))
	}
	if in.Waited > 0 {
		sink.Timing("leader.wait", in.Waited, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
