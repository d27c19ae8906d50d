package fake

// Package fake contains simple hand-written test doubles for the leader ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/target/matrix-leader/internal/domain/matrix"
	"github.com/target/matrix-leader/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.MatrixFetcher = (*ScriptedFetcher)(nil)
	_ backoff.Timer       = (*Timer)(nil)
)

// Step is one scripted FetchSnapshot response.
type Step struct {
	Snapshot matrix.Snapshot
	Err      error
}

// ScriptedFetcher replays Steps in order and repeats the last one once the
// script is exhausted.
type ScriptedFetcher struct {
	Steps []Step

	// OnFetch runs before each response with the 1-based call number.
	OnFetch func(ctx context.Context, call int)

	mu     sync.Mutex
	inputs []ports.FetchInput
}

// Snapshots builds a fetcher that returns each snapshot in turn.
func Snapshots(snapshots ...matrix.Snapshot) *ScriptedFetcher {
	f := &ScriptedFetcher{}
	for _, s := range snapshots {
		f.Steps = append(f.Steps, Step{Snapshot: s})
	}
	return f
}

func (f *ScriptedFetcher) FetchSnapshot(ctx context.Context, in ports.FetchInput) (matrix.Snapshot, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	call := len(f.inputs)
	f.mu.Unlock()

	if f.OnFetch != nil {
		f.OnFetch(ctx, call)
	}
	if len(f.Steps) == 0 {
		return matrix.Snapshot{}, nil
	}
	idx := call - 1
	if idx >= len(f.Steps) {
		idx = len(f.Steps) - 1
	}
	step := f.Steps[idx]
	return step.Snapshot, step.Err
}

// Calls returns how many times FetchSnapshot was invoked.
func (f *ScriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// Inputs returns a copy of every FetchInput received.
func (f *ScriptedFetcher) Inputs() []ports.FetchInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.FetchInput(nil), f.inputs...)
}

// Timer fires immediately and records every requested sleep.
type Timer struct {
	mu     sync.Mutex
	starts []time.Duration
	ch     chan time.Time
}

// NewTimer returns a Timer ready for use with backoff.RetryNotifyWithTimer.
func NewTimer() *Timer {
	return &Timer{ch: make(chan time.Time, 1)}
}

func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	t.starts = append(t.starts, d)
	t.mu.Unlock()

	select {
	case t.ch <- time.Now():
	default:
	}
}

func (t *Timer) Stop() {}

func (t *Timer) C() <-chan time.Time {
	return t.ch
}

// Sleeps returns the durations passed to Start, in order.
func (t *Timer) Sleeps() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.starts...)
}
