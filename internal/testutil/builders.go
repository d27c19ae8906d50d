package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/target/matrix-leader/internal/domain/matrix"
)

// SnapshotBuilder provides a fluent interface for building matrix snapshots for testing.
type SnapshotBuilder struct {
	build string
	jobs  matrix.Snapshot
}

// NewSnapshot starts an empty snapshot for the given build number.
func NewSnapshot(build string) *SnapshotBuilder {
	return &SnapshotBuilder{build: build, jobs: matrix.Snapshot{}}
}

func (b *SnapshotBuilder) add(index int, finished, succeeded bool) *SnapshotBuilder {
	b.jobs = append(b.jobs, matrix.JobStatus{
		Number:      fmt.Sprintf("%s.%d", b.build, index),
		IsFinished:  finished,
		IsSucceeded: finished && succeeded,
	})
	return b
}

// Running adds a job that has not finished.
func (b *SnapshotBuilder) Running(index int) *SnapshotBuilder { return b.add(index, false, false) }

// Passed adds a finished, successful job.
func (b *SnapshotBuilder) Passed(index int) *SnapshotBuilder { return b.add(index, true, true) }

// Failed adds a finished, failed job.
func (b *SnapshotBuilder) Failed(index int) *SnapshotBuilder { return b.add(index, true, false) }

// Build returns the snapshot.
func (b *SnapshotBuilder) Build() matrix.Snapshot {
	return append(matrix.Snapshot(nil), b.jobs...)
}

// TravisBuildJSON renders a Travis build payload holding a running leader
// entry followed by every job of s.
func TravisBuildJSON(leaderJobNumber string, s matrix.Snapshot) string {
	type job struct {
		Number     string  `json:"number"`
		FinishedAt *string `json:"finished_at"`
		Result     *int    `json:"result"`
	}

	jobs := []job{{Number: leaderJobNumber}}
	for _, j := range s {
		entry := job{Number: j.Number}
		if j.IsFinished {
			finishedAt := TestTime().Format("2006-01-02T15:04:05Z")
			result := 1
			if j.IsSucceeded {
				result = 0
			}
			entry.FinishedAt = &finishedAt
			entry.Result = &result
		}
		jobs = append(jobs, entry)
	}

	raw, err := json.Marshal(map[string]any{"matrix": jobs})
	if err != nil {
		panic(err)
	}
	return string(raw)
}
