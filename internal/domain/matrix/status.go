package matrix

import (
	"fmt"
	"strings"
)

// AggregateStatus is the leader's classification of every minion outcome.
type AggregateStatus string

const (
	// OthersSucceeded means every minion succeeded.
	OthersSucceeded AggregateStatus = "others_succeeded"
	// OthersFailed means every minion failed.
	OthersFailed AggregateStatus = "others_failed"
	// Unknown means outcomes were mixed.
	Unknown AggregateStatus = "unknown"
)

// String implements fmt.Stringer.
func (s AggregateStatus) String() string {
	return string(s)
}

// Succeeded reports whether s is OthersSucceeded.
func (s AggregateStatus) Succeeded() bool {
	return s == OthersSucceeded
}

// JobStatus is one point-in-time read of a matrix job.
type JobStatus struct {
	Number      string
	IsFinished  bool
	IsSucceeded bool
	IsLeader    bool
}

// String renders the status the way it appears in logs.
func (j JobStatus) String() string {
	return fmt.Sprintf("JobStatus(F=%t,S=%t,N=%s,L=%t)", j.IsFinished, j.IsSucceeded, j.Number, j.IsLeader)
}

// Snapshot holds the statuses returned by a single fetch, leader excluded.
type Snapshot []JobStatus

// IsFinished reports whether every job has finished. An empty snapshot is finished.
func (s Snapshot) IsFinished() bool {
	for _, j := range s {
		if !j.IsFinished {
			return false
		}
	}
	return true
}

// Waiting returns the numbers of jobs that have not finished yet, in snapshot order.
func (s Snapshot) Waiting() []string {
	var out []string
	for _, j := range s {
		if !j.IsFinished {
			out = append(out, j.Number)
		}
	}
	return out
}

// String renders "Snapshot(2=true,3=false)" with per-job success flags.
func (s Snapshot) String() string {
	parts := make([]string, len(s))
	for i, j := range s {
		parts[i] = fmt.Sprintf("%s=%t", j.Number, j.IsSucceeded)
	}
	return "Snapshot(" + strings.Join(parts, ",") + ")"
}

// Aggregate reduces a finished snapshot to a single status: OthersSucceeded
// when every job succeeded, OthersFailed when every job failed, Unknown
// otherwise. An empty snapshot (the leader is the only job) counts as succeeded.
//
// Callers must only pass snapshots for which IsFinished is true.
func Aggregate(s Snapshot) AggregateStatus {
	succeeded, failed := 0, 0
	for _, j := range s {
		if j.IsSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		return OthersSucceeded
	case succeeded == 0:
		return OthersFailed
	default:
		return Unknown
	}
}
