package matrix

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNoJobNumber indicates the job number is unset, meaning the build has no matrix.
	ErrNoJobNumber = errors.New("job number is not set: build has no matrix")
	// ErrInvalidMasterIndex indicates the configured leader index is not positive.
	ErrInvalidMasterIndex = errors.New("master index must be positive")
)

// Role identifies whether the current process leads the matrix or only takes part in it.
type Role string

const (
	// RoleLeader waits for every sibling job and aggregates their results.
	RoleLeader Role = "leader"
	// RoleMinion exits immediately without waiting.
	RoleMinion Role = "minion"
)

// IsLeader reports whether jobNumber designates the leader sub-job for masterIndex.
//
// Job numbers follow the "<build>.<index>" convention. The match is a literal
// suffix comparison against "."+masterIndex, never a numeric parse, so "12.10"
// leads for index 10 but not for index 1, and "12.01" does not lead for index 1.
func IsLeader(masterIndex int, jobNumber string) (bool, error) {
	if jobNumber == "" {
		return false, ErrNoJobNumber
	}
	if masterIndex < 1 {
		return false, ErrInvalidMasterIndex
	}
	return strings.HasSuffix(jobNumber, "."+strconv.Itoa(masterIndex)), nil
}

// ResolveRole decides the role of the current job. A forced leader (the
// --is_master flag) wins over the index rule.
func ResolveRole(masterIndex int, jobNumber string, forceLeader bool) (Role, error) {
	leader, err := IsLeader(masterIndex, jobNumber)
	if err != nil {
		return "", err
	}
	if leader || forceLeader {
		return RoleLeader, nil
	}
	return RoleMinion, nil
}
