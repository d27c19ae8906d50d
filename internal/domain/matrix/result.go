package matrix

import (
	"sort"
	"time"
)

// Exported variable names understood by build scripts.
const (
	EnvBuildLeader          = "BUILD_LEADER"
	EnvBuildMinion          = "BUILD_MINION"
	EnvBuildAggregateStatus = "BUILD_AGGREGATE_STATUS"
)

// Result is the outcome of one leader-election run.
type Result struct {
	Role      Role
	Status    AggregateStatus // empty for minions
	Snapshot  Snapshot        // final finished snapshot, nil for minions
	BuildID   string
	JobNumber string
	Polls     int
	Waited    time.Duration
}

// Vars returns the variables a parent process should pick up.
func (r Result) Vars() map[string]string {
	if r.Role != RoleLeader {
		return map[string]string{EnvBuildMinion: "YES"}
	}
	return map[string]string{
		EnvBuildLeader:          "YES",
		EnvBuildAggregateStatus: string(r.Status),
	}
}

// SortedKeys returns the keys of vars in lexical order.
func SortedKeys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
