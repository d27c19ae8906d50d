package config

import "time"

// LeaderConfig contains leader election and polling configuration.
type LeaderConfig struct {
	// MasterIndex is the sub-job index that leads the matrix.
	MasterIndex int `env:"LEADER_MASTER_INDEX" envDefault:"1"`

	// PollingIntervalSeconds is the constant pause between matrix snapshots.
	PollingIntervalSeconds int `env:"LEADER_POLLING_INTERVAL" envDefault:"5"`

	// MaxWait aborts the wait loop after the given duration. Zero waits until
	// the CI provider kills the job.
	MaxWait time.Duration `env:"LEADER_MAX_WAIT" envDefault:"0s"`

	// RequireAuth makes a failed credential exchange fatal.
	RequireAuth bool `env:"LEADER_REQUIRE_AUTH" envDefault:"false"`

	// ForceLeader is set from the --is_master flag, never from the environment.
	ForceLeader bool
}

// Sanitize applies guardrails to leader configuration values.
func (c *LeaderConfig) Sanitize() {
	if c.PollingIntervalSeconds < 1 {
		c.PollingIntervalSeconds = 5
	}
	if c.MaxWait < 0 {
		c.MaxWait = 0
	}
}

// PollInterval returns the polling interval as a duration.
func (c *LeaderConfig) PollInterval() time.Duration {
	return time.Duration(c.PollingIntervalSeconds) * time.Second
}
