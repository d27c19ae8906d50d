package config

import (
	"strings"
	"time"
)

// Environment variable names read by CIConfig, used in error messages.
const (
	EnvJobNumber = "TRAVIS_JOB_NUMBER"
	EnvBuildID   = "TRAVIS_BUILD_ID"
)

// CIConfig identifies the current build and job as exported by the CI provider.
type CIConfig struct {
	// JobNumber is "<build>.<index>"; unset when the build has no matrix.
	JobNumber string `env:"TRAVIS_JOB_NUMBER"`

	// BuildID identifies the build whose matrix is polled.
	BuildID string `env:"TRAVIS_BUILD_ID"`

	// GitHubToken is exchanged for a Travis API token. Optional.
	GitHubToken string `env:"GITHUB_TOKEN"`
}

// Sanitize trims identifiers copied from the environment.
func (c *CIConfig) Sanitize() {
	c.JobNumber = strings.TrimSpace(c.JobNumber)
	c.BuildID = strings.TrimSpace(c.BuildID)
	c.GitHubToken = strings.TrimSpace(c.GitHubToken)
}

// DefaultTravisEntry is the public Travis CI API root.
const DefaultTravisEntry = "https://api.travis-ci.org"

// DefaultTravisAccept is the media type sent to the legacy API. API v2
// endpoints select their version with application/vnd.travis-ci.2.1+json.
const DefaultTravisAccept = "application/json"

// TravisConfig configures access to the Travis CI API.
type TravisConfig struct {
	// Entry is the API root, overridable with --travis_entry.
	Entry string `env:"TRAVIS_ENTRY" envDefault:"https://api.travis-ci.org"`

	// MatrixPath is a JMESPath expression locating the jobs array in a build payload.
	MatrixPath string `env:"TRAVIS_MATRIX_PATH" envDefault:"matrix"`

	// Accept is the media type requested from the API.
	Accept string `env:"TRAVIS_ACCEPT" envDefault:"application/json"`

	// Timeout bounds every API request.
	Timeout time.Duration `env:"TRAVIS_HTTP_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to Travis API settings.
func (c *TravisConfig) Sanitize() {
	c.Entry = strings.TrimRight(strings.TrimSpace(c.Entry), "/")
	if c.Entry == "" {
		c.Entry = DefaultTravisEntry
	}
	c.MatrixPath = strings.TrimSpace(c.MatrixPath)
	if c.MatrixPath == "" {
		c.MatrixPath = "matrix"
	}
	c.Accept = strings.TrimSpace(c.Accept)
	if c.Accept == "" {
		c.Accept = DefaultTravisAccept
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
