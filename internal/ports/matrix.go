package ports

// Package ports defines the boundaries between the leader service and the
// CI provider, credential exchange and result export adapters.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	"github.com/target/matrix-leader/internal/domain/matrix"
)

// FetchInput identifies the build to read and the caller's own job.
type FetchInput struct {
	BuildID         string
	LeaderJobNumber string
	// AccessToken authorises the request; empty means anonymous access.
	AccessToken string
}

// MatrixFetcher reads the current state of every sibling job in a build.
type MatrixFetcher interface {
	// FetchSnapshot returns one snapshot with the leader's own entry excluded.
	FetchSnapshot(ctx context.Context, in FetchInput) (matrix.Snapshot, error)
}

// CredentialExchanger trades a long-lived secret for a short-lived API token.
type CredentialExchanger interface {
	Exchange(ctx context.Context, secret string) (accessToken string, err error)
}

// ResultExporter makes a run result visible to the parent process or other consumers.
type ResultExporter interface {
	Export(ctx context.Context, res matrix.Result) error
}
