// Package mocks provides mock implementations of the leader's ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	fetcher := mocks.NewMockMatrixFetcher(ctrl)
//	fetcher.EXPECT().FetchSnapshot(gomock.Any(), gomock.Any()).Return(snapshot, nil)
package mocks

// Generate mocks for the port interfaces in internal/ports:
// MatrixFetcher (FetchSnapshot), CredentialExchanger (Exchange), ResultExporter (Export)
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/matrix-leader/internal/ports MatrixFetcher,CredentialExchanger,ResultExporter

// Generate mock for the statsd Sink used by metric emitters.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=statsd_sink_mock.go github.com/target/matrix-leader/internal/observability/statsd Sink
