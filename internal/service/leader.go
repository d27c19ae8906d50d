package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/target/matrix-leader/config"
	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
	"github.com/target/matrix-leader/internal/observability/metrics"
	"github.com/target/matrix-leader/internal/observability/statsd"
	"github.com/target/matrix-leader/internal/ports"
)

// LeaderServiceOptions groups dependencies for LeaderService.
type LeaderServiceOptions struct {
	Fetcher   ports.MatrixFetcher       // Required: CI provider matrix reader
	Exchanger ports.CredentialExchanger // Optional: nil means anonymous access
	Config    config.LeaderConfig       // Required: leader configuration
	Logger    *slog.Logger              // Optional: structured logger
	Metrics   statsd.Sink               // Optional: metrics sink (StatsD-compatible)
	Timer     backoff.Timer             // Optional: sleep between polls, real timer when nil
}

// LeaderService decides whether this job leads the matrix and, when it does,
// waits for every sibling job to finish before reducing their results.
type LeaderService struct {
	fetcher   ports.MatrixFetcher
	exchanger ports.CredentialExchanger
	config    config.LeaderConfig
	logger    *slog.Logger
	metrics   statsd.Sink
	timer     backoff.Timer
}

// RunInput carries the CI environment of the current job.
type RunInput struct {
	JobNumber   string
	BuildID     string
	GitHubToken string
}

// NewLeaderService constructs a new LeaderService.
func NewLeaderService(opts LeaderServiceOptions) (*LeaderService, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("MatrixFetcher is required")
	}

	cfg := opts.Config
	cfg.Sanitize()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "leader_service")
	logger.Debug("LeaderService initialized",
		"master_index", cfg.MasterIndex,
		"polling_interval", cfg.PollInterval(),
		"max_wait", cfg.MaxWait,
		"force_leader", cfg.ForceLeader,
	)

	return &LeaderService{
		fetcher:   opts.Fetcher,
		exchanger: opts.Exchanger,
		config:    cfg,
		logger:    logger,
		metrics:   opts.Metrics,
		timer:     opts.Timer,
	}, nil
}

// Run resolves the role of the current job. A minion returns immediately; a
// leader blocks until all siblings finished and returns their aggregate status.
// The returned Result carries the role even when err is non-nil.
func (s *LeaderService) Run(ctx context.Context, in RunInput) (matrix.Result, error) {
	start := time.Now()
	res := matrix.Result{
		BuildID:   in.BuildID,
		JobNumber: strings.TrimSpace(in.JobNumber),
	}

	role, err := s.resolveRole(res.JobNumber)
	if err != nil {
		s.emitOutcome(res, err)
		return res, err
	}
	res.Role = role

	if role == matrix.RoleMinion {
		s.logger.InfoContext(ctx, "This is a minion", "job_number", res.JobNumber)
		s.emitOutcome(res, nil)
		return res, nil
	}
	s.logger.InfoContext(ctx, "This is a leader", "job_number", res.JobNumber, "build_id", in.BuildID)

	if strings.TrimSpace(in.BuildID) == "" {
		err = apperrors.Configuration(config.EnvBuildID, "build id is required for the leader")
		s.emitOutcome(res, err)
		return res, err
	}

	if s.config.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.MaxWait)
		defer cancel()
	}

	token, err := s.accessToken(ctx, in.GitHubToken)
	if err != nil {
		s.emitOutcome(res, err)
		return res, err
	}

	snapshot, polls, err := s.wait(ctx, ports.FetchInput{
		BuildID:         in.BuildID,
		LeaderJobNumber: res.JobNumber,
		AccessToken:     token,
	})
	res.Polls = polls
	res.Waited = time.Since(start)
	if err != nil {
		s.logger.ErrorContext(ctx, "leader stopped waiting", "polls", polls, "error", err)
		s.emitOutcome(res, err)
		return res, err
	}

	res.Snapshot = snapshot
	res.Status = s.ComputeAggregateStatus(snapshot)
	s.logger.InfoContext(ctx, "Final Results",
		"snapshot", snapshot.String(),
		"aggregate_status", res.Status.String(),
		"polls", polls,
		"waited", res.Waited,
	)
	s.emitOutcome(res, nil)
	return res, nil
}

// FetchSnapshot reads the current state of every sibling job.
func (s *LeaderService) FetchSnapshot(ctx context.Context, in ports.FetchInput) (matrix.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.fetcher.FetchSnapshot(ctx, in)
	elapsed := time.Since(start)
	if err != nil {
		if apperrors.GetCode(err) == "" {
			err = apperrors.Wrapf(err, apperrors.ErrCodeFetch, "fetch build %s", in.BuildID)
		}
		metrics.EmitPoll(s.metrics, metrics.PollMetric{Result: metrics.ResultError, Duration: elapsed, Err: err})
		return nil, err
	}

	result := metrics.ResultWaiting
	if snapshot.IsFinished() {
		result = metrics.ResultFinished
	}
	waiting := snapshot.Waiting()
	metrics.EmitPoll(s.metrics, metrics.PollMetric{Result: result, Waiting: len(waiting), Duration: elapsed})
	s.logger.DebugContext(ctx, "snapshot taken", "snapshot", snapshot.String(), "waiting", waiting)
	return snapshot, nil
}

// WaitUntilAllFinished polls the matrix at the configured interval until every
// sibling job has finished and returns that final snapshot. Fetch errors stop
// the loop; context cancellation yields a canceled or timeout error.
func (s *LeaderService) WaitUntilAllFinished(ctx context.Context, in ports.FetchInput) (matrix.Snapshot, error) {
	snapshot, _, err := s.wait(ctx, in)
	return snapshot, err
}

// ComputeAggregateStatus reduces a finished snapshot to one status.
func (s *LeaderService) ComputeAggregateStatus(snapshot matrix.Snapshot) matrix.AggregateStatus {
	return matrix.Aggregate(snapshot)
}

// pendingError signals the retry loop that some jobs are still running.
type pendingError struct {
	waiting []string
}

func (e *pendingError) Error() string {
	return fmt.Sprintf("%d jobs still running", len(e.waiting))
}

func (s *LeaderService) wait(ctx context.Context, in ports.FetchInput) (matrix.Snapshot, int, error) {
	var (
		final matrix.Snapshot
		polls int
	)

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		polls++
		snapshot, err := s.FetchSnapshot(ctx, in)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !snapshot.IsFinished() {
			return &pendingError{waiting: snapshot.Waiting()}
		}
		final = snapshot
		return nil
	}

	notify := func(err error, next time.Duration) {
		var pending *pendingError
		if errors.As(err, &pending) {
			s.logger.InfoContext(ctx, "leader waits for minions", "waiting", pending.waiting, "next_poll_in", next)
		}
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(s.config.PollInterval()), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, b, notify, s.timer); err != nil {
		if cerr := apperrors.FromContext(ctx.Err(), "wait for minions"); cerr != nil {
			return nil, polls, cerr
		}
		return nil, polls, err
	}
	return final, polls, nil
}

func (s *LeaderService) resolveRole(jobNumber string) (matrix.Role, error) {
	role, err := matrix.ResolveRole(s.config.MasterIndex, jobNumber, s.config.ForceLeader)
	switch {
	case err == nil:
		return role, nil
	case errors.Is(err, matrix.ErrNoJobNumber):
		return "", apperrors.Configuration(config.EnvJobNumber, "no job number: build has no matrix")
	case errors.Is(err, matrix.ErrInvalidMasterIndex):
		return "", apperrors.Configuration("LEADER_MASTER_INDEX", err.Error())
	default:
		return "", apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "resolve role")
	}
}

// accessToken exchanges the GitHub token once. Without a token, or when the
// exchange fails and auth is optional, the matrix is read anonymously.
func (s *LeaderService) accessToken(ctx context.Context, githubToken string) (string, error) {
	if githubToken == "" || s.exchanger == nil {
		if s.config.RequireAuth {
			return "", apperrors.Configuration("GITHUB_TOKEN", "github token is required when LEADER_REQUIRE_AUTH is set")
		}
		s.logger.InfoContext(ctx, "no github token, reading the matrix anonymously")
		return "", nil
	}

	token, err := s.exchanger.Exchange(ctx, githubToken)
	if err == nil {
		return token, nil
	}
	if cerr := apperrors.FromContext(ctx.Err(), "credential exchange"); cerr != nil {
		return "", cerr
	}
	if s.config.RequireAuth {
		if apperrors.GetCode(err) == "" {
			err = apperrors.Wrap(err, apperrors.ErrCodeAuth, "credential exchange")
		}
		return "", err
	}
	s.logger.WarnContext(ctx, "credential exchange failed, continuing without a token", "error", err)
	return "", nil
}

func (s *LeaderService) emitOutcome(res matrix.Result, err error) {
	metrics.EmitOutcome(s.metrics, metrics.OutcomeMetric{
		Role:   res.Role,
		Status: res.Status,
		Polls:  res.Polls,
		Waited: res.Waited,
		Err:    err,
	})
}
