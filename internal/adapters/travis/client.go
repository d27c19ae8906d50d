// Package travis implements the CI provider ports against the Travis CI API.
package travis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
	"github.com/target/matrix-leader/internal/ports"
)

// tokenType makes oauth2.Transport send "Authorization: token <t>", the scheme Travis expects.
const tokenType = "token"

// maxBodyBytes bounds how much of a response we are willing to read.
const maxBodyBytes = 8 << 20

// defaultAccept suits the legacy API. Point Accept at
// "application/vnd.travis-ci.2.1+json" to negotiate API v2.
const defaultAccept = "application/json"

// Config holds configuration for the Travis client.
type Config struct {
	Entry      string
	MatrixPath string
	Accept     string // Optional, defaults to application/json
	Timeout    time.Duration
	HTTPClient *http.Client // Optional, defaults to a client bounded by Timeout
	Logger     *slog.Logger
}

// Client talks to the Travis CI API.
type Client struct {
	entry      string
	matrixPath string
	accept     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ ports.MatrixFetcher       = (*Client)(nil)
	_ ports.CredentialExchanger = (*Client)(nil)
)

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	entry := strings.TrimRight(strings.TrimSpace(cfg.Entry), "/")
	if entry == "" {
		return nil, apperrors.Configuration("TRAVIS_ENTRY", "travis entry is required")
	}
	if u, err := url.Parse(entry); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Configuration("TRAVIS_ENTRY", fmt.Sprintf("invalid travis entry %q", entry))
	}

	path := strings.TrimSpace(cfg.MatrixPath)
	if path == "" {
		path = "matrix"
	}
	if _, err := jmespath.Compile(path); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeConfiguration, "compile matrix path %q", path)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	accept := strings.TrimSpace(cfg.Accept)
	if accept == "" {
		accept = defaultAccept
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		entry:      entry,
		matrixPath: path,
		accept:     accept,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With("component", "travis_client"),
	}, nil
}

// Exchange trades a GitHub token for a Travis access token.
func (c *Client) Exchange(ctx context.Context, githubToken string) (string, error) {
	if githubToken == "" {
		return "", apperrors.Auth("github token is empty")
	}

	body, err := json.Marshal(map[string]string{"github_token": githubToken})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode auth request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.entry+"/auth/github", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "create auth request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", c.accept)

	raw, err := c.do(c.httpClient, req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAuth, "travis token exchange")
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAuth, "decode travis token response")
	}
	if out.AccessToken == "" {
		return "", apperrors.Auth("travis token exchange returned no access_token")
	}
	return out.AccessToken, nil
}

// FetchSnapshot reads the build and returns every job except the leader's own.
func (c *Client) FetchSnapshot(ctx context.Context, in ports.FetchInput) (matrix.Snapshot, error) {
	if in.BuildID == "" {
		return nil, apperrors.Configuration("TRAVIS_BUILD_ID", "build id is required to fetch the matrix")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.entry + "/builds/" + url.PathEscape(in.BuildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create build request")
	}
	req.Header.Set("Accept", c.accept)

	raw, err := c.do(c.clientFor(ctx, in.AccessToken), req)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeFetch, "fetch build %s", in.BuildID)
	}

	jobs, err := parseMatrix(raw, c.matrixPath, in.LeaderJobNumber)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "snapshot raw jobs", "build_id", in.BuildID, "jobs", jobs)

	return withoutLeader(jobs), nil
}

// clientFor returns an http.Client that authorises requests with accessToken.
func (c *Client) clientFor(ctx context.Context, accessToken string) *http.Client {
	if accessToken == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   tokenType,
	}))
}

func (c *Client) do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("travis request failed: %w", err)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, errors.Join(fmt.Errorf("read travis response: %w", readErr), closeErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("travis api %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close response body: %w", closeErr)
	}
	return raw, nil
}

func withoutLeader(jobs matrix.Snapshot) matrix.Snapshot {
	out := make(matrix.Snapshot, 0, len(jobs))
	for _, j := range jobs {
		if !j.IsLeader {
			out = append(out, j)
		}
	}
	return out
}
