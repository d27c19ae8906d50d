package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryInterval spaces delivery attempts.
const retryInterval = 200 * time.Millisecond

// Poster delivers JSON bodies with a small constant-interval retry.
type Poster struct {
	// Name prefixes errors, e.g. "slack".
	Name       string
	Client     *http.Client
	RetryLimit int
}

// NewPoster builds a Poster with an http.Client bounded by timeout unless one is supplied.
func NewPoster(name string, hc *http.Client, timeout time.Duration, retryLimit int) *Poster {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Poster{Name: name, Client: hc, RetryLimit: max(retryLimit, 0)}
}

// Post sends body to url, retrying up to RetryLimit times. Client errors
// other than 429 are not retried.
func (p *Poster) Post(ctx context.Context, url string, body []byte) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), uint64(p.RetryLimit)), //nolint:gosec // RetryLimit is clamped to >= 0
		ctx,
	)
	return backoff.Retry(func() error {
		return p.postOnce(ctx, url, body)
	}, b)
}

func (p *Poster) postOnce(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := p.errorResponse(resp)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	return p.drain(resp)
}

func (p *Poster) drain(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain %s response body: %w", p.Name, err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain %s response body: %w", p.Name, err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func (p *Poster) errorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(fmt.Errorf("read %s error response: %w", p.Name, readErr), closeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return fmt.Errorf("%s %s: %s", p.Name, resp.Status, strings.TrimSpace(string(respBody)))
}
