// Package fetch performs HTTP requests against upstream sources with
// bounded retries and backoff. It is the sole home of transient
// failure policy; adapters depend on it instead of reimplementing
// backoff.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelscout/modelscout/pkg/errors"
)

// ErrNoResult is returned for HTTP 404 responses. Callers must treat
// it as "source has no data for this query", not as a failure.
var ErrNoResult = errors.ErrNotFound

// Defaults for the retry policy.
const (
	DefaultRetries     = 3
	DefaultBaseBackoff = 500 * time.Millisecond
	DefaultNetBackoff  = 400 * time.Millisecond
	DefaultTimeout     = 30 * time.Second
)

// Client performs HTTP requests with retry and backoff.
type Client struct {
	http        *http.Client
	retries     int
	baseBackoff time.Duration // doubled per attempt on 429/503
	netBackoff  time.Duration // multiplied linearly on transport errors
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetries overrides the total attempt count.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithBackoff overrides the backoff base durations. Tests pass zero
// to avoid sleeping.
func WithBackoff(base, net time.Duration) Option {
	return func(c *Client) {
		c.baseBackoff = base
		c.netBackoff = net
	}
}

// New creates a fetch client.
func New(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: DefaultTimeout},
		retries:     DefaultRetries,
		baseBackoff: DefaultBaseBackoff,
		netBackoff:  DefaultNetBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption mutates an outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithBearer sets an Authorization bearer header. An empty token is a
// no-op so absent API keys degrade to unauthenticated requests.
func WithBearer(token string) RequestOption {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

// Get performs a GET with the client's retry policy and returns the
// response body.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, opts...)
}

// Post performs a POST with the client's retry policy.
func (c *Client) Post(ctx context.Context, url string, body []byte, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body, opts...)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, opts ...RequestOption) ([]byte, error) {
	var lastStatus int

	for attempt := 0; attempt < c.retries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", url, err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for _, opt := range opts {
			opt(req)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == c.retries-1 {
				return nil, fmt.Errorf("fetch %s: %w", url, err)
			}
			if err := sleep(ctx, c.netBackoff*time.Duration(attempt+1)); err != nil {
				return nil, err
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNoResult

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			lastStatus = resp.StatusCode
			if attempt == c.retries-1 {
				break
			}
			if err := sleep(ctx, c.baseBackoff*time.Duration(1<<attempt)); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return nil, fmt.Errorf("read response from %s: %w", url, readErr)
			}
			return data, nil

		default:
			return nil, &errors.APIError{
				StatusCode: resp.StatusCode,
				Message:    string(data),
				URL:        url,
			}
		}
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w",
		url, c.retries, errors.NewAPIError("", lastStatus, "retries exhausted"))
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
