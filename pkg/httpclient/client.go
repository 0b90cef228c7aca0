// Package httpclient provides an HTTP client with bounded retries and
// exponential backoff for the external service calls (LLM and embeddings).
package httpclient

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Client wraps http.Client with retry behavior for transient failures.
// Retryable statuses (429, 5xx) are retried up to maxRetries times with
// exponential backoff and a small jitter; everything else returns immediately.
type Client struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

func WithMaxRetries(max int) Option {
	return func(c *Client) {
		c.maxRetries = max
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = delay
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client:     &http.Client{Timeout: 60 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Do executes the request, retrying transient failures.
// On success the caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var lastStatus int
	var retryAfter time.Duration

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("failed to recreate request body for retry: %w", err)
				}
				req.Body = body
			}

			// A server-provided Retry-After replaces the computed backoff.
			delay := c.backoffDelay(attempt)
			if retryAfter > 0 {
				delay = retryAfter
				retryAfter = 0
			}
			slog.Debug("Retrying HTTP request",
				"url", req.URL.String(),
				"attempt", attempt,
				"delay", delay)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network-level failure. Retry unless the context is gone.
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if retryableStatus(resp.StatusCode) {
				retryAfter = parseRetryAfter(resp.Header)
				resp.Body.Close()
				lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
				lastStatus = resp.StatusCode
				continue
			}
			return resp, nil
		}

		return resp, nil
	}

	return nil, &RetryableError{
		StatusCode: lastStatus,
		Message:    fmt.Sprintf("max retries (%d) exceeded", c.maxRetries),
		Err:        lastErr,
	}
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	exponential := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseDelay
	jitter := time.Duration(float64(exponential) * 0.1)
	return exponential + jitter
}

func parseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
