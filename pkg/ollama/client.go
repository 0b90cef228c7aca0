// Package ollama provides a shared HTTP client for the Ollama API, used by
// both the chat provider and the embedder.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finbot-ai/finbot/pkg/httpclient"
)

const DefaultBaseURL = "http://localhost:11434"

type Client struct {
	baseURL    string
	httpClient *httpclient.Client
}

// NewClient creates an Ollama client with the given timeout and retry budget.
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpclient.WithMaxRetries(maxRetries),
			httpclient.WithBaseDelay(time.Second),
		),
	}
}

// Post sends a JSON payload to an Ollama API endpoint.
// The caller owns the response body.
func (c *Client) Post(ctx context.Context, endpoint string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Ollama at %s: %w", c.baseURL, err)
	}

	return resp, nil
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}
