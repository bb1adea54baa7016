// Package hub queries the readiness of a remote WebDriver endpoint
// through its /status resource.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"digital.vasic.webaccept/pkg/wait"
)

// ClientOption configures a StatusClient via functional options.
type ClientOption func(*StatusClient)

// StatusClient reads the WebDriver status of an endpoint.
type StatusClient struct {
	baseURL    string
	httpClient *http.Client
}

// Status is the value of a WebDriver status response.
type Status struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// NewStatusClient creates a client for the hub at endpoint, for
// example "http://chrome:4444/wd/hub".
func NewStatusClient(endpoint string, opts ...ClientOption) *StatusClient {
	c := &StatusClient{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *StatusClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *StatusClient) { c.httpClient = hc }
}

// BaseURL returns the endpoint the client queries.
func (c *StatusClient) BaseURL() string {
	return c.baseURL
}

// Status performs one status request.
func (c *StatusClient) Status(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/status", nil,
	)
	if err != nil {
		return Status{}, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, fmt.Errorf("read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf(
			"status returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)),
		)
	}

	var body struct {
		Value Status `json:"value"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Status{}, fmt.Errorf("parse status response: %w", err)
	}
	return body.Value, nil
}

// WaitReady polls Status until the hub reports ready or timeout
// elapses. The error names the last status or request failure.
func (c *StatusClient) WaitReady(
	ctx context.Context,
	timeout, interval time.Duration,
) (Status, error) {
	var last Status
	var lastErr error
	st, ok := wait.Poll(ctx, func() (Status, bool, error) {
		last, lastErr = c.Status(ctx)
		return last, lastErr == nil && last.Ready, nil
	}, timeout, interval)
	if ok {
		return st, nil
	}
	if err := ctx.Err(); err != nil {
		return last, err
	}
	if lastErr == nil {
		lastErr = errors.New(last.Message)
		if last.Message == "" {
			lastErr = errors.New("not ready")
		}
	}
	return last, fmt.Errorf("hub %s not ready after %s: %w", c.baseURL, timeout, lastErr)
}
