// Package api is the typed client for the agent backend's REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/version"
)

// Endpoint paths, relative to the base URL.
const (
	PathAgents    = "/api/ai/agents"
	PathDashboard = "/api/ai/agent-metrics/dashboard"
	PathExecute   = "/api/ai/agents/execute"
)

// ConfigPath returns the PATCH path for an agent's configuration.
func ConfigPath(agentID string) string {
	return PathAgents + "/" + url.PathEscape(agentID) + "/config"
}

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 * 1024 * 1024

// StatusError is returned when an endpoint answers with a non-2xx status and
// a body that is not the expected JSON envelope.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, body)
}

// EndpointError is returned when an endpoint answers with {"ok": false}.
type EndpointError struct {
	Op      string
	Message string
}

func (e *EndpointError) Error() string {
	if e.Message == "" {
		return e.Op + ": endpoint reported failure"
	}
	return e.Op + ": " + e.Message
}

// Client talks to the agent backend. It keeps no state between calls.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets an overall request timeout. Zero leaves the client's
// default (no timeout) in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log.Sub("api") }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address the client is bound to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListAgents fetches the agent registry.
func (c *Client) ListAgents(ctx context.Context) (domain.AgentList, error) {
	var list domain.AgentList
	if _, err := c.doJSON(ctx, http.MethodGet, PathAgents, nil, &list); err != nil {
		return list, fmt.Errorf("listing agents: %w", err)
	}
	if !list.OK {
		return list, &EndpointError{Op: "listing agents", Message: list.Error}
	}
	if list.Count == 0 {
		list.Count = len(list.Agents)
	}
	return list, nil
}

// DashboardMetrics fetches the execution rollup over the trailing window.
func (c *Client) DashboardMetrics(ctx context.Context, hours int) (domain.DashboardMetrics, error) {
	path := PathDashboard + "?hours=" + strconv.Itoa(hours)
	var resp domain.DashboardResponse
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return domain.DashboardMetrics{}, fmt.Errorf("fetching metrics: %w", err)
	}
	if !resp.OK {
		return domain.DashboardMetrics{}, &EndpointError{Op: "fetching metrics", Message: resp.Error}
	}
	if resp.Metrics.WindowHours == 0 {
		resp.Metrics.WindowHours = hours
	}
	return resp.Metrics, nil
}

// SaveConfig writes an agent's system prompt and rules. A decoded response
// with OK=false is returned without an error so callers can show the
// backend's message; transport problems are returned as errors.
func (c *Client) SaveConfig(ctx context.Context, agentID string, cfg domain.AgentConfig) (domain.ConfigResponse, error) {
	if cfg.Rules == nil {
		cfg.Rules = []string{}
	}
	var resp domain.ConfigResponse
	if _, err := c.doJSON(ctx, http.MethodPatch, ConfigPath(agentID), cfg, &resp); err != nil {
		return resp, fmt.Errorf("saving config for %s: %w", agentID, err)
	}
	return resp, nil
}

// Execute submits one task to one agent. The decoded envelope and the raw
// body are returned as-is; interpreting ok/result.success is left to the caller.
func (c *Client) Execute(ctx context.Context, agentID string, task domain.Task) (domain.ExecuteResponse, []byte, error) {
	req := domain.ExecuteRequest{AgentName: agentID, Task: task}
	var resp domain.ExecuteResponse
	raw, err := c.doJSON(ctx, http.MethodPost, PathExecute, req, &resp)
	if err != nil {
		return resp, raw, fmt.Errorf("executing %s on %s: %w", task.Type, agentID, err)
	}
	return resp, raw, nil
}

// doJSON sends a request and decodes the JSON body into out. A non-2xx status
// is only an error when the body does not decode; agent endpoints answer
// failures with {"ok": false} envelopes that callers need to see.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return raw, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return raw, fmt.Errorf("failed to parse response: %w", err)
	}
	return raw, nil
}

// IsEndpointError reports whether err came from an {"ok": false} envelope.
func IsEndpointError(err error) bool {
	var ee *EndpointError
	return errors.As(err, &ee)
}
