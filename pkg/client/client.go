// Package client provides a Go client for the glyphgarden HTTP API.
//
// It covers every endpoint the server registers:
//   - Inspection (Report, Nodes, Connections, Patterns, Reflections,
//     Trajectory, Structure).
//   - Control (Grow, Start, Pause, Reset).
//
// Errors returned by the server surface as *APIError.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanonone/glyphgarden/pkg/growth"
	"github.com/sanonone/glyphgarden/pkg/semantic"
	"github.com/sanonone/glyphgarden/pkg/types"
)

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// GrowResult mirrors the body of POST /v1/grow.
type GrowResult struct {
	Ticks           int  `json:"ticks"`
	Generation      int  `json:"generation"`
	NodeCount       int  `json:"node_count"`
	ConnectionCount int  `json:"connection_count"`
	ActiveNodes     int  `json:"active_nodes"`
	Running         bool `json:"running"`
}

// Client talks to one glyphgarden server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. "http://localhost:8090".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// jsonRequest executes a request and decodes a JSON body into out.
func (c *Client) jsonRequest(method, endpoint string, out any) error {
	req, err := http.NewRequest(method, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(body, &errResp) == nil && errResp["error"] != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// --- Inspection ---

func (c *Client) Report() (growth.SystemReport, error) {
	var r growth.SystemReport
	err := c.jsonRequest(http.MethodGet, "/v1/report", &r)
	return r, err
}

func (c *Client) Nodes() ([]types.Node, error) {
	var nodes []types.Node
	err := c.jsonRequest(http.MethodGet, "/v1/nodes", &nodes)
	return nodes, err
}

func (c *Client) Connections() ([]types.Connection, error) {
	var conns []types.Connection
	err := c.jsonRequest(http.MethodGet, "/v1/connections", &conns)
	return conns, err
}

func (c *Client) Patterns() ([]semantic.Pattern, error) {
	var patterns []semantic.Pattern
	err := c.jsonRequest(http.MethodGet, "/v1/patterns", &patterns)
	return patterns, err
}

func (c *Client) Reflections() ([]growth.Reflection, error) {
	var reflections []growth.Reflection
	err := c.jsonRequest(http.MethodGet, "/v1/reflections", &reflections)
	return reflections, err
}

func (c *Client) Trajectory() ([]growth.TrajectoryEntry, error) {
	var trajectory []growth.TrajectoryEntry
	err := c.jsonRequest(http.MethodGet, "/v1/trajectory", &trajectory)
	return trajectory, err
}

func (c *Client) Structure() (semantic.Structure, error) {
	var s semantic.Structure
	err := c.jsonRequest(http.MethodGet, "/v1/structure", &s)
	return s, err
}

// --- Control ---

// Grow steps the garden by ticks generations.
func (c *Client) Grow(ticks int) (GrowResult, error) {
	var res GrowResult
	q := url.Values{"ticks": {strconv.Itoa(ticks)}}
	err := c.jsonRequest(http.MethodPost, "/v1/grow?"+q.Encode(), &res)
	return res, err
}

func (c *Client) Start() error {
	return c.jsonRequest(http.MethodPost, "/v1/start", nil)
}

func (c *Client) Pause() error {
	return c.jsonRequest(http.MethodPost, "/v1/pause", nil)
}

// Reset replants the garden and returns the fresh report.
func (c *Client) Reset() (growth.SystemReport, error) {
	var r growth.SystemReport
	err := c.jsonRequest(http.MethodPost, "/v1/reset", &r)
	return r, err
}
