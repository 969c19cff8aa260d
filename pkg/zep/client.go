// Package zep provides a typed HTTP client for the external graph/thread
// store. The store owns persistence, indexing and entity extraction; this
// client only shapes requests, swallows "already exists" responses on the
// ensure-style calls, and surfaces every other failure to the caller.
package zep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/worldloom/worldloom/pkg/logger"
)

const (
	// DefaultBaseURL is the hosted API endpoint
	DefaultBaseURL = "https://api.getzep.com/api/v2"

	// DefaultTimeout is the per-request HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute bounds the client-side call rate
	DefaultRequestsPerMinute = 300

	// PageSize is the page size used by the bulk node/edge readers
	PageSize = 100
)

// Config holds the client configuration
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is the graph/thread store API client
type Client struct {
	http    *http.Client
	base    string
	apiKey  string
	log     *slog.Logger
	limiter *rate.Limiter
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log.With(logger.Scope("zep.client"))
	}
}

// NewClient creates a new graph/thread store client
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		log:     slog.Default(),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute/10+1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Target names the scope of a graph operation: a per-user graph or a shared
// named graph. At least one of the two must be set; the graph wins when both
// are present.
type Target struct {
	UserID  string
	GraphID string
}

// IsZero reports whether the target names neither a user nor a graph
func (t Target) IsZero() bool {
	return t.UserID == "" && t.GraphID == ""
}

func (t Target) validate() error {
	if t.IsZero() {
		return fmt.Errorf("either a user ID or a graph ID is required")
	}
	return nil
}

// CacheKey returns the stable identity of this target, used by the ontology
// registration cache.
func (t Target) CacheKey() string {
	if t.GraphID != "" {
		return "graph:" + t.GraphID
	}
	return "user:" + t.UserID
}

func (c *Client) prepareRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return nil
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := c.prepareRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, result)
}

// postJSON performs a POST request with JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, reqBody any, result any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.prepareRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(ctx context.Context, path string) error {
	req, err := c.prepareRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}
