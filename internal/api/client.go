// Package api is the HTTP client for the Orienta backend. It owns no
// state beyond the injected token source: every operation is a plain
// request/response exchange, JSON over HTTP with bearer authentication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/log"
)

// TokenSource supplies the current bearer token, "" when logged out.
// Implemented by *authstate.Context.
type TokenSource interface {
	Token() string
}

// noToken is the default source for unauthenticated clients
type noToken struct{}

func (noToken) Token() string { return "" }

// Client talks to the Orienta backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTokenSource injects the auth context whose token is attached as
// a bearer credential on every request.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

// WithRequestTimeout sets the per-request HTTP timeout
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client (tests)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a backend client for the given base URL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     noToken{},
		logger:     log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs one JSON request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError(err)
		}
		return nil, errors.NewUnreachableError(err)
	}

	return resp, nil
}

// errorBody captures the error shapes the backend emits
type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorBody) text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	default:
		return ""
	}
}

// parseResponse decodes the response into target, mapping failure
// statuses to coded errors. A 401 always becomes AUTH-002 so callers
// can propagate the forced logout.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.NewTokenRejectedError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)

		var eb errorBody
		if err := json.Unmarshal(data, &eb); err == nil && eb.text() != "" {
			return errors.NewRejectedError(eb.text())
		}
		return errors.NewRejectedError(fmt.Sprintf("status %d: %s", resp.StatusCode, string(data)))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.NewBadResponseError(err)
		}
	}

	return nil
}
