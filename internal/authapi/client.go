// Package authapi talks to the remote storefront authentication service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultEndpoint is the public Fake Store API login endpoint
const DefaultEndpoint = "https://fakestoreapi.com/auth/login"

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 64 << 10

// Credentials is the username/password pair sent to the login endpoint
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the decoded success body. An empty Token means the service
// did not authenticate the user.
type AuthResult struct {
	Token string `json:"token"`
}

// APIError is returned when the service answers with a non-2xx status
type APIError struct {
	StatusCode int
	// Message is the server-provided error text, empty if none was sent
	Message string
	// HasBody reports whether the response carried a meaningful body. JSON
	// null, false, 0 and "" do not count.
	HasBody bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth service returned %d", e.StatusCode)
}

// Client posts credentials to a fixed login endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	timeout    *time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the overall request timeout. A zero duration means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

// WithUserAgent sets the User-Agent header sent upstream
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for endpoint, falling back to DefaultEndpoint when empty
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: cleanhttp.DefaultPooledClient(),
		userAgent:  "storefront",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c
}

// Endpoint returns the login URL the client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Login sends one POST with the credentials as JSON.
//
// A 2xx response always yields an AuthResult, possibly with an empty token.
// A non-2xx response yields *APIError. Anything else (dial failures,
// cancelled contexts, truncated bodies) is returned wrapped.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, hasBody := decodeErrorBody(raw)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			HasBody:    hasBody,
		}
	}

	var result AuthResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A 2xx without a JSON token is still a response without a token
		return &AuthResult{}, nil
	}
	return &result, nil
}

// decodeErrorBody reads a non-2xx body. Only a JSON object's string "error"
// field counts as a message. A body that is empty or decodes to null, false,
// 0 or "" counts as no body at all. Text that is not JSON is still a body.
func decodeErrorBody(raw []byte) (message string, hasBody bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}

	var data any
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return "", true
	}

	switch v := data.(type) {
	case nil:
		return "", false
	case bool:
		return "", v
	case float64:
		return "", v != 0
	case string:
		return "", v != ""
	case map[string]any:
		msg, _ := v["error"].(string)
		return msg, true
	}
	return "", true
}
