// Package client is a typed HTTP client for the registration API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtroode/confreg-server/internal/api/http/handler"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the server rejected the request as invalid (4xx).
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsRejection reports whether the server answered but refused the request:
// a 4xx, or a 2xx whose envelope carries success:false.
func (e *APIError) IsRejection() bool {
	return e.StatusCode < 500
}

// ErrTransport marks failures where no API response was received.
var ErrTransport = errors.New("transport failure")

// Client calls the registration API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	adminToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// WithAdminToken sends token as a bearer token on admin requests.
func WithAdminToken(token string) Option {
	return func(cl *Client) { cl.adminToken = token }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health returns the health check message.
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/", nil, false, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// Register submits a registration and returns the server message.
func (c *Client) Register(ctx context.Context, req handler.RegisterRequest) (string, error) {
	var env handler.Envelope
	if err := c.envelope(ctx, http.MethodPost, "/register", req, false, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// Stats fetches dashboard statistics.
func (c *Client) Stats(ctx context.Context) (handler.StatsResponse, error) {
	var stats handler.StatsResponse
	env := handler.Envelope{Data: &stats}
	if err := c.envelope(ctx, http.MethodGet, "/admin/stats", nil, true, &env); err != nil {
		return handler.StatsResponse{}, err
	}
	return stats, nil
}

// List fetches registrations. Empty arguments use the server defaults.
func (c *Client) List(ctx context.Context, registrationType, sort string) ([]handler.RegistrationResponse, error) {
	q := url.Values{}
	if registrationType != "" {
		q.Set("type", registrationType)
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	path := "/admin/registrations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var regs []handler.RegistrationResponse
	env := handler.Envelope{Data: &regs}
	if err := c.envelope(ctx, http.MethodGet, path, nil, true, &env); err != nil {
		return nil, err
	}
	return regs, nil
}

// envelope calls the API and requires success:true in the decoded envelope.
// A 2xx response with success:false is returned as an *APIError.
func (c *Client) envelope(ctx context.Context, method, path string, in any, admin bool, env *handler.Envelope) error {
	status, err := c.do(ctx, method, path, in, admin, env)
	if err != nil {
		return err
	}
	if !env.Success {
		return &APIError{StatusCode: status, Message: env.Message}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, admin bool, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin && c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env handler.Envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %w", ErrTransport, err)
	}
	return resp.StatusCode, nil
}
