// Package client is the single outbound HTTP entry point for the estatly API.
//
// Every resource package goes through Client.Do. The client attaches the
// session's bearer token when one is present, reports each request to an
// Observer, and returns failures unchanged as *Error values. It never modifies
// the session, including on 401 responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/estatly/estatly/internal/session"
)

// DefaultTimeout applies to every request; there is no per-call override
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries a per-request ULID for log correlation
const RequestIDHeader = "X-Request-ID"

// Client represents an HTTP client for the estatly API
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	observer   Observer
}

// Option configures a Client at construction
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its timeout is forced to
// DefaultTimeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		hc := *httpClient
		hc.Timeout = DefaultTimeout
		c.httpClient = &hc
	}
}

// WithSession sets the session the bearer token is read from
func WithSession(s *session.Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithObserver sets the diagnostics hook
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger routes diagnostics to a zerolog logger
func WithLogger(l zerolog.Logger) Option {
	return WithObserver(LogObserver{Logger: l})
}

// New creates a new API client for the given origin
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		observer: NopObserver{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.session == nil {
		c.session = session.New(nil)
	}

	return c
}

// BaseURL returns the configured origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session used for bearer authentication. Callers use it
// to store credentials after login and to clear them on logout.
func (c *Client) Session() *session.Session {
	return c.session
}

// Response is a completed 2xx response with its body fully read
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends a request to path (relative to the base URL). body, when non-nil,
// is encoded as JSON. Any failure, including a non-2xx status, is returned as
// *Error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Method: method, URL: endpoint, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &Error{Method: method, URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	c.prepare(req)
	c.observer.Request(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		e := &Error{Method: method, URL: endpoint, Err: fmt.Errorf("failed to send request: %w", err)}
		c.observer.Failure(req, e)
		return nil, e
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e := &Error{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
		c.observer.Failure(req, e)
		return nil, e
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := newStatusError(method, endpoint, resp.StatusCode, data)
		c.observer.Failure(req, e)
		return nil, e
	}

	r := &Response{
		Method:     method,
		URL:        endpoint,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	c.observer.Response(req, r)
	return r, nil
}

// prepare sets the fixed headers and the bearer token read at call time
func (c *Client) prepare(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, ulid.Make().String())

	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// PathEscape joins path segments after escaping each one
func PathEscape(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
