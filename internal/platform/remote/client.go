// Package remote is the thin HTTP client every resource query goes
// through. It resolves paths against a fixed base host, attaches the JSON
// headers, applies the request timeout and turns failures into
// apperr.TransportError. It never retries and never caches.
package remote

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

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

const DefaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 1024

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger for request tracing at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

type Client struct {
	base    *url.URL
	http    *http.Client
	headers http.Header
	logger  zerolog.Logger
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: DefaultTimeout},
		headers: http.Header{},
		logger:  zerolog.Nop(),
	}
	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the host every path is resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Get issues a GET for path. Query values that are empty are dropped so that
// optional parameters can be passed unconditionally. When out is non-nil the
// response body is decoded into it.
func (c *Client) Get(ctx context.Context, path string, query url.Values, headers http.Header, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, headers, out)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, headers, out)
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")

	q := url.Values{}
	for key, values := range query {
		for _, v := range values {
			if v != "" {
				q.Add(key, v)
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), reader)
	if err != nil {
		return &apperr.TransportError{Method: method, Path: path, Err: err}
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, values := range headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Dur("latency", time.Since(start)).Msg("backend request failed")
		return &apperr.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("non-2xx response: %d %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Bearer builds the header set for endpoints that expect a bearer token.
func Bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
