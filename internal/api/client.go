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
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/voltmarket/pkg/logger"
)

const maxResponseBytes = 10 << 20

// CredentialProvider supplies the bearer token for authenticated calls.
// An empty token means no Authorization header is sent.
type CredentialProvider interface {
	Token() string
}

// Config holds client settings
type Config struct {
	BaseURL string        // e.g. http://10.0.2.2:8080/api/
	Timeout time.Duration // per request; 30s when zero
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client; its transport is still traced
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records request metrics
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client calls the marketplace REST API
type Client struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
	creds   CredentialProvider
	metrics *Metrics
}

// NewClient creates a client reading its token from creds on every call
func NewClient(cfg Config, creds CredentialProvider, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: base,
		timeout: timeout,
		http:    &http.Client{},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := c.http.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	traced := *c.http
	traced.Transport = otelhttp.NewTransport(transport)
	c.http = &traced

	return c, nil
}

// request describes one call. route is the path template used for metrics and logs.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
	public      bool // never carries Authorization
}

type validator interface {
	Validate() error
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL.ResolveReference(&url.URL{Path: r.path})
	if len(r.query) > 0 {
		target.RawQuery = r.query.Encode()
	}

	body := r.raw
	contentType := r.contentType
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", r.route, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !r.public && c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(r.route, r.method, 0, time.Since(start))
		logger.Warn(ctx).
			Err(err).
			Str("method", r.method).
			Str("route", r.route).
			Str("request_id", requestID).
			Msg("API request failed without response")
		return &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.observe(r.route, r.method, resp.StatusCode, elapsed)
	if err != nil {
		return &TransportError{Method: r.method, Path: r.path, Err: err}
	}

	event := logger.Debug(ctx)
	if resp.StatusCode >= 500 {
		event = logger.Error(ctx)
	} else if resp.StatusCode >= 400 {
		event = logger.Warn(ctx)
	}
	event.
		Str("method", r.method).
		Str("route", r.route).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Str("request_id", requestID).
		Msg("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newNetworkError(r.method, r.path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return &DecodeError{Path: r.path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &DecodeError{Path: r.path, Err: err}
	}
	return nil
}

// call performs r and decodes one validated value
func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T
	if err := c.do(ctx, r, &out); err != nil {
		var zero T
		return zero, err
	}
	if v, ok := any(out).(validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, &DecodeError{Path: r.path, Err: err}
		}
	}
	return out, nil
}

// callList performs r and decodes a list whose every element validates
func callList[T validator](ctx context.Context, c *Client, r request) ([]T, error) {
	var out []T
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, &DecodeError{Path: r.path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// callFlag decodes a {"<key>": bool} object, rejecting a missing key
func callFlag(ctx context.Context, c *Client, r request, key string) (bool, error) {
	var out map[string]*bool
	if err := c.do(ctx, r, &out); err != nil {
		return false, err
	}
	v, ok := out[key]
	if !ok || v == nil {
		return false, &DecodeError{Path: r.path, Err: fmt.Errorf("missing boolean %q", key)}
	}
	return *v, nil
}
