// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/clickhouse-diagnostics/pkg/defaults"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/errors"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/query"
	"github.com/NVIDIA/clickhouse-diagnostics/pkg/version"
)

const (
	// UserAgent is sent with every request.
	UserAgent = "chdiag/1.0"

	// HeaderUser carries the ClickHouse user name.
	HeaderUser = "X-ClickHouse-User"

	selectVersion = "SELECT version()"
)

// Option configures a Client.
type Option func(*Client)

// WithHost sets the server host name. Ignored when WithURL is used.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithPort sets the HTTP interface port. Ignored when WithURL is used.
func WithPort(port int) Option {
	return func(c *Client) {
		c.port = port
	}
}

// WithURL sets the full endpoint, e.g. "https://ch.example.com:8443".
func WithURL(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithUser sets the user sent in the X-ClickHouse-User header.
func WithUser(user string) Option {
	return func(c *Client) {
		c.user = user
	}
}

// WithTimeout sets the default per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps the query rate. Zero or negative means unlimited.
func WithRateLimit(qps float64) Option {
	return func(c *Client) {
		if qps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

// WithRetry overrides the connection retry budget.
func WithRetry(attempts uint, base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.baseDelay = base
		c.maxDelay = maxDelay
	}
}

// WithRetryHook registers a callback invoked before each retry.
func WithRetryHook(fn func(attempt uint, err error)) Option {
	return func(c *Client) {
		c.onRetry = fn
	}
}

// Client issues queries against the ClickHouse HTTP interface.
// Each query is a single stateless request; the only state kept between
// requests is the lazily discovered server version.
type Client struct {
	host     string
	port     int
	endpoint string
	user     string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter

	attempts  uint
	baseDelay time.Duration
	maxDelay  time.Duration
	onRetry   func(attempt uint, err error)

	renderer      *query.Renderer
	version       *version.Version
	versionString string
}

// New creates a Client. Without options it targets localhost:8123.
func New(opts ...Option) *Client {
	c := &Client{
		host:      "localhost",
		port:      defaults.HTTPPort,
		timeout:   defaults.QueryTimeout,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		attempts:  defaults.RetryAttempts,
		baseDelay: defaults.RetryBaseDelay,
		maxDelay:  defaults.RetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.endpoint == "" {
		c.endpoint = "http://" + net.JoinHostPort(c.host, strconv.Itoa(c.port))
	}
	if c.http == nil {
		c.http = &http.Client{Transport: newDefaultHTTPTransport()}
	}
	c.renderer = query.NewRenderer(c.Version)
	return c
}

func newDefaultHTTPTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     defaults.HTTPIdleConnTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// URL returns the endpoint the client talks to.
func (c *Client) URL() string {
	return c.endpoint
}

type queryOptions struct {
	format  Format
	timeout time.Duration
	body    any
}

// QueryOption configures a single query.
type QueryOption func(*queryOptions)

// WithFormat requests the given output format from the server.
func WithFormat(f Format) QueryOption {
	return func(o *queryOptions) {
		o.format = f
	}
}

// WithQueryTimeout overrides the client timeout for one query.
func WithQueryTimeout(d time.Duration) QueryOption {
	return func(o *queryOptions) {
		o.timeout = d
	}
}

// WithBody sends v as a JSON request body.
func WithBody(v any) QueryOption {
	return func(o *queryOptions) {
		o.body = v
	}
}

// Query executes text and returns the response body with surrounding
// whitespace trimmed.
func (c *Client) Query(ctx context.Context, text string, opts ...QueryOption) (string, error) {
	body, err := c.execute(ctx, text, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// QueryData executes text in a structured format and decodes the response.
func (c *Client) QueryData(ctx context.Context, text string, format Format, opts ...QueryOption) (map[string]any, error) {
	if !format.IsStructured() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("format %s is not structured", format))
	}
	body, err := c.execute(ctx, text, append(opts, WithFormat(format))...)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to decode query result", err)
	}
	return data, nil
}

// VersionString returns the raw server version, querying it on first use.
func (c *Client) VersionString(ctx context.Context) (string, error) {
	if _, err := c.Version(ctx); err != nil {
		return "", err
	}
	return c.versionString, nil
}

// Version returns the parsed server version. The result is cached for the
// lifetime of the client; failures are not cached.
func (c *Client) Version(ctx context.Context) (version.Version, error) {
	if c.version != nil {
		return *c.version, nil
	}
	raw, err := c.Query(ctx, selectVersion)
	if err != nil {
		return version.Version{}, err
	}
	v, err := version.ParseVersion(raw)
	if err != nil {
		return version.Version{}, errors.Wrap(errors.ErrCodeInternal, "unexpected server version", err)
	}
	c.version = &v
	c.versionString = raw
	slog.Debug("discovered server version", "version", raw)
	return v, nil
}

// Render expands a query template against vars and the server version.
func (c *Client) Render(ctx context.Context, tpl string, vars query.Vars) (string, error) {
	return c.renderer.Render(ctx, tpl, vars)
}

func (c *Client) execute(ctx context.Context, text string, opts ...QueryOption) ([]byte, error) {
	o := queryOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.format != "" {
		text += " FORMAT " + string(o.format)
	}

	var payload []byte
	if o.body != nil {
		var err error
		if payload, err = json.Marshal(o.body); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to encode request body", err)
		}
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.roundTrip(ctx, text, payload, o.timeout)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.baseDelay),
		retry.MaxDelay(c.maxDelay),
		retry.MaxJitter(max(c.baseDelay, time.Millisecond)),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.RetryIf(IsConnectionError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("connection to clickhouse failed, retrying",
				"attempt", n+1,
				"url", c.endpoint,
				"error", err)
			if c.onRetry != nil {
				c.onRetry(n, err)
			}
		}),
	)
	if err != nil {
		return nil, classify(err, c.endpoint)
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, text string, payload []byte, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.endpoint + "/?" + url.Values{"query": {text}}.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(HeaderUser, c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func classify(err error, endpoint string) error {
	var se *ServerError
	switch {
	case stderrors.As(err, &se):
		return errors.WrapWithContext(errors.ErrCodeServerError, "query failed", err,
			map[string]any{"status": se.StatusCode})
	case IsConnectionError(err):
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to connect to clickhouse", err,
			map[string]any{"url": endpoint})
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, "query timed out", err)
	default:
		return errors.Wrap(errors.ErrCodeInternal, "query failed", err)
	}
}
