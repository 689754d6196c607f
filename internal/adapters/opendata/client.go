// Package opendata fetches records from the Paris open-data explore API.
package opendata

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/freshpoint/internal/domain/types"
	"github.com/okian/freshpoint/pkg/metrics"
)

const (
	defaultLimit    = 100
	maxBodyBytes    = 16 << 20
	userAgent       = "freshpoint/1.0"
	dialTimeout     = 5 * time.Second
	keepAlive       = 30 * time.Second
	tlsHandshake    = 5 * time.Second
	idleConnTimeout = 90 * time.Second
)

// Client issues one GET per call against the records endpoint. There is no
// retry and no cache.
type Client struct {
	httpClient *http.Client
	endpoint   string
	limit      int
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLimit sets the page size sent as ?limit=.
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithTimeout bounds each fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// New builds a Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient: newHTTPClient(),
		endpoint:   endpoint,
		limit:      defaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit returns the configured page size.
func (c *Client) Limit() int { return c.limit }

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAlive,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     idleConnTimeout,
			TLSHandshakeTimeout: tlsHandshake,
		},
	}
}

// Records fetches the first page of the collection.
func (c *Client) Records(ctx context.Context) ([]types.Record, error) {
	const op = "opendata.records"

	start := time.Now()
	records, err := c.fetch(ctx)
	metrics.RecordUpstreamFetch(float64(time.Since(start).Milliseconds()), len(records), err)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return records, nil
}

func (c *Client) fetch(ctx context.Context) ([]types.Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target, err := c.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var page types.UpstreamPage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if page.Results == nil {
		return nil, ErrNoResults
	}
	return page.Results, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
