package sheetfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readings "hatchery-monitor/internal/readings/domain"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxBytes = 16 << 20
	errorBodyLimit  = 256
)

// Client downloads the published spreadsheet as CSV.
type Client struct {
	url      string
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each fetch, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBytes = limit
		}
	}
}

// NewClient constructs a feed client for feedURL.
func NewClient(feedURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("sheetfeed: empty feed url")
	}
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("sheetfeed: invalid feed url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("sheetfeed: unsupported scheme %q", parsed.Scheme)
	}
	c := &Client{
		url:      feedURL,
		timeout:  defaultTimeout,
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// URL returns the feed endpoint.
func (c *Client) URL() string { return c.url }

// Fetch retrieves the raw CSV body. Any failure is returned as *readings.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &readings.FetchError{Err: err}
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &readings.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &readings.FetchError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &readings.FetchError{Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &readings.FetchError{Err: fmt.Errorf("body exceeds %d bytes", c.maxBytes)}
	}
	return body, nil
}
