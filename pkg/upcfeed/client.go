// Package upcfeed provides a client for the external UPC scraper feed.
package upcfeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mintvault/catalog-cli/internal/resilience"
)

// Client defines the scraper feed operations.
type Client interface {
	// Fetch pulls the current batch of scraped (name, code) pairs.
	Fetch(ctx context.Context) ([]Item, error)
}

// Item is one scraped product record from the feed. The feed is loosely
// typed; missing fields decode to empty strings.
type Item struct {
	Name      string `json:"name"`
	UPC       string `json:"upc"`
	SourceURL string `json:"url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetries sets the number of attempts for transient failures.
func WithRetries(n int) Option {
	return func(c *httpClient) {
		c.retry.MaxAttempts = n
	}
}

type httpClient struct {
	feedURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a feed client for the given URL.
func NewClient(feedURL string, opts ...Option) Client {
	c := &httpClient{
		feedURL: feedURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("upcfeed", "fetch")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Fetch(ctx context.Context) ([]Item, error) {
	return resilience.DoVal(ctx, c.retry, c.doFetch)
}

func (c *httpClient) doFetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "upcfeed: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "upcfeed: fetch request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("upcfeed: http %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("upcfeed: http %d: %s", resp.StatusCode, string(body))
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, eris.Wrap(err, "upcfeed: decode response")
	}
	return items, nil
}
