// Package cardtrader provides a client for the CardTrader blueprint
// search API.
package cardtrader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mintvault/catalog-cli/internal/resilience"
)

// Client defines the CardTrader operations used by the mapper.
type Client interface {
	// SearchBlueprints looks up product blueprints by name. An empty
	// result set is (nil, nil); errors indicate transport failure.
	SearchBlueprints(ctx context.Context, name string) ([]Blueprint, error)
}

// Blueprint is a CardTrader product blueprint. CardTrader payloads are
// loosely typed; optional fields decode to zero values instead of
// failing.
type Blueprint struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
	GameID     int64  `json:"game_id,omitempty"`
}

// ExternalID returns the blueprint id as the string identifier stored
// on catalog entries.
func (b Blueprint) ExternalID() string {
	return strconv.FormatInt(b.ID, 10)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

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
	token   string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a CardTrader API client using JWT bearer auth.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.cardtrader.com/api/v2",
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("cardtrader", "search_blueprints")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchBlueprints(ctx context.Context, name string) ([]Blueprint, error) {
	q := url.Values{}
	q.Set("name", name)
	reqURL := fmt.Sprintf("%s/blueprints/export?%s", c.baseURL, q.Encode())

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Blueprint, error) {
		return c.doSearch(ctx, reqURL)
	})
}

func (c *httpClient) doSearch(ctx context.Context, reqURL string) ([]Blueprint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cardtrader: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cardtrader: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("cardtrader: http %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("cardtrader: http %d: %s", resp.StatusCode, string(body))
	}

	var blueprints []Blueprint
	if err := json.NewDecoder(resp.Body).Decode(&blueprints); err != nil {
		return nil, eris.Wrap(err, "cardtrader: decode response")
	}
	return blueprints, nil
}
