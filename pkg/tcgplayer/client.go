// Package tcgplayer provides a client for the TCGplayer catalog search
// API.
package tcgplayer

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

// Client defines the TCGplayer catalog operations used by the mapper.
type Client interface {
	// SearchProducts looks up catalog products by name. An empty result
	// set is returned as (nil, nil); errors indicate transport failure.
	SearchProducts(ctx context.Context, name, setHint string) ([]Product, error)
}

// Product is a single TCGplayer catalog product.
type Product struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	CleanName string `json:"cleanName"`
	GroupID   int64  `json:"groupId"`
	URL       string `json:"url"`
}

// ExternalID returns the product id as the string identifier stored on
// catalog entries.
func (p Product) ExternalID() string {
	return strconv.FormatInt(p.ProductID, 10)
}

// searchResponse is the TCGplayer API envelope. Fields the API may omit
// or null are decoded defensively rather than treated as fatal.
type searchResponse struct {
	Success bool      `json:"success"`
	Errors  []string  `json:"errors"`
	Results []Product `json:"results"`
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
	bearerToken string
	baseURL     string
	http        *http.Client
	retry       resilience.RetryConfig
}

// NewClient creates a TCGplayer API client.
func NewClient(bearerToken string, opts ...Option) Client {
	c := &httpClient{
		bearerToken: bearerToken,
		baseURL:     "https://api.tcgplayer.com",
		http:        &http.Client{Timeout: 30 * time.Second},
		retry:       resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("tcgplayer", "search_products")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchProducts(ctx context.Context, name, setHint string) ([]Product, error) {
	q := url.Values{}
	q.Set("productName", name)
	q.Set("limit", "10")
	if setHint != "" {
		q.Set("groupName", setHint)
	}
	reqURL := fmt.Sprintf("%s/catalog/products?%s", c.baseURL, q.Encode())

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Product, error) {
		return c.doSearch(ctx, reqURL)
	})
}

func (c *httpClient) doSearch(ctx context.Context, reqURL string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "tcgplayer: create request")
	}
	req.Header.Set("Authorization", "bearer "+c.bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "tcgplayer: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	// TCGplayer answers 404 when a product name has no matches; that is
	// a valid empty result, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("tcgplayer: http %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("tcgplayer: http %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "tcgplayer: decode response")
	}
	if !parsed.Success && len(parsed.Errors) > 0 {
		return nil, eris.Errorf("tcgplayer: api error: %s", parsed.Errors[0])
	}
	return parsed.Results, nil
}
