package tcgplayer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mintvault/catalog-cli/internal/resilience"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/products", r.URL.Path)
		assert.Equal(t, "bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "Foundations Bundle", r.URL.Query().Get("productName"))
		assert.Equal(t, "FDN", r.URL.Query().Get("groupName"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"errors": [],
			"results": [
				{"productId": 617824, "name": "Foundations - Bundle", "groupId": 23874}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	products, err := client.SearchProducts(context.Background(), "Foundations Bundle", "FDN")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(617824), products[0].ProductID)
	assert.Equal(t, "617824", products[0].ExternalID())
	assert.Equal(t, "Foundations - Bundle", products[0].Name)
}

func TestSearchProducts_NotFoundIsEmptyResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	products, err := client.SearchProducts(context.Background(), "Nonexistent Product", "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearchProducts_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success": true, "results": [{"productId": 1, "name": "x"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL), WithRetries(2))
	products, err := client.SearchProducts(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 2, calls)
}

func TestSearchProducts_PermanentStatusNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-token", WithBaseURL(srv.URL), WithRetries(3))
	_, err := client.SearchProducts(context.Background(), "x", "")
	assert.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.Equal(t, 1, calls)
}

func TestSearchProducts_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success": false, "errors": ["invalid category"], "results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := client.SearchProducts(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category")
}
