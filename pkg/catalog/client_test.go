package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopkit-go/storefront-core/internal/testutil"
	"github.com/shopkit-go/storefront-core/pkg/storage"
)

func newTestClient(t *testing.T, mock *testutil.MockCatalog) *Client {
	t.Helper()

	client, err := New(DefaultConfig(storage.NewMemStore(), mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:   "valid config",
			config: Config{BaseURL: "http://localhost:3001", Store: storage.NewMemStore()},
		},
		{
			name:        "missing base URL",
			config:      Config{Store: storage.NewMemStore()},
			expectError: true,
		},
		{
			name:        "missing store",
			config:      Config{BaseURL: "http://localhost:3001"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestClient_FetchProducts(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	products, err := client.FetchProducts(ctx, false)
	if err != nil {
		t.Fatalf("FetchProducts failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Product count = %d, want 3", len(products))
	}
	if products[0].ID != "p-100" || products[0].Brand != "Acer" {
		t.Errorf("First product = %+v, want p-100/Acer", products[0])
	}
}

func TestClient_FetchProducts_CachesResult(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	if _, err := client.FetchProducts(ctx, false); err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if _, err := client.FetchProducts(ctx, false); err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}

	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("Network requests = %d, want 1 (second read served from cache)", got)
	}
}

func TestClient_FetchProducts_ForceRefresh(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	if _, err := client.FetchProducts(ctx, false); err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}
	if _, err := client.FetchProducts(ctx, true); err != nil {
		t.Fatalf("Forced fetch failed: %v", err)
	}

	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("Network requests = %d, want 2 (forceRefresh bypasses cache)", got)
	}
}

func TestClient_FetchProduct(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	product, err := client.FetchProduct(ctx, "p-200", false)
	if err != nil {
		t.Fatalf("FetchProduct failed: %v", err)
	}
	if product.Model != "3T 10" {
		t.Errorf("Model = %q, want %q", product.Model, "3T 10")
	}
	if product.PriceValue() != 120.50 {
		t.Errorf("PriceValue() = %v, want 120.50", product.PriceValue())
	}

	// Second read is a cache hit.
	if _, err := client.FetchProduct(ctx, "p-200", false); err != nil {
		t.Fatalf("Cached FetchProduct failed: %v", err)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("Network requests = %d, want 1", got)
	}
}

func TestClient_FetchProduct_NotFound(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)

	_, err := client.FetchProduct(context.Background(), "no-such-id", false)
	if err == nil {
		t.Fatal("Expected error for unknown product")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Class != ErrorClassClient {
		t.Errorf("Class = %q, want %q", apiErr.Class, ErrorClassClient)
	}
}

func TestClient_ServerErrorNotCached(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	mock.FailWith("/api/product", http.StatusInternalServerError)
	_, err := client.FetchProducts(ctx, false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Class != ErrorClassServer {
		t.Fatalf("Expected server APIError, got %v", err)
	}

	// After the server recovers, the list is fetched fresh, not served
	// from a poisoned cache entry.
	mock.SetHandler("/api/product", nil)
	mock.Reset()
	products, err := client.FetchProducts(ctx, false)
	if err != nil {
		t.Fatalf("FetchProducts after recovery failed: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("Product count = %d, want 3", len(products))
	}
}

func TestClient_NetworkFailurePropagates(t *testing.T) {
	mock := testutil.NewMockCatalog()
	client := newTestClient(t, mock)
	mock.Close() // connection refused from here on

	_, err := client.FetchProducts(context.Background(), false)
	if !IsNetworkError(err) {
		t.Errorf("Expected network APIError, got %v", err)
	}
}

func TestClient_AddToCart(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	client := newTestClient(t, mock)
	ctx := context.Background()

	confirmation, err := client.AddToCart(ctx, "p-100", "1000", "2000")
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if confirmation.Count != 1 {
		t.Errorf("Count = %d, want 1", confirmation.Count)
	}

	// Mutations are never cached: every call hits the network.
	if _, err := client.AddToCart(ctx, "p-100", "1000", "2000"); err != nil {
		t.Fatalf("Second AddToCart failed: %v", err)
	}
	if got := mock.GetCartPostCount(); got != 2 {
		t.Errorf("Cart POSTs = %d, want 2", got)
	}
}

func TestClient_CacheSurvivesRestart(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	store := storage.NewMemStore()
	ctx := context.Background()

	first, err := New(DefaultConfig(store, mock.URL()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := first.FetchProducts(ctx, false); err != nil {
		t.Fatalf("FetchProducts failed: %v", err)
	}

	// A fresh client over the same store serves the list from cache.
	second, err := New(DefaultConfig(store, mock.URL()))
	if err != nil {
		t.Fatalf("Second New failed: %v", err)
	}
	if _, err := second.FetchProducts(ctx, false); err != nil {
		t.Fatalf("FetchProducts after restart failed: %v", err)
	}

	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("Network requests = %d, want 1", got)
	}
}
