// Package testutil provides testing utilities for the storefront core.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockProduct mirrors the catalog API product shape for fixtures.
type MockProduct struct {
	ID      string         `json:"id"`
	Brand   string         `json:"brand"`
	Model   string         `json:"model"`
	Price   string         `json:"price"`
	ImgURL  string         `json:"imgUrl"`
	Options MockOptions    `json:"options"`
	Specs   map[string]any `json:"specs,omitempty"`
}

// MockOptions holds the variant fixtures for a mock product.
type MockOptions struct {
	Colors   []MockOption `json:"colors"`
	Storages []MockOption `json:"storages"`
}

// MockOption is one code/name variant pair.
type MockOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DefaultProducts returns the canned catalog fixtures used across tests.
func DefaultProducts() []MockProduct {
	options := MockOptions{
		Colors:   []MockOption{{Code: "1000", Name: "Black"}, {Code: "1001", Name: "White"}},
		Storages: []MockOption{{Code: "2000", Name: "64 GB"}, {Code: "2001", Name: "128 GB"}},
	}
	return []MockProduct{
		{
			ID:      "p-100",
			Brand:   "Acer",
			Model:   "Iconia Talk S",
			Price:   "170",
			ImgURL:  "https://cdn.example.test/p-100.jpg",
			Options: options,
		},
		{
			ID:      "p-200",
			Brand:   "Alcatel",
			Model:   "3T 10",
			Price:   "120.50",
			ImgURL:  "https://cdn.example.test/p-200.jpg",
			Options: options,
		},
		{
			ID:      "p-300",
			Brand:   "BQ",
			Model:   "Aquaris X2",
			Price:   "", // unlisted price, served as empty string by the real API
			ImgURL:  "https://cdn.example.test/p-300.jpg",
			Options: options,
		},
	}
}

// MockCatalog is a configurable mock catalog API server for testing.
type MockCatalog struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	products []MockProduct

	// Tracking
	RequestCount  int
	ListCount     int
	DetailCount   int
	CartPostCount int
	cartItems     int
}

// NewMockCatalog creates a mock catalog server with default fixtures.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		products: DefaultProducts(),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ListCount = 0
	m.DetailCount = 0
	m.CartPostCount = 0
	m.cartItems = 0
}

// SetHandler sets a custom handler for a specific path. A nil handler
// restores the default behavior for that path.
func (m *MockCatalog) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if handler == nil {
		delete(m.handlers, path)
		return
	}
	m.handlers[path] = handler
}

// FailWith makes a path respond with the given status code.
func (m *MockCatalog) FailWith(path string, statusCode int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(statusCode), statusCode)
	})
}

// SetProducts replaces the product fixtures.
func (m *MockCatalog) SetProducts(products []MockProduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCatalog) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetCartPostCount returns the number of cart additions received.
func (m *MockCatalog) GetCartPostCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CartPostCount
}

// defaultHandler serves the canned catalog API routes.
func (m *MockCatalog) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/product":
		m.mu.Lock()
		m.ListCount++
		products := m.products
		m.mu.Unlock()
		json.NewEncoder(w).Encode(products)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/product/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/product/")
		m.mu.Lock()
		m.DetailCount++
		var found *MockProduct
		for i := range m.products {
			if m.products[i].ID == id {
				found = &m.products[i]
				break
			}
		}
		m.mu.Unlock()

		if found == nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"product not found"}`))
			return
		}
		json.NewEncoder(w).Encode(found)

	case r.Method == http.MethodPost && r.URL.Path == "/api/cart":
		var body struct {
			ID          string `json:"id"`
			ColorCode   string `json:"colorCode"`
			StorageCode string `json:"storageCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid cart request"}`))
			return
		}

		m.mu.Lock()
		m.CartPostCount++
		m.cartItems++
		count := m.cartItems
		m.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]int{"count": count})

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}
}
