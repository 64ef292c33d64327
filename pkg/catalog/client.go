// Package catalog provides the cache-backed access facade for the
// remote product catalog API: product list, product detail, and cart
// additions.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopkit-go/storefront-core/pkg/cache"
	"github.com/shopkit-go/storefront-core/pkg/logging"
	"github.com/shopkit-go/storefront-core/pkg/storage"
)

const (
	productListPath = "/api/product"
	cartPath        = "/api/cart"

	// DefaultTimeout bounds every catalog request.
	DefaultTimeout = 30 * time.Second
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the catalog API, without trailing slash. Required.
	BaseURL string

	// Store is the persistence backend for the response cache. Required.
	Store storage.Store

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for each HTTP request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// CacheTTL is the response cache expiry. Defaults to cache.DefaultTTL.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(store storage.Store, baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Store:     store,
		UserAgent: "storefront-core/0.1.0",
		Timeout:   DefaultTimeout,
		CacheTTL:  cache.DefaultTTL,
	}
}

// Client is the catalog API facade. Idempotent reads consult the
// response cache before touching the network; cart additions always go
// live. Requests are never retried and a miss never falls back to stale
// cache: network failures propagate to the caller unchanged.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New creates a catalog client and loads its persisted response cache.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	cacheManager, err := cache.NewManager(cache.Config{
		Store: cfg.Store,
		TTL:   cfg.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache manager: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cacheManager,
		config: cfg,
		logger: logging.NewLogger("catalog-client"),
	}, nil
}

// FetchProducts returns the full product list. The cached copy is served
// unless it is absent, expired, or forceRefresh is set; a fresh result
// replaces the cached value unconditionally.
func (c *Client) FetchProducts(ctx context.Context, forceRefresh bool) ([]Product, error) {
	if !forceRefresh {
		if payload, err := c.cache.Get(ctx, cache.ProductListKey); err == nil {
			var products []Product
			if err := json.Unmarshal(payload, &products); err == nil {
				c.logger.Debug().Str("key", cache.ProductListKey).Msg("Serving cached product list")
				return products, nil
			}
			c.logger.Warn().Str("key", cache.ProductListKey).Msg("Cached product list undecodable, refetching")
		}
	}

	body, err := c.get(ctx, productListPath)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	c.cache.Set(ctx, cache.ProductListKey, body)
	return products, nil
}

// FetchProduct returns a single product's details by id, with the same
// cache policy as FetchProducts under the per-product key.
func (c *Client) FetchProduct(ctx context.Context, id string, forceRefresh bool) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("product id is required")
	}

	key := cache.ProductKey(id)
	if !forceRefresh {
		if payload, err := c.cache.Get(ctx, key); err == nil {
			var product Product
			if err := json.Unmarshal(payload, &product); err == nil {
				c.logger.Debug().Str("key", key).Msg("Serving cached product")
				return &product, nil
			}
			c.logger.Warn().Str("key", key).Msg("Cached product undecodable, refetching")
		}
	}

	endpoint := productListPath + "/" + id
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}

	c.cache.Set(ctx, key, body)
	return &product, nil
}

// AddToCart submits a cart addition for the given product variant.
// Mutating operation: always a live call, never cached.
func (c *Client) AddToCart(ctx context.Context, productID, colorCode, storageCode string) (*CartConfirmation, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	payload, err := json.Marshal(cartRequest{
		ID:          productID,
		ColorCode:   colorCode,
		StorageCode: storageCode,
	})
	if err != nil {
		return nil, fmt.Errorf("encode cart request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, cartPath, payload)
	if err != nil {
		return nil, err
	}

	var confirmation CartConfirmation
	if err := json.Unmarshal(body, &confirmation); err != nil {
		return nil, fmt.Errorf("decode cart confirmation: %w", err)
	}

	return &confirmation, nil
}

// Cache returns the underlying response cache manager.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// do executes one HTTP request against the catalog API. HTTP and network
// failures come back as *APIError with a class for observability.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Catalog request failed")
		return nil, &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: endpoint,
			Err:      err,
		}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		catalogErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Catalog request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Endpoint:   endpoint,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: endpoint,
			Err:      err,
		}
	}

	return body, nil
}

// IsNetworkError reports whether err is a catalog network failure.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class == ErrorClassNetwork
	}
	return false
}
