// Package cache provides TTL memoization of catalog API responses.
//
// The cache manager memoizes idempotent catalog reads with the following
// behavior:
//
// - One uniform TTL for every entry (1 hour by default)
// - Lazy expiry: entries are purged on load and on every read, never proactively
// - Whole-table persistence through a storage.Store on every write
// - Deep-copy reads: callers can never mutate cached state
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store, err := storage.NewFileStore("/var/lib/storefront/state.json")
//	if err != nil {
//		return err
//	}
//
//	manager, err := cache.NewManager(cache.Config{Store: store})
//	if err != nil {
//		return err
//	}
//
//	// Try the cache first
//	payload, err := manager.Get(ctx, cache.ProductListKey)
//	if err == cache.ErrCacheMiss {
//		// Miss - fetch from the catalog API, then:
//		manager.Set(ctx, cache.ProductListKey, body)
//	}
//
// # Failure Semantics
//
// Persistence failures never reach the caller. A failed write is logged
// and the in-memory table keeps serving reads until the next successful
// Set. Malformed persisted state loads as an empty table.
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - storefront_cache_hits_total - Cache hits
//   - storefront_cache_misses_total - Cache misses
//   - storefront_cache_entries_purged_total - Expired entries removed
//   - storefront_cache_persist_errors_total{operation} - Persistence errors
package cache
