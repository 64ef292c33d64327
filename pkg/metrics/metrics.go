// Package metrics provides the centralized Prometheus registry for the
// storefront core. All metrics are defined in their respective packages
// (cache, catalog) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the storefront
// core. All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - storefront_cache_hits_total (Counter): Response cache hits
//   - storefront_cache_misses_total (Counter): Response cache misses
//   - storefront_cache_entries_purged_total (Counter): Expired entries removed by the lazy sweep
//   - storefront_cache_persist_errors_total{operation} (Counter): Failed writes to the backing store
//
// Catalog Metrics (pkg/catalog):
//   - storefront_catalog_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - storefront_catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - storefront_catalog_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(storefront_cache_hits_total[5m])) /
//   (sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//   # Catalog Error Rate
//   rate(storefront_catalog_errors_total[5m])
//
//   # P95 Catalog Latency
//   histogram_quantile(0.95, rate(storefront_catalog_request_duration_seconds_bucket[5m]))
