package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheEntriesPurged tracks entries removed by the lazy expiry sweep
	CacheEntriesPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_entries_purged_total",
			Help: "Total number of expired cache entries purged",
		},
	)

	// CachePersistErrors tracks failed writes to the backing store
	CachePersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_persist_errors_total",
			Help: "Total number of cache persistence errors",
		},
		[]string{"operation"}, // "load", "set", "clear", "purge"
	)
)
