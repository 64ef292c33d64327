package cache

// Cache keys are derived deterministically from request identity so that
// list and detail reads share one table without colliding.

// ProductListKey is the cache key for the full product catalog.
const ProductListKey = "products-list"

// ProductKey returns the cache key for a single product's details.
func ProductKey(id string) string {
	return "product-" + id
}
