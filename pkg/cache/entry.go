// Package cache provides TTL memoization of catalog API responses,
// persisted through a storage.Store so the table survives restarts.
package cache

import (
	"encoding/json"
	"time"
)

// Entry represents one cached catalog response.
type Entry struct {
	// Data is the raw response payload.
	Data json.RawMessage `json:"data"`

	// StoredAt is when the payload was written to the cache.
	StoredAt time.Time `json:"timestamp"`
}

// Expired reports whether the entry is stale at the given instant.
// An entry is valid strictly for ttl from StoredAt; at exactly
// StoredAt+ttl it is already expired.
func (e Entry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.StoredAt) >= ttl
}

// Remaining returns the time until expiration at the given instant.
// Returns 0 if already expired.
func (e Entry) Remaining(ttl time.Duration, now time.Time) time.Duration {
	left := ttl - now.Sub(e.StoredAt)
	if left < 0 {
		return 0
	}
	return left
}
