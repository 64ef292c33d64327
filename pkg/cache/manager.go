package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopkit-go/storefront-core/pkg/logging"
	"github.com/shopkit-go/storefront-core/pkg/storage"
)

// ErrCacheMiss indicates the requested key was not found or has expired.
// A miss is a normal, expected outcome, not a failure.
var ErrCacheMiss = errors.New("cache miss")

const (
	// DefaultTTL is how long a cached response stays valid.
	DefaultTTL = 1 * time.Hour

	// DefaultStorageKey is where the cache table is persisted.
	DefaultStorageKey = "storefront:response-cache"
)

// Config holds the cache manager configuration.
type Config struct {
	// Store is the persistence backend. Required.
	Store storage.Store

	// TTL is the expiry applied uniformly to every entry.
	// Defaults to DefaultTTL.
	TTL time.Duration

	// StorageKey is the key the whole table is persisted under.
	// Defaults to DefaultStorageKey.
	StorageKey string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Manager memoizes catalog API responses with a uniform TTL. The table
// lives in memory and is persisted as a whole through the configured
// store on every Set. Expired entries are purged lazily on load and on
// every read, never proactively.
type Manager struct {
	mu     sync.Mutex
	store  storage.Store
	table  map[string]Entry
	ttl    time.Duration
	key    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewManager creates a cache manager and loads the persisted table.
// Absent or malformed persisted state initializes an empty table; no
// error is surfaced for either.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Manager{
		store:  cfg.Store,
		table:  make(map[string]Entry),
		ttl:    cfg.TTL,
		key:    cfg.StorageKey,
		now:    cfg.Now,
		logger: logging.NewLogger("response-cache"),
	}

	m.load(context.Background())

	return m, nil
}

// load deserializes the persisted table and purges expired entries.
func (m *Manager) load(ctx context.Context) {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			CachePersistErrors.WithLabelValues("load").Inc()
			m.logger.Warn().Err(err).Str("key", m.key).Msg("Failed to load cache table, starting empty")
		}
		return
	}

	var table map[string]Entry
	if err := json.Unmarshal(data, &table); err != nil {
		m.logger.Warn().Err(err).Str("key", m.key).Msg("Malformed cache table, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.table = table
	if m.purgeExpiredLocked() > 0 {
		m.persistLocked(ctx, "load")
	}
}

// Get returns a copy of the payload cached under key, or ErrCacheMiss.
// Every read sweeps the whole table for expired entries first; the table
// is catalog-sized, so the O(entries) sweep is cheap.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.purgeExpiredLocked() > 0 {
		m.persistLocked(ctx, "purge")
	}

	entry, ok := m.table[key]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.Inc()
	m.logger.Debug().
		Str("key", key).
		Dur("remaining", entry.Remaining(m.ttl, m.now())).
		Msg("Cache hit")

	// Callers get their own copy so cached state cannot be mutated.
	payload := make([]byte, len(entry.Data))
	copy(payload, entry.Data)
	return payload, nil
}

// Set overwrites the entry for key with a fresh timestamp and persists
// the entire table synchronously. Persistence failures are logged and
// swallowed: the cache keeps operating memory-only until the next
// successful write.
func (m *Manager) Set(ctx context.Context, key string, payload []byte) {
	stored := make(json.RawMessage, len(payload))
	copy(stored, payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.table[key] = Entry{
		Data:     stored,
		StoredAt: m.now(),
	}
	m.persistLocked(ctx, "set")
}

// Clear empties the table and removes the persisted representation.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.table = make(map[string]Entry)
	if err := m.store.Delete(ctx, m.key); err != nil {
		CachePersistErrors.WithLabelValues("clear").Inc()
		m.logger.Warn().Err(err).Str("key", m.key).Msg("Failed to remove persisted cache table")
	}
}

// Len returns the number of entries currently in the table, expired or
// not. Mostly useful in tests.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table)
}

// purgeExpiredLocked removes every expired entry and returns the count.
func (m *Manager) purgeExpiredLocked() int {
	now := m.now()
	purged := 0

	for key, entry := range m.table {
		if entry.Expired(m.ttl, now) {
			delete(m.table, key)
			purged++
		}
	}

	if purged > 0 {
		CacheEntriesPurged.Add(float64(purged))
		m.logger.Debug().Int("purged", purged).Msg("Purged expired cache entries")
	}

	return purged
}

// persistLocked writes the whole table to the backing store.
func (m *Manager) persistLocked(ctx context.Context, operation string) {
	data, err := json.Marshal(m.table)
	if err != nil {
		CachePersistErrors.WithLabelValues(operation).Inc()
		m.logger.Warn().Err(err).Msg("Failed to marshal cache table")
		return
	}

	if err := m.store.Set(ctx, m.key, data); err != nil {
		CachePersistErrors.WithLabelValues(operation).Inc()
		m.logger.Warn().Err(err).Str("key", m.key).Msg("Failed to persist cache table, continuing memory-only")
	}
}
