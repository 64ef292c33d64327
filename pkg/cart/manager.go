// Package cart provides the cart and order state manager: line item
// mutations with quantity aggregation, order synthesis at checkout, and
// persistence of both through a storage.Store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shopkit-go/storefront-core/pkg/catalog"
	"github.com/shopkit-go/storefront-core/pkg/logging"
	"github.com/shopkit-go/storefront-core/pkg/storage"
)

const (
	// DefaultTTL is how long an untouched persisted cart stays valid.
	DefaultTTL = 1 * time.Hour

	// DefaultCartKey is where the cart envelope is persisted.
	DefaultCartKey = "storefront:cart"

	// DefaultOrdersKey is where the order history is persisted.
	DefaultOrdersKey = "storefront:orders"
)

// Config holds the manager configuration.
type Config struct {
	// Store is the persistence backend. Required.
	Store storage.Store

	// Catalog submits cart additions and resolves product snapshots.
	// Required.
	Catalog *catalog.Client

	// TTL is the cart envelope expiry, independent of the response
	// cache TTL. Defaults to DefaultTTL.
	TTL time.Duration

	// CartKey and OrdersKey override the storage keys.
	CartKey   string
	OrdersKey string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Manager owns the cart line items and the order history. A single
// mutex serializes every mutation entry point, so two overlapping
// AddItem or Checkout calls cannot interleave and lose updates.
//
// Storage failures are logged and swallowed: the manager keeps
// operating in memory even when persistence is broken. Network failures
// from the catalog are the only errors that propagate.
type Manager struct {
	mu        sync.Mutex
	store     storage.Store
	api       *catalog.Client
	ttl       time.Duration
	cartKey   string
	ordersKey string
	now       func() time.Time
	validate  *validator.Validate
	logger    zerolog.Logger

	items  []LineItem
	count  int
	orders []Order
}

// NewManager creates a manager and loads persisted cart and order state.
// An expired cart envelope is discarded wholesale on load; order history
// never expires.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog client is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CartKey == "" {
		cfg.CartKey = DefaultCartKey
	}
	if cfg.OrdersKey == "" {
		cfg.OrdersKey = DefaultOrdersKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &Manager{
		store:     cfg.Store,
		api:       cfg.Catalog,
		ttl:       cfg.TTL,
		cartKey:   cfg.CartKey,
		ordersKey: cfg.OrdersKey,
		now:       cfg.Now,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logging.NewLogger("cart-manager"),
	}

	m.load(context.Background())

	return m, nil
}

// load restores the cart envelope and the order history.
func (m *Manager) load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data, err := m.store.Get(ctx, m.cartKey); err == nil {
		var envelope cartEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Malformed cart envelope, starting empty")
		} else if m.now().Sub(envelope.Timestamp) >= m.ttl {
			// The whole envelope is discarded, not individual items.
			m.logger.Warn().
				Time("last_modified", envelope.Timestamp).
				Msg("Expired cart envelope discarded on load")
			if err := m.store.Delete(ctx, m.cartKey); err != nil {
				m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Failed to remove expired cart envelope")
			}
		} else {
			m.items = envelope.Items
			m.count = unitCount(m.items)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Failed to load cart envelope, starting empty")
	}

	if data, err := m.store.Get(ctx, m.ordersKey); err == nil {
		var orders []Order
		if err := json.Unmarshal(data, &orders); err != nil {
			m.logger.Warn().Err(err).Str("key", m.ordersKey).Msg("Malformed order history, starting empty")
		} else {
			m.orders = orders
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn().Err(err).Str("key", m.ordersKey).Msg("Failed to load order history, starting empty")
	}
}

// AddItem submits the addition to the catalog API and, only on success,
// merges it into local state: an existing identity triple gets its
// quantity incremented, a new triple is appended. When details is nil
// the snapshot is resolved from the catalog before the item lands, so
// every line item carries displayable, priceable product data.
func (m *Manager) AddItem(ctx context.Context, productID, colorCode, storageCode string, quantity int, details *catalog.Product) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	// Network side effect first; local state stays untouched on failure.
	if _, err := m.api.AddToCart(ctx, productID, colorCode, storageCode); err != nil {
		return err
	}

	if details == nil {
		resolved, err := m.api.FetchProduct(ctx, productID, false)
		if err != nil {
			return fmt.Errorf("resolve product snapshot: %w", err)
		}
		details = resolved
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := false
	for i := range m.items {
		if m.items[i].matches(productID, colorCode, storageCode) {
			m.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		m.items = append(m.items, LineItem{
			ProductID:   productID,
			ColorCode:   colorCode,
			StorageCode: storageCode,
			Quantity:    quantity,
			Details:     details.Clone(),
		})
	}

	m.count = unitCount(m.items)
	m.persistCartLocked(ctx)

	m.logger.Debug().
		Str("product_id", productID).
		Int("quantity", quantity).
		Bool("merged", merged).
		Msg("Item added to cart")

	return nil
}

// UpdateQuantity sets the quantity of the line item with the given
// identity triple. A quantity below 1 removes the item. Unknown triples
// are ignored.
func (m *Manager) UpdateQuantity(ctx context.Context, productID, colorCode, storageCode string, newQuantity int) {
	if newQuantity < 1 {
		m.RemoveItem(ctx, productID, colorCode, storageCode)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].matches(productID, colorCode, storageCode) {
			m.items[i].Quantity = newQuantity
			m.count = unitCount(m.items)
			m.persistCartLocked(ctx)
			return
		}
	}
}

// RemoveItem removes the line item with the given identity triple. When
// the cart becomes empty the persisted envelope is purged entirely: an
// empty envelope carrying a stale timestamp equals "no cart".
func (m *Manager) RemoveItem(ctx context.Context, productID, colorCode, storageCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	for _, item := range m.items {
		if !item.matches(productID, colorCode, storageCode) {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.count = unitCount(m.items)
	m.persistCartLocked(ctx)
}

// Clear empties the cart and purges the persisted envelope.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
}

// Checkout synthesizes an order from the current cart contents. An
// empty cart is a no-op returning nil. On success the order is
// prepended to the history (most recent first), the history is
// persisted, and the cart is cleared.
func (m *Manager) Checkout(ctx context.Context, info CustomerInfo) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return nil, nil
	}

	if err := m.validate.Struct(info); err != nil {
		return nil, fmt.Errorf("invalid customer info: %w", err)
	}

	now := m.now()
	order := Order{
		ID:        newOrderID(now),
		Items:     cloneItems(m.items),
		Customer:  info,
		Total:     m.totalLocked(),
		CreatedAt: now,
		Status:    StatusCompleted,
	}

	m.orders = append([]Order{order}, m.orders...)
	m.persistOrdersLocked(ctx)
	m.clearLocked(ctx)

	m.logger.Info().
		Str("order_id", order.ID).
		Float64("total", order.Total).
		Int("line_items", len(order.Items)).
		Msg("Order created")

	return &order, nil
}

// Items returns a deep copy of the current line items.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneItems(m.items)
}

// Count returns the total unit count across all line items.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Orders returns a copy of the order history, most recent first.
func (m *Manager) Orders() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]Order, len(m.orders))
	for i, order := range m.orders {
		orders[i] = order
		orders[i].Items = cloneItems(order.Items)
	}
	return orders
}

// totalLocked sums unit price times quantity over all line items.
// Snapshots are resolved at add time, so a nil snapshot only appears in
// state persisted by older writers; such items contribute zero.
func (m *Manager) totalLocked() float64 {
	total := 0.0
	for _, item := range m.items {
		if item.Details == nil {
			m.logger.Warn().
				Str("product_id", item.ProductID).
				Msg("Line item without snapshot valued at zero")
			continue
		}
		total += item.Details.PriceValue() * float64(item.Quantity)
	}
	return total
}

func (m *Manager) clearLocked(ctx context.Context) {
	m.items = nil
	m.count = 0
	if err := m.store.Delete(ctx, m.cartKey); err != nil {
		m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Failed to purge persisted cart envelope")
	}
}

// persistCartLocked writes the envelope with a fresh last-modified
// timestamp, or purges it when the cart is empty.
func (m *Manager) persistCartLocked(ctx context.Context) {
	if len(m.items) == 0 {
		if err := m.store.Delete(ctx, m.cartKey); err != nil {
			m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Failed to purge persisted cart envelope")
		}
		return
	}

	data, err := json.Marshal(cartEnvelope{
		Items:     m.items,
		Timestamp: m.now(),
	})
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to marshal cart envelope")
		return
	}

	if err := m.store.Set(ctx, m.cartKey, data); err != nil {
		m.logger.Warn().Err(err).Str("key", m.cartKey).Msg("Failed to persist cart envelope, continuing memory-only")
	}
}

func (m *Manager) persistOrdersLocked(ctx context.Context) {
	data, err := json.Marshal(m.orders)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to marshal order history")
		return
	}

	if err := m.store.Set(ctx, m.ordersKey, data); err != nil {
		m.logger.Warn().Err(err).Str("key", m.ordersKey).Msg("Failed to persist order history, continuing memory-only")
	}
}

// newOrderID builds an identifier unique across the process lifetime:
// millisecond timestamp plus a random UUID fragment.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("order-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}

func unitCount(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
