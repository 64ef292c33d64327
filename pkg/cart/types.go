package cart

import (
	"time"

	"github.com/shopkit-go/storefront-core/pkg/catalog"
)

// LineItem is one distinct cart entry, identified by the product plus
// its variant selection. At most one line item exists per identity
// triple; adding the same triple again increments the quantity.
type LineItem struct {
	ProductID   string `json:"productId"`
	ColorCode   string `json:"colorCode"`
	StorageCode string `json:"storageCode"`
	Quantity    int    `json:"quantity"`

	// Details is the product snapshot captured at add time, so cart and
	// order display never needs repeat catalog calls.
	Details *catalog.Product `json:"details,omitempty"`
}

// matches reports whether the line item carries the given identity triple.
func (li LineItem) matches(productID, colorCode, storageCode string) bool {
	return li.ProductID == productID &&
		li.ColorCode == colorCode &&
		li.StorageCode == storageCode
}

// clone returns a deep copy, including the product snapshot.
func (li LineItem) clone() LineItem {
	out := li
	out.Details = li.Details.Clone()
	return out
}

// CustomerInfo holds the contact fields supplied at checkout. All fields
// are optional; when present they must be well-formed.
type CustomerInfo struct {
	Name    string `json:"name" validate:"omitempty,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// StatusCompleted is the only status an order ever has: checkout
// synthesizes completed orders and nothing here cancels or refunds them.
const StatusCompleted OrderStatus = "completed"

// Order is the immutable record synthesized from cart contents at
// checkout time.
type Order struct {
	ID        string       `json:"id"`
	Items     []LineItem   `json:"items"`
	Customer  CustomerInfo `json:"customerInfo"`
	Total     float64      `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
	Status    OrderStatus  `json:"status"`
}

// cartEnvelope is the persisted cart representation. Timestamp reflects
// the last modification, so an active cart never expires, only an
// abandoned one does.
type cartEnvelope struct {
	Items     []LineItem `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}
