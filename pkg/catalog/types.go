package catalog

import "strconv"

// Product is one catalog entry as served by the product API.
type Product struct {
	ID      string         `json:"id"`
	Brand   string         `json:"brand"`
	Model   string         `json:"model"`
	Price   string         `json:"price"`
	ImgURL  string         `json:"imgUrl"`
	Options ProductOptions `json:"options"`
	Specs   map[string]any `json:"specs,omitempty"`
}

// ProductOptions holds the variant axes a product can be ordered in.
type ProductOptions struct {
	Colors   []ColorOption   `json:"colors"`
	Storages []StorageOption `json:"storages"`
}

// ColorOption is one selectable color variant.
type ColorOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StorageOption is one selectable storage variant.
type StorageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PriceValue parses the decimal price string. The API serves prices as
// strings and leaves them empty for unlisted products; both malformed
// and empty prices value as zero.
func (p *Product) PriceValue() float64 {
	if p == nil || p.Price == "" {
		return 0
	}
	value, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0
	}
	return value
}

// Clone returns a deep copy: the Options slices and the Specs map are
// duplicated, so mutating the clone (or the original) never leaks
// through shared references.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}

	out := *p
	if p.Options.Colors != nil {
		out.Options.Colors = make([]ColorOption, len(p.Options.Colors))
		copy(out.Options.Colors, p.Options.Colors)
	}
	if p.Options.Storages != nil {
		out.Options.Storages = make([]StorageOption, len(p.Options.Storages))
		copy(out.Options.Storages, p.Options.Storages)
	}
	if p.Specs != nil {
		out.Specs = make(map[string]any, len(p.Specs))
		for k, v := range p.Specs {
			out.Specs[k] = v
		}
	}
	return &out
}

// DisplayName returns a human-readable product label.
func (p *Product) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Brand == "" {
		return p.Model
	}
	if p.Model == "" {
		return p.Brand
	}
	return p.Brand + " " + p.Model
}

// CartConfirmation is the opaque payload returned by the cart endpoint.
// Only the item count is exposed; no server-assigned identifiers are
// consumed by this client.
type CartConfirmation struct {
	Count int `json:"count"`
}

// cartRequest is the wire body for cart additions.
type cartRequest struct {
	ID          string `json:"id"`
	ColorCode   string `json:"colorCode"`
	StorageCode string `json:"storageCode"`
}
