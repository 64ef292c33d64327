package catalog

import "testing"

func TestProduct_PriceValue(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected float64
	}{
		{"integer price", "170", 170},
		{"decimal price", "120.50", 120.50},
		{"empty price", "", 0},
		{"malformed price", "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price}
			if got := p.PriceValue(); got != tt.expected {
				t.Errorf("PriceValue() = %v, want %v", got, tt.expected)
			}
		})
	}

	var nilProduct *Product
	if got := nilProduct.PriceValue(); got != 0 {
		t.Errorf("PriceValue() on nil = %v, want 0", got)
	}
}

func TestProduct_Clone(t *testing.T) {
	original := &Product{
		ID:    "p-100",
		Brand: "Acer",
		Price: "170",
		Options: ProductOptions{
			Colors:   []ColorOption{{Code: "1000", Name: "Black"}},
			Storages: []StorageOption{{Code: "2000", Name: "64 GB"}},
		},
		Specs: map[string]any{"cpu": "octa-core"},
	}

	clone := original.Clone()

	clone.Price = "9999"
	clone.Options.Colors[0].Name = "Mutated"
	clone.Options.Storages[0].Name = "Mutated"
	clone.Specs["cpu"] = "mutated"

	if original.Price != "170" {
		t.Errorf("Price = %q, want %q", original.Price, "170")
	}
	if original.Options.Colors[0].Name != "Black" {
		t.Errorf("Color name = %q, want %q", original.Options.Colors[0].Name, "Black")
	}
	if original.Options.Storages[0].Name != "64 GB" {
		t.Errorf("Storage name = %q, want %q", original.Options.Storages[0].Name, "64 GB")
	}
	if original.Specs["cpu"] != "octa-core" {
		t.Errorf("Spec = %v, want %q", original.Specs["cpu"], "octa-core")
	}

	var nilProduct *Product
	if nilProduct.Clone() != nil {
		t.Error("Clone() on nil should return nil")
	}
}

func TestProduct_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		product  *Product
		expected string
	}{
		{"brand and model", &Product{Brand: "Acer", Model: "Iconia Talk S"}, "Acer Iconia Talk S"},
		{"model only", &Product{Model: "Iconia Talk S"}, "Iconia Talk S"},
		{"brand only", &Product{Brand: "Acer"}, "Acer"},
		{"nil product", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
