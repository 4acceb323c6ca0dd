package domain

import "testing"

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name    string
		product Product
		want    float64
	}{
		{"discounted", Product{UnitPrice: 80, FinalPrice: 60}, 60},
		{"list price only", Product{UnitPrice: 80}, 80},
		{"zero final falls back", Product{UnitPrice: 80, FinalPrice: 0}, 80},
		{"negative final falls back", Product{UnitPrice: 80, FinalPrice: -1}, 80},
		{"no usable price", Product{}, 0},
	}
	for _, tc := range cases {
		if got := tc.product.EffectivePrice(); got != tc.want {
			t.Errorf("%s: EffectivePrice() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInStock(t *testing.T) {
	cases := []struct {
		name    string
		product Product
		want    bool
	}{
		{"numeric qty", Product{Qty: 2}, true},
		{"label in_stock", Product{Stock: "in_stock"}, true},
		{"label Available", Product{Stock: "Available"}, true},
		{"unknown label", Product{Stock: "backorder"}, false},
		{"empty", Product{}, false},
	}
	for _, tc := range cases {
		if got := tc.product.InStock(); got != tc.want {
			t.Errorf("%s: InStock() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
