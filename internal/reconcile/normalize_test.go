package reconcile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Scenario(t *testing.T) {
	rules := Rules{
		Markup:      300,
		PriceRange:  PriceRange{Min: 1, Max: 1000},
		ExcludeSKUs: []string{"X1"},
	}
	in := []SupplierOffer{
		{SKU: "X1", Available: true, Price: 50},
		{SKU: "X2", Available: true, Price: 2000},
		{SKU: "X3", Available: true, Price: 100},
		{SKU: "X4", Available: false, Price: 100},
	}

	out := Normalize(in, rules)

	require.Len(t, out, 1)
	assert.Equal(t, "X3", out[0].SKU)
	assert.True(t, out[0].Available)
	assert.Equal(t, 400.0, out[0].Price)
}

func TestNormalize_Filters(t *testing.T) {
	rules := Rules{PriceRange: PriceRange{Min: 10, Max: 20}}

	tests := []struct {
		name  string
		offer SupplierOffer
		keep  bool
	}{
		{"unavailable", SupplierOffer{SKU: "a", Price: 15}, false},
		{"below min", SupplierOffer{SKU: "a", Available: true, Price: 9.99}, false},
		{"min inclusive", SupplierOffer{SKU: "a", Available: true, Price: 10}, true},
		{"max inclusive", SupplierOffer{SKU: "a", Available: true, Price: 20}, true},
		{"above max", SupplierOffer{SKU: "a", Available: true, Price: 20.01}, false},
		{"nan", SupplierOffer{SKU: "a", Available: true, Price: math.NaN()}, false},
		{"inf", SupplierOffer{SKU: "a", Available: true, Price: math.Inf(1)}, false},
		{"empty sku passes", SupplierOffer{Available: true, Price: 15}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize([]SupplierOffer{tt.offer}, rules)
			assert.Equal(t, tt.keep, len(out) == 1)
		})
	}
}

func TestNormalize_ExcludeIgnoresEmptyEntries(t *testing.T) {
	rules := Rules{
		PriceRange:  PriceRange{Min: 0, Max: 100},
		ExcludeSKUs: []string{"", "B"},
	}
	in := []SupplierOffer{
		{SKU: "", Available: true, Price: 1},
		{SKU: "A", Available: true, Price: 1},
		{SKU: "B", Available: true, Price: 1},
	}

	out := Normalize(in, rules)

	require.Len(t, out, 2)
	assert.Equal(t, "", out[0].SKU)
	assert.Equal(t, "A", out[1].SKU)
}

func TestNormalize_PureAndOrderPreserving(t *testing.T) {
	rules := Rules{Markup: 5, PriceRange: PriceRange{Min: 0, Max: 1000}}
	in := []SupplierOffer{
		{SKU: "C", Available: true, Price: 3, Pictures: []string{"http://x/c.jpg"}},
		{SKU: "A", Available: true, Price: 1, Params: []Param{{Name: "Kolor", Value: "Czerwony"}}},
		{SKU: "B", Available: true, Price: 2},
	}
	before := []SupplierOffer{
		{SKU: "C", Available: true, Price: 3, Pictures: []string{"http://x/c.jpg"}},
		{SKU: "A", Available: true, Price: 1, Params: []Param{{Name: "Kolor", Value: "Czerwony"}}},
		{SKU: "B", Available: true, Price: 2},
	}

	first := Normalize(in, rules)
	second := Normalize(in, rules)

	assert.Equal(t, first, second)
	assert.Equal(t, before, in, "input must not be mutated")
	require.Len(t, first, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{first[0].SKU, first[1].SKU, first[2].SKU})
	assert.Equal(t, 8.0, first[0].Price)

	// zmiana wyniku nie może przeciec do wejścia
	first[0].Pictures[0] = "changed"
	assert.Equal(t, "http://x/c.jpg", in[0].Pictures[0])
}
