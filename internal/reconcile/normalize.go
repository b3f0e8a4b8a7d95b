// internal/reconcile/normalize.go
package reconcile

import (
	"math"
	"slices"
)

// PriceRange - przedział cen, obie granice włącznie
type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// Contains: false dla NaN/Inf
func (r PriceRange) Contains(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p >= r.Min && p <= r.Max
}

// Rules to reguły biznesowe dla feedu dostawcy. Przekazywane jawnie przy
// każdym wywołaniu, bez globalnych domyślnych.
type Rules struct {
	Markup      float64    `json:"markup" validate:"gte=0"` // dodawany do ceny, nie mnożnik
	PriceRange  PriceRange `json:"price_range"`
	ExcludeSKUs []string   `json:"exclude_skus"`
}

func (r Rules) excludeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.ExcludeSKUs))
	for _, s := range r.ExcludeSKUs {
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// Normalize filtruje i przelicza oferty dostawcy:
//  1. odrzuca niedostępne,
//  2. odrzuca cenę spoza PriceRange (albo NaN/Inf),
//  3. odrzuca SKU z listy wykluczeń,
//  4. dolicza Markup.
//
// Wejście nie jest modyfikowane, kolejność zachowana.
func Normalize(offers []SupplierOffer, rules Rules) []SupplierOffer {
	excluded := rules.excludeSet()
	out := make([]SupplierOffer, 0, len(offers))
	for _, o := range offers {
		if !o.Available {
			continue
		}
		if !rules.PriceRange.Contains(o.Price) {
			continue
		}
		if o.SKU != "" {
			if _, skip := excluded[o.SKU]; skip {
				continue
			}
		}
		n := o
		n.Pictures = slices.Clone(o.Pictures)
		n.Params = slices.Clone(o.Params)
		n.Price = o.Price + rules.Markup
		out = append(out, n)
	}
	return out
}
