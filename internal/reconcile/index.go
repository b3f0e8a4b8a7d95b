// internal/reconcile/index.go
package reconcile

// Index to mapa SKU -> rekord. Przy powtórzonym SKU wygrywa ostatni,
// a samo SKU ląduje w Duplicates (raz, w kolejności wykrycia).
type Index[T any] struct {
	BySKU      map[string]T
	Duplicates []string
}

func (ix Index[T]) Get(sku string) (T, bool) {
	v, ok := ix.BySKU[sku]
	return v, ok
}

func (ix Index[T]) Has(sku string) bool {
	_, ok := ix.BySKU[sku]
	return ok
}

func (ix Index[T]) Len() int { return len(ix.BySKU) }

// IndexBySKU buduje indeks; rekordy z pustym SKU są pomijane
func IndexBySKU[T any](items []T, sku func(T) string) Index[T] {
	ix := Index[T]{BySKU: make(map[string]T, len(items))}
	seenDup := map[string]struct{}{}
	for _, it := range items {
		k := sku(it)
		if k == "" {
			continue
		}
		if _, exists := ix.BySKU[k]; exists {
			if _, noted := seenDup[k]; !noted {
				seenDup[k] = struct{}{}
				ix.Duplicates = append(ix.Duplicates, k)
			}
		}
		ix.BySKU[k] = it
	}
	return ix
}

func storeSKU(p StoreProduct) string  { return p.SKU }
func offerSKU(o SupplierOffer) string { return o.SKU }

// IndexStore / IndexOffers - skróty dla dwóch katalogów
func IndexStore(products []StoreProduct) Index[StoreProduct] {
	return IndexBySKU(products, storeSKU)
}

func IndexOffers(offers []SupplierOffer) Index[SupplierOffer] {
	return IndexBySKU(offers, offerSKU)
}
