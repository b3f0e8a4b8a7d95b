// internal/reconcile/detect.go
package reconcile

import "strings"

const productTypeSimple = "simple"

// DetectNew zwraca rekordy "create" dla ofert, których SKU nie ma w sklepie.
// Oferty bez SKU pomijamy, bo później nie dałoby się ich dopasować.
func DetectNew(offers []SupplierOffer, store []StoreProduct, categoryID int64, sink EventSink) []CreateRecord {
	sink = sinkOrNop(sink)
	inStore := IndexStore(store)

	var out []CreateRecord
	for _, o := range offers {
		if o.SKU == "" || inStore.Has(o.SKU) {
			continue
		}
		rec := newCreateRecord(o, categoryID)
		out = append(out, rec)
		sink.Record(LevelInfo, EventNewItem, map[string]any{
			"sku":   o.SKU,
			"name":  rec.Name,
			"price": rec.RegularPrice,
		})
	}
	return out
}

func newCreateRecord(o SupplierOffer, categoryID int64) CreateRecord {
	rec := CreateRecord{
		Name:         o.Name,
		Type:         productTypeSimple,
		RegularPrice: priceString(o.Price),
		Description:  o.Description,
		SKU:          o.SKU,
		Categories:   []CategoryRef{{ID: categoryID}},
	}
	for _, pic := range o.Pictures {
		pic = strings.TrimSpace(pic)
		if pic == "" {
			continue
		}
		rec.Images = append(rec.Images, Image{Src: pic})
	}
	for _, p := range o.Params {
		name, value := strings.TrimSpace(p.Name), strings.TrimSpace(p.Value)
		if name == "" || value == "" {
			continue
		}
		rec.Attributes = append(rec.Attributes, Attribute{
			Name:      name,
			Options:   []string{value},
			Visible:   true,
			Variation: false,
		})
	}
	return rec
}

// DetectOutOfStock oznacza jako "outofstock" produkty sklepu, których SKU
// nie ma w (przefiltrowanym) feedzie. Już wyprzedanych nie ruszamy.
func DetectOutOfStock(store []StoreProduct, offers []SupplierOffer, sink EventSink) []UpdateRecord {
	sink = sinkOrNop(sink)
	inFeed := IndexOffers(offers)

	var out []UpdateRecord
	for _, p := range store {
		if p.ID <= 0 || p.SKU == "" || p.OutOfStock() {
			continue
		}
		if inFeed.Has(p.SKU) {
			continue
		}
		out = append(out, UpdateRecord{ID: p.ID, StockStatus: strPtr(StockOutOfStock)})
		sink.Record(LevelInfo, EventOutOfStock, map[string]any{
			"id":  p.ID,
			"sku": p.SKU,
		})
	}
	return out
}

// DetectOutdated porównuje pary sklep/dostawca o wspólnym SKU i zwraca
// aktualizacje nazwy, ceny i dostępności. Stanu nigdy nie obniża
// (instock -> outofstock robi DetectOutOfStock).
func DetectOutdated(store []StoreProduct, offers []SupplierOffer, sink EventSink) []UpdateRecord {
	sink = sinkOrNop(sink)
	storeIx := IndexStore(store)
	feedIx := IndexOffers(offers)

	var out []UpdateRecord
	done := make(map[string]struct{}, len(feedIx.BySKU))
	for _, raw := range store {
		if raw.SKU == "" {
			continue
		}
		if _, seen := done[raw.SKU]; seen {
			continue
		}
		o, ok := feedIx.Get(raw.SKU)
		if !ok {
			continue
		}
		done[raw.SKU] = struct{}{}

		// po duplikatach zostaje ostatni produkt z danym SKU
		p := storeIx.BySKU[raw.SKU]
		if p.ID <= 0 {
			continue
		}

		upd, changed := diffProduct(p, o)
		if !changed {
			continue
		}
		out = append(out, upd)
		sink.Record(LevelInfo, EventOutdatedItem, map[string]any{
			"id":     p.ID,
			"sku":    p.SKU,
			"fields": upd.Fields(),
		})
	}
	return out
}

func diffProduct(p StoreProduct, o SupplierOffer) (UpdateRecord, bool) {
	upd := UpdateRecord{ID: p.ID}

	if name := NormalizeText(o.Name); name != "" && name != NormalizeText(p.Name) {
		upd.Name = strPtr(name)
	}

	newPrice := round2(o.Price)
	if !p.Price().Round(2).Equal(newPrice) {
		upd.RegularPrice = strPtr(priceString(o.Price))
	}

	if o.Available && p.OutOfStock() {
		upd.StockStatus = strPtr(StockInStock)
	}

	return upd, !upd.Empty()
}
