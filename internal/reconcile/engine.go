// internal/reconcile/engine.go
package reconcile

// Engine spina cały przebieg: Normalize -> 3 detektory -> Merge
type Engine struct {
	Rules      Rules
	CategoryID int64
	Sink       EventSink
}

// Summary - liczniki z jednego przebiegu
type Summary struct {
	StoreProducts      int `json:"store_products"`
	SupplierOffers     int `json:"supplier_offers"`
	NormalizedOffers   int `json:"normalized_offers"`
	Created            int `json:"created"`
	MarkedOutOfStock   int `json:"marked_out_of_stock"`
	Outdated           int `json:"outdated"`
	Updates            int `json:"updates"`
	DuplicateStoreSKUs int `json:"duplicate_store_skus"`
	DuplicateOfferSKUs int `json:"duplicate_offer_skus"`
}

func (s Summary) HasChanges() bool { return s.Created > 0 || s.Updates > 0 }

type Result struct {
	Payload BatchPayload `json:"payload"`
	Summary Summary      `json:"summary"`
}

func (e Engine) Run(store []StoreProduct, offers []SupplierOffer) Result {
	sink := sinkOrNop(e.Sink)

	normalized := Normalize(offers, e.Rules)

	// duplikaty SKU: zostaje ostatni, ale dajemy znać
	storeDups := IndexStore(store).Duplicates
	offerDups := IndexOffers(normalized).Duplicates
	for _, sku := range storeDups {
		sink.Record(LevelWarn, EventDuplicateSKU, map[string]any{"sku": sku, "side": "store"})
	}
	for _, sku := range offerDups {
		sink.Record(LevelWarn, EventDuplicateSKU, map[string]any{"sku": sku, "side": "supplier"})
	}

	created := DetectNew(normalized, store, e.CategoryID, sink)
	outOfStock := DetectOutOfStock(store, normalized, sink)
	outdated := DetectOutdated(store, normalized, sink)

	payload := Merge(created, outOfStock, outdated)
	sum := Summary{
		StoreProducts:      len(store),
		SupplierOffers:     len(offers),
		NormalizedOffers:   len(normalized),
		Created:            len(payload.Create),
		MarkedOutOfStock:   len(outOfStock),
		Outdated:           len(outdated),
		Updates:            len(payload.Update),
		DuplicateStoreSKUs: len(storeDups),
		DuplicateOfferSKUs: len(offerDups),
	}
	sink.Record(LevelInfo, EventReconciled, map[string]any{
		"store_products":    sum.StoreProducts,
		"supplier_offers":   sum.SupplierOffers,
		"normalized_offers": sum.NormalizedOffers,
		"create":            sum.Created,
		"update":            sum.Updates,
	})
	return Result{Payload: payload, Summary: sum}
}
