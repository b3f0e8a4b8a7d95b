package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	level  Level
	name   string
	fields map[string]any
}

type recordingSink struct {
	events []recordedEvent
}

func (r *recordingSink) Record(level Level, event string, fields map[string]any) {
	r.events = append(r.events, recordedEvent{level: level, name: event, fields: fields})
}

func (r *recordingSink) count(name string) int {
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func fixtureCatalogs() ([]StoreProduct, []SupplierOffer) {
	store := []StoreProduct{
		{ID: 1, SKU: "A", Name: "Alfa", RegularPrice: "400", StockStatus: "instock"},
		{ID: 2, SKU: "B", Name: "Beta", RegularPrice: "100", StockStatus: "instock"},
		{ID: 3, SKU: "C", Name: "Gamma", RegularPrice: "350", StockStatus: "outofstock"},
		{ID: 4, SKU: "C", Name: "Gamma", RegularPrice: "350", StockStatus: "outofstock"},
		{ID: 5, SKU: "", Name: "Bez SKU", StockStatus: "instock"},
	}
	offers := []SupplierOffer{
		{SKU: "A", Name: "Alfa", Price: 110, Available: true},
		{SKU: "B", Name: "Beta", Price: 50, Available: false},
		{SKU: "C", Name: "Gamma Nowa", Price: 50, Available: true},
		{SKU: "D", Name: "Delta", Price: 20, Available: true},
		{SKU: "X", Name: "Excluded", Price: 20, Available: true},
	}
	return store, offers
}

func TestEngineRun(t *testing.T) {
	store, offers := fixtureCatalogs()
	sink := &recordingSink{}
	e := Engine{
		Rules: Rules{
			Markup:      300,
			PriceRange:  PriceRange{Min: 1, Max: 1000},
			ExcludeSKUs: []string{"X"},
		},
		CategoryID: 42,
		Sink:       sink,
	}

	res := e.Run(store, offers)

	require.Len(t, res.Payload.Create, 1)
	assert.Equal(t, "D", res.Payload.Create[0].SKU)
	assert.Equal(t, "320", res.Payload.Create[0].RegularPrice)

	require.Len(t, res.Payload.Update, 3)
	assert.Equal(t, UpdateRecord{ID: 2, StockStatus: strPtr("outofstock")}, res.Payload.Update[0])
	assert.Equal(t, UpdateRecord{ID: 1, RegularPrice: strPtr("410")}, res.Payload.Update[1])
	assert.Equal(t, UpdateRecord{
		ID:          4,
		Name:        strPtr("Gamma Nowa"),
		StockStatus: strPtr("instock"),
	}, res.Payload.Update[2])

	assert.Equal(t, Summary{
		StoreProducts:      5,
		SupplierOffers:     5,
		NormalizedOffers:   3,
		Created:            1,
		MarkedOutOfStock:   1,
		Outdated:           2,
		Updates:            3,
		DuplicateStoreSKUs: 1,
		DuplicateOfferSKUs: 0,
	}, res.Summary)
	assert.True(t, res.Summary.HasChanges())

	assert.Equal(t, 1, sink.count(EventNewItem))
	assert.Equal(t, 1, sink.count(EventOutOfStock))
	assert.Equal(t, 2, sink.count(EventOutdatedItem))
	assert.Equal(t, 1, sink.count(EventDuplicateSKU))
	assert.Equal(t, 1, sink.count(EventReconciled))
}

func TestEngineRun_SinkDoesNotChangeResult(t *testing.T) {
	store, offers := fixtureCatalogs()
	rules := Rules{Markup: 300, PriceRange: PriceRange{Min: 1, Max: 1000}, ExcludeSKUs: []string{"X"}}

	withSink := Engine{Rules: rules, CategoryID: 1, Sink: &recordingSink{}}.Run(store, offers)
	withNop := Engine{Rules: rules, CategoryID: 1, Sink: NopSink{}}.Run(store, offers)
	withNil := Engine{Rules: rules, CategoryID: 1}.Run(store, offers)

	assert.Equal(t, withNop, withSink)
	assert.Equal(t, withNop, withNil)
}

func TestEngineRun_InSync(t *testing.T) {
	store := []StoreProduct{{ID: 1, SKU: "A", Name: "Alfa", RegularPrice: "110", StockStatus: "instock"}}
	offers := []SupplierOffer{{SKU: "A", Name: "Alfa", Price: 100, Available: true}}

	res := Engine{Rules: Rules{Markup: 10, PriceRange: PriceRange{Max: 1000}}}.Run(store, offers)

	assert.True(t, res.Payload.IsEmpty())
	assert.False(t, res.Summary.HasChanges())
}
