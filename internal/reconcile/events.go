// internal/reconcile/events.go
package reconcile

// Level to poziom zdarzenia przekazywanego do EventSink
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

// Nazwy zdarzeń
const (
	EventNewItem      = "new_item"
	EventOutOfStock   = "out_of_stock"
	EventOutdatedItem = "outdated_item"
	EventDuplicateSKU = "duplicate_sku"
	EventReconciled   = "reconciled"
)

// EventSink przyjmuje zdarzenia z rdzenia. Wynik nie jest nigdzie używany,
// rdzeń działa tak samo z NopSink.
type EventSink interface {
	Record(level Level, event string, fields map[string]any)
}

// NopSink niczego nie zapisuje
type NopSink struct{}

func (NopSink) Record(Level, string, map[string]any) {}

func sinkOrNop(s EventSink) EventSink {
	if s == nil {
		return NopSink{}
	}
	return s
}
