// internal/reconcile/types.go
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Statusy magazynowe WooCommerce
const (
	StockInStock    = "instock"
	StockOutOfStock = "outofstock"
)

// StoreProduct to produkt ze sklepu (Woo). Rdzeń tylko go czyta.
type StoreProduct struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	RegularPrice string `json:"regular_price"` // Woo trzyma ceny jako string
	StockStatus  string `json:"stock_status"`
}

// Price zwraca cenę regularną; pusta lub niepoprawna wartość -> 0
func (p StoreProduct) Price() decimal.Decimal {
	s := strings.TrimSpace(p.RegularPrice)
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// OutOfStock: porównanie bez względu na wielkość liter
func (p StoreProduct) OutOfStock() bool {
	return strings.EqualFold(strings.TrimSpace(p.StockStatus), StockOutOfStock)
}

// Param to para atrybutu z feedu dostawcy (<param name="...">value</param>)
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SupplierOffer to oferta z feedu dostawcy. Po pobraniu niezmienna.
// Po przejściu przez Normalize ten sam typ opisuje ofertę znormalizowaną.
type SupplierOffer struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Available   bool     `json:"available"`
	Description string   `json:"description"`
	Pictures    []string `json:"pictures,omitempty"`
	Params      []Param  `json:"params,omitempty"`
}

type CategoryRef struct {
	ID int64 `json:"id"`
}

type Image struct {
	Src string `json:"src"`
}

type Attribute struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

// CreateRecord - kształt "create" z /products/batch
type CreateRecord struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	RegularPrice string        `json:"regular_price"`
	Description  string        `json:"description"`
	SKU          string        `json:"sku,omitempty"`
	Categories   []CategoryRef `json:"categories"`
	Images       []Image       `json:"images,omitempty"`
	Attributes   []Attribute   `json:"attributes,omitempty"`
}

// UpdateRecord - kształt "update" z /products/batch.
// nil = pole nieustawione; rekordy o tym samym ID łączymy pole po polu.
type UpdateRecord struct {
	ID           int64   `json:"id"`
	StockStatus  *string `json:"stock_status,omitempty"`
	Name         *string `json:"name,omitempty"`
	RegularPrice *string `json:"regular_price,omitempty"`
}

// Fields zwraca nazwy ustawionych pól (do logów)
func (u UpdateRecord) Fields() []string {
	var out []string
	if u.StockStatus != nil {
		out = append(out, "stock_status")
	}
	if u.Name != nil {
		out = append(out, "name")
	}
	if u.RegularPrice != nil {
		out = append(out, "regular_price")
	}
	return out
}

// Empty: rekord bez żadnego pola do zmiany
func (u UpdateRecord) Empty() bool {
	return u.StockStatus == nil && u.Name == nil && u.RegularPrice == nil
}

// BatchPayload to finalna paczka dla /wp-json/wc/v3/products/batch
type BatchPayload struct {
	Create []CreateRecord `json:"create,omitempty"`
	Update []UpdateRecord `json:"update,omitempty"`
}

func (b BatchPayload) Len() int { return len(b.Create) + len(b.Update) }

func (b BatchPayload) IsEmpty() bool { return b.Len() == 0 }

// Chunks dzieli paczkę na części po max n obiektów (Woo przyjmuje max 100).
// Najpierw idą create, potem update; kolejność zachowana.
func (b BatchPayload) Chunks(n int) []BatchPayload {
	if n <= 0 {
		n = 100
	}
	var out []BatchPayload
	cur := BatchPayload{}
	flush := func() {
		if !cur.IsEmpty() {
			out = append(out, cur)
			cur = BatchPayload{}
		}
	}
	for _, c := range b.Create {
		cur.Create = append(cur.Create, c)
		if cur.Len() >= n {
			flush()
		}
	}
	for _, u := range b.Update {
		cur.Update = append(cur.Update, u)
		if cur.Len() >= n {
			flush()
		}
	}
	flush()
	return out
}

func strPtr(s string) *string { return &s }
