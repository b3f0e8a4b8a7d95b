// internal/integrations/woocommerce/types.go
package woocommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bartek5186/supplier2woo/internal/reconcile"
)

type wcProduct struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	RegularPrice flexPrice `json:"regular_price"` // zwykle string, czasem liczba (wtyczki)
	StockStatus  string    `json:"stock_status"`  // "instock","outofstock","onbackorder"
}

func (p wcProduct) toStore() reconcile.StoreProduct {
	return reconcile.StoreProduct{
		ID:           p.ID,
		SKU:          strings.TrimSpace(p.SKU),
		Name:         p.Name,
		RegularPrice: string(p.RegularPrice),
		StockStatus:  p.StockStatus,
	}
}

// flexPrice przyjmuje "12.50", 12.5 albo null
type flexPrice string

func (f *flexPrice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexPrice(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("regular_price: %w", err)
	}
	*f = flexPrice(n.String())
	return nil
}

// odpowiedź z /products/batch
type wcBatchItem struct {
	ID    int64           `json:"id"`
	Error json.RawMessage `json:"error,omitempty"`
}

type wcBatchResponse struct {
	Create []wcBatchItem `json:"create"`
	Update []wcBatchItem `json:"update"`
}

// APIError - odpowiedź Woo inna niż 2xx
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woo %s: http %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
