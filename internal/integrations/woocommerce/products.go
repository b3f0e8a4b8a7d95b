// internal/integrations/woocommerce/products.go
package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bartek5186/supplier2woo/internal/integrations"
	"github.com/bartek5186/supplier2woo/internal/reconcile"
)

const (
	productsPath = "/wp-json/wc/v3/products"
	batchPath    = "/wp-json/wc/v3/products/batch"
	userAgent    = "supplier2woo 1.0"
)

// FetchProducts pobiera cały katalog sklepu strona po stronie
func (w *Woo) FetchProducts(ctx context.Context) ([]reconcile.StoreProduct, error) {
	base, err := url.Parse(w.cfg.BaseURL + productsPath)
	if err != nil {
		return nil, fmt.Errorf("woo base_url: %w", err)
	}

	var out []reconcile.StoreProduct
	for page := 1; ; page++ {
		q := base.Query()
		q.Set("orderby", "id")
		q.Set("order", "asc")
		q.Set("status", "any")
		q.Set("per_page", strconv.Itoa(w.cfg.PerPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("_fields", w.cfg.Fields)
		base.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}

		var items []wcProduct
		if err := w.do(req, &items); err != nil {
			return nil, fmt.Errorf("woo products page %d: %w", page, err)
		}
		for _, p := range items {
			out = append(out, p.toStore())
		}

		if len(items) < w.cfg.PerPage {
			break
		}
	}

	w.log.Info().Int("products", len(out)).Msg("Woo products fetched")
	return out, nil
}

// SendBatch wysyła paczkę na /products/batch, dzieląc ją po MaxBatch
func (w *Woo) SendBatch(ctx context.Context, payload reconcile.BatchPayload) (integrations.BatchResult, error) {
	var res integrations.BatchResult
	for i, chunk := range payload.Chunks(MaxBatch) {
		r, err := w.sendChunk(ctx, chunk)
		res.Created += r.Created
		res.Updated += r.Updated
		res.Failed += r.Failed
		if err != nil {
			return res, fmt.Errorf("woo batch chunk %d: %w", i+1, err)
		}
	}
	return res, nil
}

func (w *Woo) sendChunk(ctx context.Context, chunk reconcile.BatchPayload) (integrations.BatchResult, error) {
	body, err := json.Marshal(chunk)
	if err != nil {
		return integrations.BatchResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+batchPath, bytes.NewReader(body))
	if err != nil {
		return integrations.BatchResult{}, fmt.Errorf("error creating request: %w", err)
	}

	var resp wcBatchResponse
	if err := w.do(req, &resp); err != nil {
		return integrations.BatchResult{}, err
	}

	var res integrations.BatchResult
	for _, it := range resp.Create {
		if len(it.Error) > 0 {
			res.Failed++
			w.log.Warn().RawJSON("error", it.Error).Msg("woo batch create item failed")
			continue
		}
		res.Created++
	}
	for _, it := range resp.Update {
		if len(it.Error) > 0 {
			res.Failed++
			w.log.Warn().Int64("woo_id", it.ID).RawJSON("error", it.Error).Msg("woo batch update item failed")
			continue
		}
		res.Updated++
	}
	w.log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("failed", res.Failed).
		Msg("Woo batch sent")
	return res, nil
}

func (w *Woo) do(req *http.Request, v any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.SetBasicAuth(w.cfg.ConsumerKey, w.cfg.ConsumerSec)

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Endpoint: req.URL.Path, StatusCode: resp.StatusCode, Body: string(msg)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
