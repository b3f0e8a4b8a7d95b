// internal/integrations/types.go
package integrations

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/rs/zerolog"
)

var (
	ErrNoOfferSource = errors.New("brak integracji dostarczającej feed (OfferSource)")
	ErrNoStorefront  = errors.New("brak integracji sklepu (Storefront)")
)

type Integration interface {
	Name() string
}

// FeedInfo - metadane pobranego feedu
type FeedInfo struct {
	Source string
	SHA256 string
	Bytes  int64
}

// OfferSource dostarcza oferty dostawcy
type OfferSource interface {
	Integration
	FetchOffers(ctx context.Context) ([]reconcile.SupplierOffer, FeedInfo, error)
}

// BatchResult - ile obiektów sklep faktycznie przyjął
type BatchResult struct {
	Created int
	Updated int
	Failed  int
}

// Storefront to sklep: czytamy katalog i wysyłamy paczki create/update
type Storefront interface {
	Integration
	FetchProducts(ctx context.Context) ([]reconcile.StoreProduct, error)
	SendBatch(ctx context.Context, payload reconcile.BatchPayload) (BatchResult, error)
}

type Factory func(log zerolog.Logger, raw json.RawMessage) (Integration, error)
