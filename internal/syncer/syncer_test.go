package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	conf "github.com/bartek5186/supplier2woo/internal/config"
	"github.com/bartek5186/supplier2woo/internal/db"
	"github.com/bartek5186/supplier2woo/internal/integrations"
	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	offers []reconcile.SupplierOffer
	err    error
}

func (f *fakeFeed) Name() string { return "fake-feed" }

func (f *fakeFeed) FetchOffers(context.Context) ([]reconcile.SupplierOffer, integrations.FeedInfo, error) {
	if f.err != nil {
		return nil, integrations.FeedInfo{}, f.err
	}
	return f.offers, integrations.FeedInfo{Source: "mem://feed", SHA256: "deadbeef", Bytes: 42}, nil
}

type fakeShop struct {
	mu       sync.Mutex
	products []reconcile.StoreProduct
	sendErr  error
	sent     []reconcile.BatchPayload
}

func (f *fakeShop) Name() string { return "fake-shop" }

func (f *fakeShop) FetchProducts(context.Context) ([]reconcile.StoreProduct, error) {
	return f.products, nil
}

func (f *fakeShop) SendBatch(_ context.Context, p reconcile.BatchPayload) (integrations.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return integrations.BatchResult{}, f.sendErr
	}
	f.sent = append(f.sent, p)
	return integrations.BatchResult{Created: len(p.Create), Updated: len(p.Update)}, nil
}

func (f *fakeShop) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	s    *Syncer
	db   *db.Handle
	feed *fakeFeed
	shop *fakeShop
}

func newFixture(t *testing.T, dryRun bool) *fixture {
	t.Helper()

	h, err := db.OpenAt(zerolog.Nop(), t.TempDir(), db.DriverSQLite, "")
	require.NoError(t, err)
	require.NoError(t, h.Migrate())
	t.Cleanup(func() { _ = h.Close() })

	cfg := conf.Default()
	cfg.DryRun = dryRun
	cfg.Reconcile.Rules = reconcile.Rules{PriceRange: reconcile.PriceRange{Min: 1, Max: 1000}}
	cfg.Reconcile.CategoryID = 15

	f := &fixture{
		db: h,
		feed: &fakeFeed{offers: []reconcile.SupplierOffer{
			{SKU: "A", Name: "Alfa", Price: 10, Available: true},
			{SKU: "C", Name: "Gamma", Price: 30, Available: true},
		}},
		shop: &fakeShop{products: []reconcile.StoreProduct{
			{ID: 1, SKU: "A", Name: "Alfa", RegularPrice: "10", StockStatus: "instock"},
			{ID: 2, SKU: "B", Name: "Beta", RegularPrice: "20", StockStatus: "instock"},
		}},
	}
	f.s = New(zerolog.Nop(), cfg, h)
	f.s.build = func(zerolog.Logger, map[string]json.RawMessage) (integrations.Set, error) {
		return integrations.Set{Source: f.feed, Storefront: f.shop}, nil
	}
	return f
}

func TestRunOnce_DryRun(t *testing.T) {
	f := newFixture(t, true)

	rep, err := f.s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 1, rep.Summary.Created)
	assert.Equal(t, 1, rep.Summary.Updates)
	assert.Equal(t, 1, rep.Tasks)
	assert.Zero(t, f.shop.sentCount())

	pending, err := f.db.PendingTasks(rep.RunID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	p, err := pending[0].Payload()
	require.NoError(t, err)
	assert.Equal(t, "C", p.Create[0].SKU)
	assert.Equal(t, int64(2), p.Update[0].ID)

	run, err := f.db.LastRun()
	require.NoError(t, err)
	assert.Equal(t, db.RunDone, run.Status)
	assert.Equal(t, "mem://feed", run.Source)
	assert.Equal(t, 1, run.Created)

	sha, ok, err := f.db.GetKV(db.KeyLastFeedSHA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", sha)

	_, ok, err = f.db.GetKV(db.KeyLastSyncAt)
	require.NoError(t, err)
	assert.False(t, ok)

	cached, err := f.db.CachedProducts()
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestRunOnce_Send(t *testing.T) {
	f := newFixture(t, false)

	rep, err := f.s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, f.shop.sentCount())
	assert.Equal(t, integrations.BatchResult{Created: 1, Updated: 1}, rep.Sent)

	pending, err := f.db.PendingTasks(rep.RunID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, ok, err := f.db.GetKV(db.KeyLastSyncAt)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunOnce_SendError(t *testing.T) {
	f := newFixture(t, false)
	f.shop.sendErr = errors.New("woo 401")

	_, err := f.s.RunOnce(context.Background())

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSend, se.Stage)
	assert.ErrorContains(t, err, "woo 401")

	run, err := f.db.LastRun()
	require.NoError(t, err)
	assert.Equal(t, db.RunError, run.Status)
	assert.Contains(t, run.LastError, "woo 401")

	var task db.WooTask
	require.NoError(t, f.db.DB.First(&task, "run_id = ?", run.RunID).Error)
	assert.Equal(t, db.TaskError, task.Status)
}

func TestRunOnce_FeedError(t *testing.T) {
	f := newFixture(t, false)
	f.feed.err = errors.New("http 404")

	_, err := f.s.RunOnce(context.Background())

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageFeed, se.Stage)

	run, err := f.db.LastRun()
	require.NoError(t, err)
	assert.Equal(t, db.RunError, run.Status)
}

func TestRunOnce_Busy(t *testing.T) {
	f := newFixture(t, true)
	f.s.cycle.Lock()
	defer f.s.cycle.Unlock()

	_, err := f.s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
}

func TestRunOnce_NoIntegrations(t *testing.T) {
	f := newFixture(t, true)
	f.s.build = integrations.Build
	f.s.UpdateConfig(&conf.Config{SyncIntervalSeconds: 1})

	_, err := f.s.RunOnce(context.Background())
	assert.ErrorIs(t, err, integrations.ErrNoOfferSource)
}

func TestPlan_NoWrites(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.s.Plan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Payload.Create))
	assert.Equal(t, 1, len(res.Payload.Update))
	assert.Zero(t, f.shop.sentCount())

	_, err = f.db.LastRun()
	assert.ErrorIs(t, err, db.ErrNoRuns)
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.s.Start(context.Background()))
	assert.True(t, f.s.IsRunning())
	// drugi Start nic nie robi
	require.NoError(t, f.s.Start(context.Background()))

	require.Eventually(t, func() bool {
		run, err := f.db.LastRun()
		return err == nil && run.Status == db.RunDone
	}, 5*time.Second, 20*time.Millisecond)

	f.s.Stop()
	assert.False(t, f.s.IsRunning())
	assert.Equal(t, uint64(1), f.s.Ticks())
}
