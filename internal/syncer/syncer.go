// internal/syncer/syncer.go
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	conf "github.com/bartek5186/supplier2woo/internal/config"
	"github.com/bartek5186/supplier2woo/internal/db"
	"github.com/bartek5186/supplier2woo/internal/integrations"
	"github.com/bartek5186/supplier2woo/internal/integrations/woocommerce" // rejestracja + MaxBatch
	_ "github.com/bartek5186/supplier2woo/internal/integrations/yml"      // rejestracja
	"github.com/bartek5186/supplier2woo/internal/logs"
	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/rs/zerolog"
)

// ErrBusy - inny cykl właśnie trwa (np. harmonogram + "once")
var (
	ErrBusy     = errors.New("synchronizacja już trwa")
	ErrNoConfig = errors.New("brak configa")
)

type buildFunc func(log zerolog.Logger, cfgs map[string]json.RawMessage) (integrations.Set, error)

type Syncer struct {
	log     zerolog.Logger // logowanie
	db      *db.Handle     // cache sklepu, przebiegi, zadania
	mu      sync.Mutex     // ochrona sekcji krytycznych
	cfg     *conf.Config   // aktualna konfiguracja
	running bool           // czy harmonogram działa
	cancel  context.CancelFunc
	wg      sync.WaitGroup // śledzi goroutines
	ticks   uint64         // licznik cykli z harmonogramu
	cycle   sync.Mutex     // jeden cykl naraz (harmonogram i "once")
	build   buildFunc
}

func New(log zerolog.Logger, cfg *conf.Config, h *db.Handle) *Syncer {
	return &Syncer{log: log, cfg: cfg, db: h, build: integrations.Build}
}

// Report - wynik jednego cyklu
type Report struct {
	RunID   uint                     `json:"run_id"`
	DryRun  bool                     `json:"dry_run"`
	Feed    integrations.FeedInfo    `json:"feed"`
	Summary reconcile.Summary        `json:"summary"`
	Tasks   int                      `json:"tasks"`
	Sent    integrations.BatchResult `json:"sent"`
}

func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.ticks = 0
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval()).Msg("Syncer: start")
	go s.loop(ctx)
	return nil
}

func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("Syncer: stop")
}

func (s *Syncer) UpdateConfig(cfg *conf.Config) {
	s.mu.Lock()
	s.cfg = cfg
	isRunning := s.running
	s.mu.Unlock()

	s.log.Info().Msg("Syncer: config zaktualizowany")

	if isRunning {
		// restart harmonogramu, żeby wziął nowy interwał
		s.log.Info().Msg("Syncer: restart po zmianie configu")
		s.Stop()
		_ = s.Start(context.Background())
	}
}

func (s *Syncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks - ile cykli wykonał harmonogram od startu
func (s *Syncer) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Syncer) config() *conf.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Syncer) interval() time.Duration {
	cfg := s.config()
	if cfg != nil && cfg.SyncIntervalSeconds > 0 {
		return time.Duration(cfg.SyncIntervalSeconds) * time.Second
	}
	return time.Hour
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	// pierwszy strzał od razu
	s.tickOnce(ctx)

	cur := s.interval()
	ticker := time.NewTicker(cur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Syncer: koniec pętli")
			return
		case <-ticker.C:
			// jeśli ktoś zmienił interwał w cfg, odśwież ticker
			if next := s.interval(); next != cur {
				cur = next
				ticker.Reset(cur)
			}
			s.tickOnce(ctx)
		}
	}
}

func (s *Syncer) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.ticks++
	n := s.ticks
	s.mu.Unlock()

	rep, err := s.RunOnce(ctx)
	if errors.Is(err, ErrBusy) {
		s.log.Warn().Uint64("tick", n).Msg("Syncer: poprzedni cykl jeszcze trwa, pomijam")
		return
	}
	if err != nil {
		// szczegóły już w logu RunOnce
		return
	}
	s.log.Info().Uint64("tick", n).Uint("run_id", rep.RunID).Msg("Syncer: cykl zakończony")
}

// Plan pobiera feed i sklep, liczy paczkę; nic nie zapisuje ani nie wysyła
func (s *Syncer) Plan(ctx context.Context) (reconcile.Result, error) {
	cfg := s.config()
	if cfg == nil {
		return reconcile.Result{}, ErrNoConfig
	}
	set, err := s.build(s.log, cfg.Integrations)
	if err != nil {
		return reconcile.Result{}, err
	}
	offers, _, err := set.Source.FetchOffers(ctx)
	if err != nil {
		return reconcile.Result{}, &StageError{Stage: StageFeed, Err: err}
	}
	products, err := set.Storefront.FetchProducts(ctx)
	if err != nil {
		return reconcile.Result{}, &StageError{Stage: StageStore, Err: err}
	}
	return s.engine(cfg).Run(products, offers), nil
}

// RunOnce wykonuje jeden pełny cykl: feed -> sklep -> cache -> reconcile -> zadania -> wysyłka
func (s *Syncer) RunOnce(ctx context.Context) (Report, error) {
	if !s.cycle.TryLock() {
		return Report{}, ErrBusy
	}
	defer s.cycle.Unlock()

	cfg := s.config()
	if cfg == nil {
		return Report{}, ErrNoConfig
	}
	set, err := s.build(s.log, cfg.Integrations)
	if err != nil {
		s.log.Error().Err(err).Msg("Syncer: błąd budowania integracji")
		return Report{}, err
	}

	run, err := s.db.StartRun(set.Source.Name(), cfg.DryRun)
	if err != nil {
		return Report{}, err
	}
	l := s.log.With().Uint("run_id", run.RunID).Logger()

	rep, err := s.runCycle(ctx, l, cfg, set, run.RunID)
	if err != nil {
		l.Error().Err(err).Msg("Syncer: cykl nieudany")
		if ferr := s.db.FailRun(run.RunID, err); ferr != nil {
			l.Error().Err(ferr).Msg("Syncer: nie udało się zapisać błędu przebiegu")
		}
		return rep, err
	}
	return rep, nil
}

func (s *Syncer) runCycle(ctx context.Context, l zerolog.Logger, cfg *conf.Config, set integrations.Set, runID uint) (Report, error) {
	rep := Report{RunID: runID, DryRun: cfg.DryRun}

	offers, info, err := set.Source.FetchOffers(ctx)
	if err != nil {
		return rep, &StageError{Stage: StageFeed, Err: err}
	}
	rep.Feed = info
	l.Info().Str("source", info.Source).Int("offers", len(offers)).Int64("bytes", info.Bytes).Msg("Feed pobrany")

	products, err := set.Storefront.FetchProducts(ctx)
	if err != nil {
		return rep, &StageError{Stage: StageStore, Err: err}
	}
	n, err := s.db.PrimeProducts(products)
	if err != nil {
		return rep, &StageError{Stage: StageCache, Err: err}
	}
	l.Info().Int("products", len(products)).Int("cached", n).Msg("Sklep pobrany")

	res := s.engine(cfg).Run(products, offers)
	rep.Summary = res.Summary

	chunks := res.Payload.Chunks(woocommerce.MaxBatch)
	tasks, err := s.db.EnqueueBatch(runID, chunks)
	if err != nil {
		return rep, &StageError{Stage: StageCache, Err: err}
	}
	rep.Tasks = len(tasks)

	if cfg.DryRun {
		l.Info().Int("tasks", len(tasks)).Int("items", res.Payload.Len()).Msg("dry_run: paczki zapisane, bez wysyłki")
	} else {
		for i, t := range tasks {
			br, err := set.Storefront.SendBatch(ctx, chunks[i])
			if merr := s.db.MarkTask(t.TaskID, err); merr != nil {
				l.Error().Err(merr).Uint("task_id", t.TaskID).Msg("Nie udało się oznaczyć zadania")
			}
			if err != nil {
				// pozostałe części zostają jako pending
				return rep, &StageError{Stage: StageSend, Err: err}
			}
			rep.Sent.Created += br.Created
			rep.Sent.Updated += br.Updated
			rep.Sent.Failed += br.Failed
			l.Info().Uint("task_id", t.TaskID).Int("seq", t.Seq).
				Int("created", br.Created).Int("updated", br.Updated).Int("failed", br.Failed).
				Msg("Paczka wysłana")
		}
	}

	stats := db.RunStats{
		Source:        info.Source,
		SHA256:        info.SHA256,
		SizeBytes:     info.Bytes,
		Offers:        len(offers),
		StoreProducts: len(products),
		Created:       rep.Sent.Created,
		Updated:       rep.Sent.Updated,
		Failed:        rep.Sent.Failed,
	}
	if cfg.DryRun {
		stats.Created = res.Summary.Created
		stats.Updated = res.Summary.Updates
	}
	if err := s.db.FinishRun(runID, stats); err != nil {
		return rep, &StageError{Stage: StageCache, Err: err}
	}
	if err := s.db.SetKV(db.KeyLastFeedSHA, info.SHA256); err != nil {
		l.Warn().Err(err).Msg("KV: last_feed_sha256")
	}
	if !cfg.DryRun {
		if err := s.db.SetKV(db.KeyLastSyncAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			l.Warn().Err(err).Msg("KV: last_sync_at")
		}
	}

	l.Info().
		Int("create", res.Summary.Created).
		Int("update", res.Summary.Updates).
		Int("tasks", rep.Tasks).
		Bool("dry_run", cfg.DryRun).
		Msg("Cykl OK")
	return rep, nil
}

func (s *Syncer) engine(cfg *conf.Config) reconcile.Engine {
	return reconcile.Engine{
		Rules:      cfg.Reconcile.Rules,
		CategoryID: cfg.Reconcile.CategoryID,
		Sink:       logs.EventSink(s.log),
	}
}
