// internal/db/store.go
package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoRuns = errors.New("brak zapisanych przebiegów")

// PrimeProducts zapisuje migawkę sklepu (upsert po woo_id).
// Wiersze, których nie było w migawce, są usuwane. Zwraca liczbę zapisanych.
func (h *Handle) PrimeProducts(products []reconcile.StoreProduct) (int, error) {
	now := time.Now().UTC()

	rows := make([]WooProductCache, 0, len(products))
	seen := make(map[int64]int, len(products))
	for _, p := range products {
		if p.ID <= 0 {
			continue
		}
		row := WooProductCache{
			WooID:        p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			RegularPrice: p.RegularPrice,
			StockStatus:  p.StockStatus,
			SyncedAt:     now,
		}
		// to samo ID dwa razy w jednym INSERT wywala ON CONFLICT na postgresie
		if i, ok := seen[p.ID]; ok {
			rows[i] = row
			continue
		}
		seen[p.ID] = len(rows)
		rows = append(rows, row)
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "woo_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"sku", "name", "regular_price", "stock_status", "synced_at"}),
			}).CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return deleteMissing(tx, seen)
	})
	if err != nil {
		return 0, fmt.Errorf("prime woo_products_cache: %w", err)
	}
	return len(rows), nil
}

// deleteMissing usuwa z cache produkty spoza migawki. Porównujemy po woo_id,
// nie po synced_at: mysql trzyma datetime(3) i zaokrągla ułamki sekund.
func deleteMissing(tx *gorm.DB, keep map[int64]int) error {
	var ids []int64
	if err := tx.Model(&WooProductCache{}).Pluck("woo_id", &ids).Error; err != nil {
		return err
	}
	stale := make([]int64, 0)
	for _, id := range ids {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	// paczkami, limit zmiennych w sqlite
	for len(stale) > 0 {
		n := min(len(stale), 500)
		if err := tx.Where("woo_id IN ?", stale[:n]).Delete(&WooProductCache{}).Error; err != nil {
			return err
		}
		stale = stale[n:]
	}
	return nil
}

// CachedProducts zwraca migawkę sklepu z ostatniego PrimeProducts
func (h *Handle) CachedProducts() ([]reconcile.StoreProduct, error) {
	var rows []WooProductCache
	if err := h.DB.Order("woo_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.StoreProduct, 0, len(rows))
	for _, r := range rows {
		out = append(out, reconcile.StoreProduct{
			ID:           r.WooID,
			SKU:          r.SKU,
			Name:         r.Name,
			RegularPrice: r.RegularPrice,
			StockStatus:  r.StockStatus,
		})
	}
	return out, nil
}

// StartRun zakłada przebieg w statusie pending
func (h *Handle) StartRun(source string, dryRun bool) (*FeedRun, error) {
	run := &FeedRun{Source: source, DryRun: dryRun, Status: RunPending}
	if err := h.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	return run, nil
}

// RunStats - liczniki zapisywane przy zamknięciu przebiegu
type RunStats struct {
	Source        string
	SHA256        string
	SizeBytes     int64
	Offers        int
	StoreProducts int
	Created       int
	Updated       int
	Failed        int
}

func (h *Handle) FinishRun(runID uint, st RunStats) error {
	now := time.Now().UTC()
	upd := map[string]any{
		"sha256":         st.SHA256,
		"size_bytes":     st.SizeBytes,
		"offers":         st.Offers,
		"store_products": st.StoreProducts,
		"created":        st.Created,
		"updated":        st.Updated,
		"failed":         st.Failed,
		"status":         RunDone,
		"last_error":     "",
		"finished_at":    &now,
	}
	if st.Source != "" {
		upd["source"] = st.Source
	}
	return h.DB.Model(&FeedRun{}).Where("run_id = ?", runID).Updates(upd).Error
}

func (h *Handle) FailRun(runID uint, cause error) error {
	now := time.Now().UTC()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return h.DB.Model(&FeedRun{}).Where("run_id = ?", runID).Updates(map[string]any{
		"status":      RunError,
		"last_error":  msg,
		"finished_at": &now,
	}).Error
}

// LastRun zwraca najnowszy przebieg albo ErrNoRuns
func (h *Handle) LastRun() (*FeedRun, error) {
	var run FeedRun
	err := h.DB.Order("run_id desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// EnqueueBatch zrzuca części paczki jako zadania (kolejność = seq)
func (h *Handle) EnqueueBatch(runID uint, chunks []reconcile.BatchPayload) ([]WooTask, error) {
	tasks := make([]WooTask, 0, len(chunks))
	for i, c := range chunks {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal chunk %d: %w", i, err)
		}
		tasks = append(tasks, WooTask{
			RunID:       runID,
			Seq:         i,
			Kind:        TaskKindBatch,
			Items:       c.Len(),
			PayloadJSON: string(raw),
			Status:      TaskPending,
		})
	}
	if len(tasks) == 0 {
		return tasks, nil
	}
	if err := h.DB.Create(&tasks).Error; err != nil {
		return nil, fmt.Errorf("enqueue batch: %w", err)
	}
	return tasks, nil
}

// MarkTask: nil = done, inaczej error z treścią błędu
func (h *Handle) MarkTask(taskID uint, cause error) error {
	now := time.Now().UTC()
	upd := map[string]any{
		"status":     TaskDone,
		"last_error": "",
		"done_at":    &now,
	}
	if cause != nil {
		upd["status"] = TaskError
		upd["last_error"] = cause.Error()
	}
	return h.DB.Model(&WooTask{}).Where("task_id = ?", taskID).Updates(upd).Error
}

// PendingTasks - niewysłane zadania przebiegu, po kolei
func (h *Handle) PendingTasks(runID uint) ([]WooTask, error) {
	var out []WooTask
	err := h.DB.
		Where("run_id = ? AND status = ?", runID, TaskPending).
		Order("seq").
		Find(&out).Error
	return out, err
}

// Payload dekoduje zrzuconą paczkę
func (t WooTask) Payload() (reconcile.BatchPayload, error) {
	var p reconcile.BatchPayload
	if err := json.Unmarshal([]byte(t.PayloadJSON), &p); err != nil {
		return p, fmt.Errorf("task %d: %w", t.TaskID, err)
	}
	return p, nil
}

func (h *Handle) SetKV(k, v string) error {
	return h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&KV{K: k, V: v}).Error
}

// GetKV: brak klucza = ("", false, nil)
func (h *Handle) GetKV(k string) (string, bool, error) {
	var kv KV
	err := h.DB.Where("k = ?", k).First(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return kv.V, true, nil
}
