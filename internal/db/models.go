// internal/db/models.go
package db

import "time"

// Statusy przebiegu (feed_runs.status)
const (
	RunPending = 0
	RunDone    = 1
	RunError   = 2
)

// Statusy zadań (woo_tasks.status)
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskError   = "error"
)

// TaskKindBatch - jedna paczka /products/batch
const TaskKindBatch = "products.batch"

// woo_products_cache - migawka sklepu z ostatniego przebiegu
type WooProductCache struct {
	WooID        int64  `gorm:"primaryKey;autoIncrement:false"`
	SKU          string `gorm:"index"`
	Name         string
	RegularPrice string
	StockStatus  string    `gorm:"index"`
	SyncedAt     time.Time `gorm:"index"`
}

// feed_runs - jeden wiersz na cykl synchronizacji
type FeedRun struct {
	RunID         uint   `gorm:"primaryKey;column:run_id"`
	Source        string
	SHA256        string `gorm:"column:sha256;index"`
	SizeBytes     int64
	Offers        int
	StoreProducts int
	Created       int
	Updated       int
	Failed        int
	DryRun        bool
	Status        int       `gorm:"index"` // 0=pending, 1=done, 2=error
	LastError     string    `gorm:"type:text"`
	StartedAt     time.Time `gorm:"autoCreateTime"`
	FinishedAt    *time.Time
}

// woo_tasks - zrzut paczek wysyłanych do Woo
type WooTask struct {
	TaskID      uint   `gorm:"primaryKey;column:task_id"`
	RunID       uint   `gorm:"index:idx_task_run_seq,priority:1"`
	Seq         int    `gorm:"index:idx_task_run_seq,priority:2"`
	Kind        string `gorm:"index"`
	Items       int
	PayloadJSON string    `gorm:"type:text"`
	Status      string    `gorm:"index;default:pending"` // pending/done/error
	LastError   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	DoneAt      *time.Time
}

type KV struct {
	K string `gorm:"primaryKey"`
	V string
}

// Klucze KV
const (
	KeyLastSyncAt  = "last_sync_at"
	KeyLastFeedSHA = "last_feed_sha256"
)
