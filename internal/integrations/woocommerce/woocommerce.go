// internal/integrations/woocommerce/woocommerce.go
package woocommerce

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bartek5186/supplier2woo/internal/integrations"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Woo przyjmuje max 100 obiektów na /products/batch
const MaxBatch = 100

type Config struct {
	BaseURL     string `json:"base_url" validate:"required,url"` // https://shop.example.com
	ConsumerKey string `json:"consumer_key" validate:"required"`
	ConsumerSec string `json:"consumer_secret" validate:"required"`
	PerPage     int    `json:"per_page" validate:"gte=0,lte=100"`
	TimeoutSec  int    `json:"timeout_sec" validate:"gte=0"`
	Fields      string `json:"fields"` // _fields przy pobieraniu produktów
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://example.com",
		ConsumerKey: "ck_xxx",
		ConsumerSec: "cs_xxx",
		PerPage:     100,
		TimeoutSec:  30,
		Fields:      "id,sku,name,regular_price,stock_status",
	}
}

type Woo struct {
	log  zerolog.Logger
	cfg  Config
	http *http.Client
}

// New buduje klienta; brakujące wartości uzupełnia domyślnymi
func New(log zerolog.Logger, cfg Config) *Woo {
	def := DefaultConfig()
	if cfg.PerPage <= 0 {
		cfg.PerPage = def.PerPage
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = def.TimeoutSec
	}
	if cfg.Fields == "" {
		cfg.Fields = def.Fields
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Woo{
		log:  log,
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}
}

func (w *Woo) Name() string { return "woocommerce" }

var validate = validator.New()

func factory(log zerolog.Logger, raw json.RawMessage) (integrations.Integration, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("woocommerce config: %w", err)
	}
	return New(log, cfg), nil
}

func init() {
	integrations.Register("woocommerce", factory)
}
