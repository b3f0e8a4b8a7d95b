// internal/integrations/yml/yml.go
package yml

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bartek5186/supplier2woo/internal/integrations"
	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Skąd brać SKU oferty
const (
	SKUFromVendorCode = "vendorCode"
	SKUFromID         = "id"
)

type Config struct {
	Source     string `json:"source" validate:"required"` // URL http(s), plik albo katalog z feedami
	Pattern    string `json:"pattern,omitempty"`          // dla katalogu: maska plików, domyślnie *.xml
	SKUFrom    string `json:"sku_from" validate:"omitempty,oneof=vendorCode id"`
	TimeoutSec int    `json:"timeout_sec" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		Source:     "https://supplier.example.com/feed.xml",
		SKUFrom:    SKUFromVendorCode,
		Pattern:    "*.xml",
		TimeoutSec: 120,
	}
}

// Feed czyta feed YML (yml_catalog/shop/offers/offer) z URL-a lub pliku
type Feed struct {
	log  zerolog.Logger
	cfg  Config
	http *http.Client
}

func New(log zerolog.Logger, cfg Config) *Feed {
	if cfg.SKUFrom == "" {
		cfg.SKUFrom = SKUFromVendorCode
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = DefaultConfig().TimeoutSec
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultConfig().Pattern
	}
	return &Feed{
		log:  log,
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}
}

func (f *Feed) Name() string { return "yml" }

// FetchOffers pobiera i parsuje feed; sha256 liczony w locie
func (f *Feed) FetchOffers(ctx context.Context) ([]reconcile.SupplierOffer, integrations.FeedInfo, error) {
	info := integrations.FeedInfo{Source: f.cfg.Source}

	rc, src, err := f.open(ctx)
	if err != nil {
		return nil, info, err
	}
	defer rc.Close()
	info.Source = src

	h := sha256.New()
	cnt := &countingWriter{}
	offers, err := ParseOffers(io.TeeReader(rc, io.MultiWriter(h, cnt)), f.cfg.SKUFrom)
	if err != nil {
		return nil, info, fmt.Errorf("parse feed %s: %w", src, err)
	}
	// doczytaj resztę, żeby hash obejmował cały plik
	if _, err := io.Copy(io.Discard, io.TeeReader(rc, io.MultiWriter(h, cnt))); err != nil {
		return nil, info, fmt.Errorf("read feed %s: %w", src, err)
	}

	info.SHA256 = hex.EncodeToString(h.Sum(nil))
	info.Bytes = cnt.n
	f.log.Info().
		Str("source", src).
		Int("offers", len(offers)).
		Int64("bytes", info.Bytes).
		Msg("supplier feed parsed")
	return offers, info, nil
}

// open zwraca strumień feedu i faktyczne źródło (dla katalogu: wybrany plik)
func (f *Feed) open(ctx context.Context) (io.ReadCloser, string, error) {
	src := strings.TrimSpace(f.cfg.Source)
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		path := expandHome(strings.TrimPrefix(src, "file://"))
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			newest, err := newestFile(path, f.cfg.Pattern)
			if err != nil {
				return nil, src, err
			}
			path = newest
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, src, fmt.Errorf("open feed: %w", err)
		}
		return file, path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, src, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", "supplier2woo 1.0")
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, src, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, src, fmt.Errorf("fetch feed: http %d", resp.StatusCode)
	}
	return resp.Body, src, nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

var validate = validator.New()

func factory(log zerolog.Logger, raw json.RawMessage) (integrations.Integration, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("yml config: %w", err)
	}
	return New(log, cfg), nil
}

func init() {
	integrations.Register("yml", factory)
}
