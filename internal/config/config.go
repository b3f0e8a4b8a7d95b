// internal/config/config.go
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartek5186/supplier2woo/internal/integrations/woocommerce"
	"github.com/bartek5186/supplier2woo/internal/integrations/yml"
	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Zmienne środowiskowe nadpisujące sekrety z config.json
const (
	EnvWooKey     = "S2W_WOO_CONSUMER_KEY"
	EnvWooSecret  = "S2W_WOO_CONSUMER_SECRET"
	EnvStorageDSN = "S2W_STORAGE_DSN"
)

// Storage - gdzie trzymamy cache sklepu, przebiegi i zrzuty paczek
type Storage struct {
	Driver string `json:"driver" validate:"oneof=sqlite sqlite3 mysql postgres"`
	DSN    string `json:"dsn,omitempty"` // dla sqlite puste = plik w katalogu aplikacji
}

// Reconcile - reguły dla feedu + kategoria dla nowych produktów
type Reconcile struct {
	reconcile.Rules
	CategoryID int64 `json:"category_id" validate:"gt=0"`
}

// Główny config aplikacji
type Config struct {
	AutoStart           bool                       `json:"auto_start"`
	SyncIntervalSeconds int                        `json:"sync_interval_seconds" validate:"gte=1"`
	DryRun              bool                       `json:"dry_run"` // tylko zrzut paczek, bez wysyłki do Woo
	LogLevel            string                     `json:"log_level,omitempty"`
	Storage             Storage                    `json:"storage"`
	Reconcile           Reconcile                  `json:"reconcile"`
	Integrations        map[string]json.RawMessage `json:"integrations"` // nazwa -> surowy JSON integracji
}

// Default zwraca domyślny config (zapisywany przy pierwszym uruchomieniu)
func Default() *Config {
	rawWoo, _ := json.Marshal(woocommerce.DefaultConfig())
	rawYml, _ := json.Marshal(yml.DefaultConfig())

	return &Config{
		AutoStart:           false,
		SyncIntervalSeconds: 3600,
		DryRun:              true,
		LogLevel:            "info",
		Storage:             Storage{Driver: "sqlite"},
		Reconcile: Reconcile{
			Rules: reconcile.Rules{
				Markup:      0,
				PriceRange:  reconcile.PriceRange{Min: 1, Max: 100000},
				ExcludeSKUs: []string{},
			},
			CategoryID: 15, // "Uncategorized" w świeżym Woo
		},
		Integrations: map[string]json.RawMessage{
			"woocommerce": rawWoo,
			"yml":         rawYml,
		},
	}
}

// LoadOrCreate ładuje config z pliku lub tworzy domyślny.
// Drugi wynik = true, gdy plik został właśnie utworzony.
func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	// .env obok configa jest opcjonalny
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("błąd zapisu domyślnego configa: %w", err)
			}
			if err := cfg.applyEnv(); err != nil {
				return nil, false, err
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("błąd otwierania configa: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("błąd parsowania configa: %w", err)
	}
	if cfg.Integrations == nil {
		cfg.Integrations = map[string]json.RawMessage{}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, false, nil
}

// Save zapisuje config do pliku
func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

var validate = validator.New()

// Validate sprawdza pola z tagami `validate`
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("niepoprawny config: %w", err)
	}
	return nil
}

// Helper do odczytu konkretnej integracji do struktury docelowej
func (c *Config) UnmarshalIntegration(name string, v any) error {
	raw, ok := c.Integrations[name]
	if !ok {
		return fmt.Errorf("brak integracji %q w configu", name)
	}
	return json.Unmarshal(raw, v)
}

// applyEnv nadpisuje sekrety ze zmiennych środowiskowych (lub .env)
func (c *Config) applyEnv() error {
	if dsn := os.Getenv(EnvStorageDSN); dsn != "" {
		c.Storage.DSN = dsn
	}

	patch := map[string]string{}
	if v := os.Getenv(EnvWooKey); v != "" {
		patch["consumer_key"] = v
	}
	if v := os.Getenv(EnvWooSecret); v != "" {
		patch["consumer_secret"] = v
	}
	raw, ok := c.Integrations["woocommerce"]
	if len(patch) == 0 || !ok {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("błąd parsowania integracji woocommerce: %w", err)
	}
	for k, v := range patch {
		m[k] = v
	}
	out, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.Integrations["woocommerce"] = out
	return nil
}
