// internal/app/app.go
package app

import (
	"fmt"
	"os"
	"path/filepath"

	conf "github.com/bartek5186/supplier2woo/internal/config"
	"github.com/bartek5186/supplier2woo/internal/db"
	"github.com/bartek5186/supplier2woo/internal/logs"
	"github.com/bartek5186/supplier2woo/internal/syncer"
	"github.com/rs/zerolog"
)

const Name = "supplier2woo"

// App - wszystko, czego potrzebuje CLI i tray: katalog, logger, config, baza, syncer
type App struct {
	Dir      string
	CfgPath  string
	LogPath  string
	FirstRun bool

	Log    zerolog.Logger
	Cfg    *conf.Config
	DB     *db.Handle
	Syncer *syncer.Syncer
}

// DefaultDir - katalog danych aplikacji (logi, config, baza sqlite)
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, Name), nil
}

// Open składa aplikację w katalogu dir (pusty = DefaultDir)
func Open(dir string, withConsole bool) (*App, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("katalog aplikacji: %w", err)
	}

	a := &App{
		Dir:     dir,
		CfgPath: filepath.Join(dir, "config.json"),
		LogPath: filepath.Join(dir, "app.log"),
	}
	a.Log = logs.New(a.LogPath, withConsole, "info")

	cfg, firstRun, err := conf.LoadOrCreate(a.CfgPath)
	if err != nil {
		return nil, err
	}
	a.Cfg, a.FirstRun = cfg, firstRun
	if firstRun {
		a.Log.Info().Str("path", a.CfgPath).Msg("Utworzono domyślną konfigurację")
	}
	a.Log = a.Log.Level(logs.ParseLevel(cfg.LogLevel))

	dbh, err := db.OpenAt(a.Log, dir, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("DB open error: %w", err)
	}
	if err := dbh.Migrate(); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("DB migrate error: %w", err)
	}
	a.DB = dbh
	a.Log.Info().Str("driver", dbh.Driver).Str("db", dbh.Path).Msg("DB ready")

	a.Syncer = syncer.New(a.Log, cfg, dbh)
	return a, nil
}

// Reload wczytuje config ponownie i przekazuje go syncerowi.
// Zmiana storage wymaga restartu aplikacji.
func (a *App) Reload() error {
	cfg, _, err := conf.LoadOrCreate(a.CfgPath)
	if err != nil {
		return err
	}
	if cfg.Storage != a.Cfg.Storage {
		a.Log.Warn().Msg("Zmiana storage zadziała dopiero po restarcie")
	}
	a.Cfg = cfg
	a.Log = a.Log.Level(logs.ParseLevel(cfg.LogLevel))
	a.Syncer.UpdateConfig(cfg)
	a.Log.Info().Msg("Konfiguracja przeładowana")
	return nil
}

func (a *App) Close() error {
	a.Syncer.Stop()
	return a.DB.Close()
}
