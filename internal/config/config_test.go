package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bartek5186/supplier2woo/internal/integrations/woocommerce"
	"github.com/bartek5186/supplier2woo/internal/integrations/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_FirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, cfg.DryRun)
	assert.FileExists(t, path)

	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cfg.SyncIntervalSeconds, again.SyncIntervalSeconds)
	assert.Equal(t, cfg.Reconcile, again.Reconcile)

	var y yml.Config
	require.NoError(t, again.UnmarshalIntegration("yml", &y))
	assert.Equal(t, yml.SKUFromVendorCode, y.SKUFrom)

	assert.Error(t, again.UnmarshalIntegration("allegro", &y))
}

func TestLoadOrCreate_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, Save(path, Default()))

	t.Setenv(EnvWooKey, "ck_env")
	t.Setenv(EnvStorageDSN, "/tmp/other.db")
	// .env nie nadpisuje już ustawionych zmiennych
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte(EnvWooKey+"=ck_file\n"+EnvWooSecret+"=cs_file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(EnvWooSecret) })

	cfg, _, err := LoadOrCreate(path)
	require.NoError(t, err)

	var wc woocommerce.Config
	require.NoError(t, cfg.UnmarshalIntegration("woocommerce", &wc))
	assert.Equal(t, "ck_env", wc.ConsumerKey)
	assert.Equal(t, "cs_file", wc.ConsumerSec)
	assert.Equal(t, "https://example.com", wc.BaseURL)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DSN)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"negative markup", func(c *Config) { c.Reconcile.Markup = -1 }, false},
		{"min above max", func(c *Config) { c.Reconcile.PriceRange.Min = 50; c.Reconcile.PriceRange.Max = 10 }, false},
		{"zero interval", func(c *Config) { c.SyncIntervalSeconds = 0 }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "oracle" }, false},
		{"no category", func(c *Config) { c.Reconcile.CategoryID = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadOrCreate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sync_interval_seconds":0,"reconcile":{"category_id":1}}`), 0o644))

	_, _, err := LoadOrCreate(path)
	assert.ErrorContains(t, err, "niepoprawny config")

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, _, err = LoadOrCreate(path)
	assert.ErrorContains(t, err, "parsowania")
}
