package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l := New(path, false, "debug")
	l.Debug().Str("sku", "A1").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sku":"A1"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestEventSink(t *testing.T) {
	buf := &bytes.Buffer{}
	l := zerolog.New(buf).Level(zerolog.DebugLevel)

	s := EventSink(l)
	s.Record(reconcile.LevelWarn, reconcile.EventDuplicateSKU, map[string]any{"sku": "X"})
	s.Record(reconcile.LevelInfo, reconcile.EventNewItem, map[string]any{"sku": "Y"})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"duplicate_sku"`)
	assert.Contains(t, out, `"component":"reconcile"`)
	assert.Contains(t, out, `"sku":"Y"`)
}
