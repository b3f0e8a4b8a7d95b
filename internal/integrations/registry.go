// internal/integrations/registry.go
package integrations

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func Get(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

func All() map[string]Factory {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make(map[string]Factory, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Set - zbudowane integracje z configa, rozdzielone wg roli
type Set struct {
	Source     OfferSource
	Storefront Storefront
}

// Build tworzy integracje z mapy nazwa -> surowy JSON.
// Nieznane nazwy są pomijane z ostrzeżeniem, błąd fabryki przerywa budowę.
func Build(log zerolog.Logger, cfgs map[string]json.RawMessage) (Set, error) {
	var set Set

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := Get(name)
		if !ok {
			log.Warn().Str("integration", name).Msg("brak fabryki, pomijam")
			continue
		}
		inst, err := f(log.With().Str("integration", name).Logger(), cfgs[name])
		if err != nil {
			return Set{}, fmt.Errorf("integracja %q: %w", name, err)
		}
		if src, ok := inst.(OfferSource); ok && set.Source == nil {
			set.Source = src
		}
		if sf, ok := inst.(Storefront); ok && set.Storefront == nil {
			set.Storefront = sf
		}
	}

	if set.Source == nil {
		return Set{}, ErrNoOfferSource
	}
	if set.Storefront == nil {
		return Set{}, ErrNoStorefront
	}
	return set, nil
}
