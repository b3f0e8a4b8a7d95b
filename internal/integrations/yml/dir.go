package yml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrNoFeedFile = errors.New("brak pliku feedu w katalogu")

// newestFile wybiera najświeższy plik pasujący do maski (hurtownia wrzuca
// kolejne eksporty do katalogu, bierzemy ostatni)
func newestFile(dir, pattern string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("nie mogę odczytać katalogu %s: %w", dir, err)
	}

	var (
		best    string
		bestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return "", fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue // plik zniknął w trakcie
		}
		// przy tym samym czasie wygrywa nazwa późniejsza alfabetycznie
		if best == "" || fi.ModTime().After(bestMod) || (fi.ModTime().Equal(bestMod) && name > filepath.Base(best)) {
			best, bestMod = filepath.Join(dir, name), fi.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s (%s)", ErrNoFeedFile, dir, pattern)
	}
	return best, nil
}
