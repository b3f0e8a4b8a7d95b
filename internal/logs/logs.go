package logs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New tworzy logger piszący do pliku (append), opcjonalnie także na konsolę.
// Pusta ścieżka = tylko konsola.
func New(logFilePath string, withConsole bool, level string) zerolog.Logger {
	// Format czasu
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	if logFilePath != "" {
		// Utwórz plik logów (append + tworzenie jeśli brak)
		logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			log.Fatal().Err(err).Msg("Nie można otworzyć pliku log")
		}
		writers = append(writers, logFile)
	}
	if withConsole || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	var writer io.Writer = writers[0]
	if len(writers) > 1 {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	// Logger z timestampem i info o miejscu wywołania
	logger := zerolog.New(writer).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Caller().
		Logger()

	// Ustaw globalny logger
	log.Logger = logger

	return logger
}

// ParseLevel: nieznany/pusty poziom -> info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
