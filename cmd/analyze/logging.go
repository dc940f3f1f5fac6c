package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const logFileName = "analyze.log"

func parseLevel(level string, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// newLogger writes to <dir>/analyze.log since the terminal belongs to the UI.
// The returned closer must be called on exit.
func newLogger(dir, level string, debug bool) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	logger := zerolog.New(f).
		Level(parseLevel(level, debug)).
		With().
		Timestamp().
		Logger()
	return logger, f, nil
}
