// Package logging builds the process logger.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// New returns a text slog logger at level writing to w (stdout when nil).
// The stdlib log package is redirected to the same writer so older call sites line up.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	log.SetOutput(w)
	return slog.New(h)
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
