package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewJSONHandler writes JSON records at or above level to w.
func NewJSONHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs a JSON stdout logger as the slog default and returns its
// handler so it can later be combined with the database sink.
func Setup(level string) slog.Handler {
	h := NewJSONHandler(os.Stdout, ParseLevel(level))
	slog.SetDefault(slog.New(h))
	return h
}
