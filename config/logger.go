package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a JSON logger in release mode and a text logger
// otherwise.
func NewLogger(w io.Writer, ginMode, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(level)}
	if ginMode == "release" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func ParseLogLevel(level string) slog.Level {
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
