package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the root structured logger. Level is one of debug, info, warn,
// error (case-insensitive); anything else falls back to info. Output is JSON
// on stdout so journal collectors can index fields.
func New(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
