package logger

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// New builds the process logger: human-readable text on stdout at the
// configured level, and JSON on stderr for errors only.
func New(level string, stdout, stderr io.Writer) *slog.Logger {
	textHandler := slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	jsonHandler := slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
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
