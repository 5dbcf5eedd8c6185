// Package logging provides the slog.Logger factory shared by the repocat
// command and the mock GitHub server.
//
// Format is either "json" (default, for log aggregators) or "text"
// (human-readable key=value pairs). Level is one of debug, info, warn, error
// and defaults to info.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a stdout logger configured from the LOG_FORMAT and LOG_LEVEL
// environment variables. Long-running servers use this.
func New() *slog.Logger {
	return NewWith(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
}

// NewWith returns a logger writing to w with an explicit format and level.
// The CLI passes os.Stderr so that stdout is never mixed with log lines.
func NewWith(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "console":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
