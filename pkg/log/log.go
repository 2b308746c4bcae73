// Package log provides slog construction and the attribute helpers used by
// statetable components
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New constructs a slog.Logger writing to stdout at info level
func New(service, format string) *slog.Logger {
	return NewWithLevel(os.Stdout, service, format, slog.LevelInfo)
}

// NewWithLevel constructs a slog.Logger writing to w at the provided level.
// Unknown formats fall back to JSON
func NewWithLevel(
	w io.Writer, service, format string, lvl slog.Level,
) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(format, FormatText) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if service != "" {
		logger = logger.With(slog.String("service", service))
	}
	return logger
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(name string) (slog.Level, bool) {
	lvl, ok := levels[strings.ToLower(name)]
	if !ok {
		return slog.LevelInfo, false
	}
	return lvl, true
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
