// Package logging builds the slog loggers used by the libdoc commands.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// BuildLogger returns a text logger writing to stderr at the named level.
// Unknown level names fall back to info.
func BuildLogger(level string) *slog.Logger {
	l, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
