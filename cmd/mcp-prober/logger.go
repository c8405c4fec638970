package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogHandler builds the slog handler for the CLI: a styled charmbracelet
// handler for humans, or the stdlib JSON handler when logs are consumed by
// machines.
func newLogHandler(level string, jsonLog bool, w io.Writer) slog.Handler {
	if jsonLog {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	}

	lvl := log.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
