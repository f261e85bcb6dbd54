// Package logging provides structured logging for the solarplot application.
//
// This package wraps the standard library's log/slog package to provide
// consistent logging across all components. Output goes to stderr so that
// diagnostics never mix with report output on stdout.
//
// Usage:
//
//	// Initialize at startup
//	logging.Init(slog.LevelInfo, logging.FormatAuto)
//
//	// Get a component logger
//	log := logging.Component("ingestion")
//	log.Info("ingestion started", "workers", 4)
//
//	// Log with context
//	log.Warn("malformed line", "file", path, "line", n)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Output formats accepted by Init.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Logger is the global logger instance.
var Logger *slog.Logger

// Init initializes the global logger with the specified level and format,
// writing to stderr. FormatAuto picks colored text for a terminal and JSON
// otherwise.
func Init(level slog.Level, format string) {
	if format == FormatAuto && isTerminal(os.Stderr) {
		InitWithHandler(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			AddSource:  level == slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		}))
		return
	}
	InitWriter(os.Stderr, level, resolveFormat(format, os.Stderr))
}

// InitWriter initializes the global logger on an arbitrary writer.
// This is useful for testing or custom output destinations.
func InitWriter(w io.Writer, level slog.Level, format string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// InitWithHandler initializes the global logger with a custom handler.
func InitWithHandler(handler slog.Handler) {
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func resolveFormat(format string, f *os.File) string {
	switch format {
	case FormatText, FormatJSON:
		return format
	}
	if isTerminal(f) {
		return FormatText
	}
	return FormatJSON
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ParseLevel parses a level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// IsValidFormat reports whether format is accepted by Init.
func IsValidFormat(format string) bool {
	return format == FormatAuto || format == FormatText || format == FormatJSON
}

// With returns a new logger with additional attributes.
// These attributes are included in every log entry from the returned logger.
func With(args ...any) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	return Logger.With(args...)
}

// Component returns a logger for a specific component.
// The component name is added as an attribute to all log entries.
//
// Example:
//
//	log := logging.Component("parser")
//	log.Warn("malformed line") // Output: time=... level=WARN component=parser msg="malformed line"
func Component(name string) *slog.Logger {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	return Logger.With("component", name)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Info logs at info level.
func Info(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	Logger.Info(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	if Logger == nil {
		Init(slog.LevelInfo, FormatText)
	}
	Logger.Error(msg, args...)
}
