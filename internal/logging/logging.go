// Package logging provides structured logging using Go's slog package.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Default: JSON on stderr at Info, so CLI output on stdout stays clean.
	InitLogger(LevelInfo, FormatJSON)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// Level. Unknown strings map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat maps "text" to FormatText and anything else to FormatJSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "text") {
		return FormatText
	}
	return FormatJSON
}

// InitLogger initializes the global logger on stderr with the specified level and format.
func InitLogger(level Level, format Format) {
	InitLoggerWithWriter(os.Stderr, level, format)
}

// InitLoggerWithWriter initializes the global logger writing to w.
func InitLoggerWithWriter(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// BackendAttempt logs the outcome of trying one backend during dispatch.
// Outcomes include "loaded", "declined" and "error".
func BackendAttempt(location string, index int, kind, outcome string, args ...any) {
	allArgs := []any{
		"location", location,
		"index", index,
		"backend", kind,
		"outcome", outcome,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("backend_attempt", allArgs...)
}

// ModelLoaded logs a successful load.
func ModelLoaded(location, moduleID, backend string, duration time.Duration, args ...any) {
	allArgs := []any{
		"location", location,
		"module_id", moduleID,
		"backend", backend,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("model_loaded", allArgs...)
}

// CacheEvent logs singleton cache activity ("hit", "store", "clear").
func CacheEvent(event, key string, size int, args ...any) {
	allArgs := []any{
		"event", event,
		"key", key,
		"size", size,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("cache_event", allArgs...)
}

// ArchiveExtracted logs an archive extraction.
func ArchiveExtracted(source, destination, format string, entries int, args ...any) {
	allArgs := []any{
		"source", source,
		"destination", destination,
		"format", format,
		"entries", entries,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("archive_extracted", allArgs...)
}
