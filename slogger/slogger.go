// Package slogger defines the structured logging interface used across
// the module, with a colored slog implementation for terminals and a
// devnull implementation used as the library default.
package slogger

import (
	"log/slog"
	"strings"
)

// DefaultLogLevel is used when no level is specified.
var DefaultLogLevel = LevelInfo

// Logger is the structured logging interface accepted by the resolver
// and CLI. It is compatible in shape with slog and zerolog wrappers.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	// With returns a Logger that adds the given key-value pairs to
	// every subsequent log entry.
	With(keysAndValues ...any) Logger
}

// LogLevel is the minimum level a logger emits.
type LogLevel slog.Level

const (
	LevelDebug LogLevel = LogLevel(slog.LevelDebug)
	LevelInfo  LogLevel = LogLevel(slog.LevelInfo)
	LevelWarn  LogLevel = LogLevel(slog.LevelWarn)
	LevelError LogLevel = LogLevel(slog.LevelError)
)

// LevelFromString converts a level name to a LogLevel, falling back to
// the default for unrecognized values.
func LevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return DefaultLogLevel
	}
}

// DevNull discards everything. It is the default logger so that library
// consumers opt in to output rather than opting out.
type DevNull struct{}

// NewDevNullLogger creates a Logger that discards all entries.
func NewDevNullLogger() *DevNull { return &DevNull{} }

func (l *DevNull) Debug(msg string, keysAndValues ...any) {}
func (l *DevNull) Info(msg string, keysAndValues ...any)  {}
func (l *DevNull) Warn(msg string, keysAndValues ...any)  {}
func (l *DevNull) Error(msg string, keysAndValues ...any) {}
func (l *DevNull) With(keysAndValues ...any) Logger       { return l }
