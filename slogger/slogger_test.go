package slogger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLogLevel},
		{"", DefaultLogLevel},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, LevelFromString(tt.input), "level %q", tt.input)
	}
}

func TestDevNullImplementsLogger(t *testing.T) {
	var logger Logger = NewDevNullLogger()
	logger.Debug("ignored", "k", "v")
	child := logger.With("component", "test")
	require.NotNil(t, child)
	child.Error("also ignored")
}

func TestSloggerWith(t *testing.T) {
	logger := New(LevelError)
	child := logger.With("component", "resolver")
	require.NotNil(t, child)
	require.NotSame(t, Logger(logger), child)
}
