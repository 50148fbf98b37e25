package logger_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/messleave/logger"
)

func TestNewLogLevel(t *testing.T) {
	for _, tc := range []struct {
		val      string
		expected logger.LogLevel
	}{
		{"DEBUG", logger.LogLevelDebug},
		{"INFO", logger.LogLevelInfo},
		{"WARN", logger.LogLevelWarn},
		{"ERROR", logger.LogLevelError},
		{"FATAL", logger.LogLevelFatal},
		{"", logger.LogLevelUnk},
		{"debug", logger.LogLevelUnk},
		{"TRACE", logger.LogLevelUnk},
	} {
		t.Run(tc.val, func(t *testing.T) {
			require.Equal(t, tc.expected, logger.NewLogLevel(tc.val))
		})
	}
}

func TestNew(t *testing.T) {
	// Arrange
	t.Setenv("SENTRY_DSN", "")

	// Act
	l := logger.New()

	// Assert
	require.Equal(t, logger.LogLevelInfo, l.LogLevel())

	// Act
	l = logger.New(logger.WithLevel(logger.LogLevelError))

	// Assert
	require.Equal(t, logger.LogLevelError, l.LogLevel())
}

func TestMessleaveLoggerLevels(t *testing.T) {
	// Arrange
	t.Setenv("SENTRY_DSN", "")

	b := new(bytes.Buffer)
	l := logger.New(
		logger.WithLogger(log.New(b, "", 0)),
		logger.WithLevel(logger.LogLevelWarn),
	)

	// Act - below the configured level
	l.Debug("quiet", nil)
	l.Info("still quiet", nil)

	// Assert
	require.Zero(t, b.Len())

	// Act - at and above the configured level
	l.Warn("warned", nil)
	l.Error("erred", nil)

	// Assert
	out := b.String()
	require.Contains(t, out, "[WARN]")
	require.Contains(t, out, "'warned'")
	require.Contains(t, out, "[ERROR]")
	require.Contains(t, out, "'erred'")
	require.NotContains(t, out, "quiet")
}

func TestMessleaveLoggerLogContext(t *testing.T) {
	// Arrange
	t.Setenv("SENTRY_DSN", "")

	b := new(bytes.Buffer)
	l := logger.New(logger.WithLogger(log.New(b, "", 0)))

	// Act
	l.Info("with context", &logger.LogContext{Data: map[string]any{"key": "value"}})

	// Assert
	require.Contains(t, b.String(), "log_context:")
}
