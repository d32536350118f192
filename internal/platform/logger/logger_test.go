package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskmanager-api/internal/config"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetupWithWriter(t *testing.T) {
	restoreDefault(t)

	buf := &logger.TestLogBuffer{}
	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "info", Port: 8080}, buf)

	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Same(t, log, slog.Default(), "Setup should install the logger as the default")

	log.Debug("hidden")
	log.Info("visible", "key", "value")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1, "debug records should be filtered at info level")
	assert.Equal(t, "visible", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
}

func TestInvalidLogLevelParsing(t *testing.T) {
	restoreDefault(t)

	buf := &logger.TestLogBuffer{}
	log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "invalid_level"}, buf)
	require.NoError(t, err)

	log.Info("after setup")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "invalid_level", entries[0]["configured_level"])
	assert.Equal(t, "after setup", entries[1]["msg"])
}

func TestValidLogLevelParsing(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := logger.ParseLevel(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	ctxLogger, _ := logger.NewTestLogger(t)
	fallback, _ := logger.NewTestLogger(t)

	t.Run("logger in context", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), ctxLogger)
		assert.Same(t, ctxLogger, logger.FromContextOrDefault(ctx, fallback))
	})

	t.Run("no logger in context", func(t *testing.T) {
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("nil default falls back to slog default", func(t *testing.T) {
		assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	})

	t.Run("FromContext", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), ctxLogger)
		assert.Same(t, ctxLogger, logger.FromContext(ctx))
	})
}
