package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		logger := slog.New(newLogHandler(&out, HandlerTypeJSON, LogLevelWarn))
		logger.Info("dropped")
		logger.Warn("kept", "key", "k1")

		var record map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &record))
		assert.Equal(t, "kept", record["msg"])
		assert.Equal(t, "k1", record["key"])
	})
	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		logger := slog.New(newLogHandler(&out, HandlerTypeText, LogLevelDebug))
		logger.Debug("hello")
		assert.Contains(t, out.String(), "msg=hello")
	})
}

func TestParseLogLevel(t *testing.T) {
	for level, expected := range map[LogLevel]slog.Level{
		LogLevelDebug: slog.LevelDebug,
		LogLevelInfo:  slog.LevelInfo,
		LogLevelWarn:  slog.LevelWarn,
		LogLevelError: slog.LevelError,
	} {
		assert.Equal(t, expected, parseLogLevel(level))
	}
	handler := newLogHandler(&bytes.Buffer{}, HandlerTypeText, LogLevelError)
	assert.False(t, handler.Enabled(context.Background(), slog.LevelWarn))
}
