package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
}

func TestNewHandler_ProductionAlsoWritesJSON(t *testing.T) {
	var consoleBuf, jsonBuf bytes.Buffer
	logger := slog.New(newHandler(&consoleBuf, &jsonBuf, slog.LevelInfo, "production"))

	logger.Info("session created", "session_id", "abc")
	logger.Debug("dropped")

	assert.Contains(t, consoleBuf.String(), "session created")
	assert.NotContains(t, consoleBuf.String(), "dropped")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &rec))
	assert.Equal(t, "session created", rec["msg"])
	assert.Equal(t, "abc", rec["session_id"])
}

func TestNewHandler_DevelopmentConsoleOnly(t *testing.T) {
	var consoleBuf, jsonBuf bytes.Buffer
	h := newHandler(&consoleBuf, &jsonBuf, slog.LevelDebug, "development")

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	slog.New(h).Debug("verbose detail")

	assert.Contains(t, consoleBuf.String(), "verbose detail")
	assert.Empty(t, jsonBuf.String())
}
