// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/coban-api/internal/config"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetup covers level parsing and handler selection. It replaces the
// process default logger, so it restores it afterwards and does not run in
// parallel.
func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name       string
		level      string
		format     string
		logDebug   bool
		logInfo    bool
		expectJSON bool
	}{
		{"debug json", "debug", "json", true, true, true},
		{"info json", "info", "json", false, true, true},
		{"upper case level", "WARN", "json", false, false, true},
		{"error text", "error", "text", false, false, false},
		{"invalid level falls back to info", "loud", "json", false, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level, LogFormat: tc.format}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())

			l.Debug("debug message")
			assert.Equal(t, tc.logDebug, strings.Contains(buf.String(), "debug message"))
			l.Info("info message", slog.String("component", "test"))
			assert.Equal(t, tc.logInfo, strings.Contains(buf.String(), "info message"))

			l.Error("error message")
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			last := lines[len(lines)-1]
			var decoded map[string]any
			isJSON := json.Unmarshal([]byte(last), &decoded) == nil
			assert.Equal(t, tc.expectJSON, isJSON)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, ok := logger.ParseLevel("Debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)

	level, ok = logger.ParseLevel("")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := slog.New(slog.NewTextHandler(io.Discard, nil)).With("trace_id", "abc")

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
	assert.NotNil(t, logger.FromContext(context.Background()))

	ctx := logger.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logger.FromContext(ctx))
	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
}
