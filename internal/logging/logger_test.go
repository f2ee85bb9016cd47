package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "debug", level: "debug", want: zerolog.DebugLevel},
		{name: "upper case", level: "WARN", want: zerolog.WarnLevel},
		{name: "empty defaults to info", level: "", want: zerolog.InfoLevel},
		{name: "invalid defaults to info", level: "loud", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLogger(Config{Level: tt.level, Format: FormatJSON})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestTraceHook_AddsTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "info", Format: FormatJSON}, &buf)
	ctx := ContextWithTraceID(context.Background(), "trace-123")

	l.Info().Ctx(ctx).Msg("hello")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "trace-123", event["trace_id"])
	assert.Equal(t, "hello", event["message"])
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := ComponentLogger(newLogger(Config{Format: FormatJSON}, &buf), "session")

	l.Info().Msg("x")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "session", event["component"])
}

func TestGetOrGenerateTraceID(t *testing.T) {
	generated := GetOrGenerateTraceID(context.Background())
	assert.Len(t, generated, 26)

	ctx := ContextWithTraceID(context.Background(), "existing")
	assert.Equal(t, "existing", GetOrGenerateTraceID(ctx))
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "subview.log")
		result := NewLoggerWithPath(Config{Output: OutputFile, File: path, Format: FormatJSON})
		t.Cleanup(func() { _ = result.Close() })

		assert.True(t, result.UsingFile)
		assert.False(t, result.FallbackUsed)
		result.Logger.Info().Msg("written")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written")
	})

	t.Run("stderr when no file", func(t *testing.T) {
		result := NewLoggerWithPath(Config{Output: OutputStderr})
		assert.False(t, result.UsingFile)
		assert.NoError(t, result.Close())
	})

	t.Run("fallback when file cannot be opened", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		result := NewLoggerWithPath(Config{Output: OutputFile, File: filepath.Join(blocker, "x.log")})
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		assert.False(t, result.UsingFile)
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Format: FormatJSON}, &buf)
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("via ctx")
	assert.Contains(t, buf.String(), "via ctx")
}
