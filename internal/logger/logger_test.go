package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARNING", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestNew_ConsoleText(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()

	log, closer := New(cfg, &buf)
	defer closer.Close()

	log.Debug("hidden")
	log.Info("connected", "addr", "ftp.example.com:21")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=connected")
	assert.Contains(t, out, "addr=ftp.example.com:21")
}

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "DEBUG"
	cfg.ConsoleFormat = "json"

	log, closer := New(cfg, &buf)
	defer closer.Close()

	log.Debug("ftp command", "cmd", "USER alice")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ftp command", entry["msg"])
	assert.Equal(t, "USER alice", entry["cmd"])
}

func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.FileEnabled = true
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "ftplogin.log")

	log, closer := New(cfg, &buf)
	log.With("session", 1).Info("logged in", "user", "alice")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user=alice")
	assert.Contains(t, string(data), "session=1")
	assert.Contains(t, buf.String(), "user=alice")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/tmp/custom.log")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "DEBUG", cfg.Level)
	assert.Equal(t, "json", cfg.ConsoleFormat)
	assert.True(t, cfg.FileEnabled)
	assert.Equal(t, "/tmp/custom.log", cfg.FilePath)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	t.Setenv("LOG_FILE_ENABLED", "maybe")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.False(t, cfg.FileEnabled)
}
