package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type logRecord struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Run   string `json:"run"`
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	testLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	originalLogger := Logger
	Logger = testLogger
	defer func() { Logger = originalLogger }()

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
	}{
		{name: "Info", fn: Info, level: "INFO"},
		{name: "Error", fn: Error, level: "ERROR"},
		{name: "Warn", fn: Warn, level: "WARN"},
		{name: "Debug", fn: Debug, level: "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message")

			var rec logRecord
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			require.Equal(t, "message", rec.Msg)
			require.Equal(t, tt.level, rec.Level)
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := Logger
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	defer func() { Logger = originalLogger }()

	With("run", "abc").Info("started")

	var rec logRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "abc", rec.Run)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestConfigureFile(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	path := filepath.Join(t.TempDir(), "run.log")
	closer, err := Configure("info", path)
	require.NoError(t, err)

	Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}
