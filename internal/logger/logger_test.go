package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogRotation(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "dnatool.log")

	// 1MB is the smallest size lumberjack rotates at.
	err := Init(Options{
		Level: "debug",
		File: FileConfig{
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 1,
		},
	})
	require.NoError(t, err)
	defer Sync()

	longName := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("read DNA %d: %s", i, longName)
	}
	Sync()

	_, err = os.Stat(logFile)
	require.NoError(t, err)

	files, err := os.ReadDir(tempDir)
	require.NoError(t, err)

	var rotated []string
	for _, f := range files {
		if f.Name() != "dnatool.log" && strings.HasPrefix(f.Name(), "dnatool") {
			rotated = append(rotated, f.Name())
		}
	}
	require.NotEmpty(t, rotated, "expected at least one rotated file")
	for _, name := range rotated {
		// dnatool-YYYY-MM-DDTHH-MM-SS.SSS.log
		assert.Contains(t, name, "-20")
	}
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")
			err := Init(Options{
				Level: tt.level,
				File:  FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1},
			})
			require.NoError(t, err)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			require.NoError(t, err)

			for _, exp := range tt.expected {
				assert.Contains(t, string(content), exp)
			}
			for _, exc := range tt.excluded {
				assert.NotContains(t, string(content), exc)
			}
		})
	}
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Format: "json", Console: &buf})
	require.NoError(t, err)

	log.Named("dna").Info("read DNA", zap.String("name", "Ada"), zap.Int("lods", 3))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "read DNA", entry["msg"])
	assert.Equal(t, "dna", entry["logger"])
	assert.Equal(t, "Ada", entry["name"])
	assert.Equal(t, float64(3), entry["lods"])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.ErrorContains(t, err, "unknown log level")

	_, err = New(Options{Format: "xml", Console: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNew_NoSinks(t *testing.T) {
	log, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.NotPanics(t, func() { log.Debug("dropped") })
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/dnatool.log")

	assert.Equal(t, "/tmp/dnatool.log", cfg.Path)
	assert.Equal(t, 50, cfg.MaxSizeMB)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAgeDays)
	assert.True(t, cfg.Compress)
}
