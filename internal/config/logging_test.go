package config

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

func TestDualLoggerFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := newDualLogger(&stderr, &file, slog.LevelInfo)

	logger.Info("index built", "chunks", 42)

	assert.Contains(t, stderr.String(), "index built")
	assert.Contains(t, stderr.String(), "chunks=42")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "index built", record["msg"])
	assert.Equal(t, float64(42), record["chunks"])
}

func TestDualLoggerRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := newDualLogger(&stderr, &file, slog.LevelWarn)

	logger.Info("below threshold")

	assert.Empty(t, stderr.String())
	assert.Empty(t, file.String())
}

func TestSetupLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "docchat.log")

	logger, closeLog := SetupLogger(logFile, slog.LevelInfo)
	logger.Info("startup")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "startup")
}
