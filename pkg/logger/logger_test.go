package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-spooler/pkg/settings"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(settings.Logger{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNew_Console(t *testing.T) {
	log, err := New(settings.Logger{LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNew_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spooler.log")

	log, err := New(settings.Logger{LogLevel: "info", FileLogName: path, MaxSize: 1})
	require.NoError(t, err)

	log.Info("print job complete", zap.Int64("printer_id", 2), zap.String("file", "FILE_1_1"))
	log.Debug("dropped")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "print job complete", entry["msg"])
	assert.Equal(t, "FILE_1_1", entry["file"])
	assert.EqualValues(t, 2, entry["printer_id"])
	assert.Contains(t, entry, "time")
}
