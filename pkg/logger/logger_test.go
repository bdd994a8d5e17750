package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, level, err := New(Config{Level: "debug", Format: "json", OutputPaths: []string{path}})
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	log.Debug("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	_, level, err := New(Config{Level: "loud", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level.Level())

	level.SetLevel(zapcore.WarnLevel)
	assert.False(t, level.Enabled(zapcore.InfoLevel))
}
