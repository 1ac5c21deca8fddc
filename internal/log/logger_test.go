package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestCore_SplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	core := newCore(newEncoder("json"), zapcore.InfoLevel, zapcore.AddSync(&stdout), zapcore.AddSync(&stderr))
	logger := zap.New(core)

	logger.Debug("hidden")
	logger.Info("credential validated", zap.String("code", "trial"))
	logger.Warn("provider slow")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "credential validated", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "trial", entry["code"])

	assert.Contains(t, stderr.String(), `"message":"provider slow"`)
	assert.NotContains(t, stdout.String(), "provider slow")
}

func TestNewEncoder_Console(t *testing.T) {
	var out bytes.Buffer
	logger := zap.New(newCore(newEncoder("console"), zapcore.InfoLevel, zapcore.AddSync(&out), zapcore.AddSync(&out)))
	logger.Info("hello")
	assert.False(t, json.Valid(bytes.TrimSpace(out.Bytes())))
	assert.Contains(t, out.String(), "hello")
}
