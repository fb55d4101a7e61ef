package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	path := filepath.Join(t.TempDir(), "state", "dlmanage.log")

	logger, cleanup, err := NewLogger("file", "json", path, "debug")
	require.NoError(t, err)
	logger.Debug("running command", "tool", "sacctmgr")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"running command"`)
	assert.Contains(t, string(data), `"tool":"sacctmgr"`)
}

func TestNewLoggerLevelFilters(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	path := filepath.Join(t.TempDir(), "dlmanage.log")

	logger, cleanup, err := NewLogger("file", "text", path, "warn")
	require.NoError(t, err)
	logger.Info("quiet")
	logger.Warn("command failed")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "command failed")
}

func TestNewLoggerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name                            string
		output, format, filename, level string
		contains                        string
	}{
		{"output", "syslog", "text", "", "info", "unsupported log output"},
		{"missing file", "file", "text", "", "info", "no log file"},
		{"format", "stderr", "xml", "", "info", "unsupported log format"},
		{"level", "stderr", "text", "", "trace", "unsupported log level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := NewLogger(tc.output, tc.format, tc.filename, tc.level)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}
