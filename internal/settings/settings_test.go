package settings

// settings_test.go: tests for settings loading and defaults.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlmanage/internal/slurm"
)

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

func TestDefaultPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "dlmanage", "settings.yaml"), DefaultPath())
}

func TestDefaultLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "dlmanage", "dlmanage.log"), DefaultLogFile())

	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".local", "state", "dlmanage", "dlmanage.log"), DefaultLogFile())
}

func TestDefaultHomePatternsAreTheLibraryDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, slurm.DefaultHomePatterns, s.HomePatterns)

	s.HomePatterns[0] = "/elsewhere/{user}"
	assert.NotEqual(t, "/elsewhere/{user}", slurm.DefaultHomePatterns[0], "defaults are copied")
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_FileNotExist(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Empty(t, s.Tools.Sacctmgr)
	assert.Len(t, s.HomePatterns, 3)
}

func TestLoad_EmptyPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dlmanage"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dlmanage", "settings.yaml"),
		[]byte("tools:\n  scancel: /opt/slurm/bin/scancel\n"), 0o644))

	s, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "/opt/slurm/bin/scancel", s.Tools.Scancel)
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
tools:
  sacctmgr: /opt/slurm/bin/sacctmgr
home_patterns:
  - /srv/home/{user}
log:
  output: stderr
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/opt/slurm/bin/sacctmgr", s.Tools.Sacctmgr)
	assert.Empty(t, s.Tools.Scontrol)
	assert.Equal(t, []string{"/srv/home/{user}"}, s.HomePatterns)
	assert.Equal(t, "stderr", s.Log.Output)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format, "keys left out keep their default")
}

func TestLoad_EmptyHomePatternsFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("home_patterns: []\nlog:\n  file: \"\"\n"), 0o644))
	t.Setenv("XDG_STATE_HOME", "/var/state")

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, Default().HomePatterns, s.HomePatterns)
	assert.Equal(t, "/var/state/dlmanage/dlmanage.log", s.Log.File)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tbad yaml:"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
