// Package settings loads dlmanage configuration from settings.yaml.
package settings

// settings.go: dlmanage configuration loaded from
// $XDG_CONFIG_HOME/dlmanage/settings.yaml.
//
// Every key is optional. A missing file, or a file that leaves a key out,
// yields the defaults below. Command-line flags are applied on top by the
// caller.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"dlmanage/internal/slurm"
)

const appName = "dlmanage"

// Settings holds dlmanage configuration.
type Settings struct {
	Tools Tools `yaml:"tools"`

	// HomePatterns are the templates probed for a user's home directory.
	// "{user}" and "{initial}" are substituted; a trailing slash matches
	// directories only.
	HomePatterns []string `yaml:"home_patterns"`

	Log Log `yaml:"log"`
}

// Tools holds explicit executable paths. Empty means a PATH lookup.
type Tools struct {
	Sacctmgr string `yaml:"sacctmgr"`
	Scontrol string `yaml:"scontrol"`
	Scancel  string `yaml:"scancel"`
}

// Log configures the process logger.
type Log struct {
	Output string `yaml:"output"` // stderr, stdout or file
	Format string `yaml:"format"` // text or json
	Level  string `yaml:"level"`  // debug, info, warn or error
	File   string `yaml:"file"`
}

// Default returns the settings used when no file exists. The log goes to a
// file because the terminal belongs to the interactive front-end.
func Default() *Settings {
	return &Settings{
		HomePatterns: slices.Clone(slurm.DefaultHomePatterns),
		Log: Log{
			Output: "file",
			Format: "text",
			Level:  "info",
			File:   DefaultLogFile(),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dlmanage/settings.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appName, "settings.yaml")
}

// DefaultLogFile returns $XDG_STATE_HOME/dlmanage/dlmanage.log, falling back
// to ~/.local/state.
func DefaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appName+".log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, appName, appName+".log")
}

// Load reads the settings file at path over the defaults. An empty path
// means DefaultPath. A missing file is not an error.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	if len(s.HomePatterns) == 0 {
		s.HomePatterns = Default().HomePatterns
	}
	if s.Log.Output == "file" && s.Log.File == "" {
		s.Log.File = DefaultLogFile()
	}
	return s, nil
}
