package slurm

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultHomePatterns are the locations probed for a user's home directory.
// "{user}" is replaced by the user name and "{initial}" by its first letter.
// A trailing slash only matches directories.
var DefaultHomePatterns = []string{
	"/home/stud/{initial}/{user}",
	"/home/ma/{initial}/{user}",
	"/home/*/{user}/",
}

// DefaultHomeFinder probes DefaultHomePatterns.
var DefaultHomeFinder = NewHomeFinder(DefaultHomePatterns)

// HomeFinder locates home directories by globbing path templates in order.
type HomeFinder struct {
	patterns []string
}

// NewHomeFinder returns a HomeFinder for patterns. An empty list falls back
// to DefaultHomePatterns.
func NewHomeFinder(patterns []string) *HomeFinder {
	if len(patterns) == 0 {
		patterns = DefaultHomePatterns
	}
	return &HomeFinder{patterns: patterns}
}

// Find returns the first existing path matching a pattern for username, or
// "" when there is none.
func (f *HomeFinder) Find(username string) string {
	if username == "" {
		return ""
	}
	r := strings.NewReplacer("{user}", username, "{initial}", username[:1])
	for _, pattern := range f.patterns {
		expanded := r.Replace(pattern)
		dirOnly := strings.HasSuffix(expanded, "/")
		expanded = strings.TrimRight(expanded, "/")
		if expanded == "" {
			continue
		}
		matches, err := filepath.Glob(expanded)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if dirOnly {
				info, err := os.Stat(m)
				if err != nil || !info.IsDir() {
					continue
				}
			}
			return m
		}
	}
	return ""
}
