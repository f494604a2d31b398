package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns patterns for partial downloads, editor swap
// files and lock files that appear while images are being saved.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.partial",
		"*.download",
		"*.crdownload",
		"*.swp",
		".~*",
		"~$*",
	}
}

// FileFilter decides which paths the watcher ignores.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a FileFilter. Nil or empty patterns select
// DefaultIgnorePatterns.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return &FileFilter{patterns: lower}
}

// ShouldIgnore reports whether the base name of path matches any pattern
// (filepath.Match glob syntax, case-insensitive).
func (f *FileFilter) ShouldIgnore(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the lowercased patterns.
func (f *FileFilter) Patterns() []string {
	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}
