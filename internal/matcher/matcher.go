// Package matcher matches filenames against the configured image extensions.
package matcher

import (
	"sort"
	"strings"
)

// MatchResult represents the result of matching a filename against extensions.
type MatchResult struct {
	Matched   bool
	Extension string // The configured extension that matched, lowercase
	Stem      string // Filename without the matched extension, original casing
}

// Match evaluates a filename against extensions using case-insensitive
// suffix matching. The longest matching extension wins, so ".tar.gz" beats
// ".gz" when both are configured.
func Match(filename string, extensions []string) *MatchResult {
	if len(extensions) == 0 {
		return &MatchResult{Matched: false}
	}

	sorted := make([]string, len(extensions))
	copy(sorted, extensions)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	for _, ext := range sorted {
		n := len(ext)
		if n == 0 || len(filename) < n {
			continue
		}
		if !strings.EqualFold(filename[len(filename)-n:], ext) {
			continue
		}
		return &MatchResult{
			Matched:   true,
			Extension: strings.ToLower(ext),
			Stem:      filename[:len(filename)-n],
		}
	}

	return &MatchResult{Matched: false}
}
