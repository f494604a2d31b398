package orchestrator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"landingmig/internal/audit"
	"landingmig/internal/classifier"
)

// Summary contains statistics from a migration.
type Summary struct {
	TotalFiles  int // Files found below the source root
	Copied      int
	Skipped     int
	BytesCopied int64
	Results     []Result
	Duration    time.Duration
	ByCategory  map[string]int                // Copies per category slug
	ByReason    map[classifier.SkipReason]int // Skips per reason
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{
		Results:    []Result{},
		ByCategory: map[string]int{},
		ByReason:   map[classifier.SkipReason]int{},
	}
}

// Add records the result of one file.
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
	if r.Copied {
		s.Copied++
		s.BytesCopied += r.Bytes
		s.ByCategory[r.Category]++
		return
	}
	s.Skipped++
	s.ByReason[r.Reason]++
}

// Processed returns the number of files handled so far.
func (s *Summary) Processed() int {
	return s.Copied + s.Skipped
}

// AuditSummary converts the summary for the RUN_END event. A non-nil runErr
// counts as one error.
func (s *Summary) AuditSummary(runErr error) audit.RunSummary {
	errs := 0
	if runErr != nil {
		errs = 1
	}
	return audit.RunSummary{
		TotalFiles:  s.TotalFiles,
		Copied:      s.Copied,
		Skipped:     s.Skipped,
		Errors:      errs,
		BytesCopied: s.BytesCopied,
	}
}

// PrintSummary returns the one-line summary, e.g.
// "Copied 3 of 5 files (1.2 kB), 2 skipped in 15ms".
func (s *Summary) PrintSummary() string {
	return fmt.Sprintf("Copied %s of %s files (%s), %s skipped in %s",
		humanize.Comma(int64(s.Copied)),
		humanize.Comma(int64(s.TotalFiles)),
		humanize.Bytes(uint64(s.BytesCopied)),
		humanize.Comma(int64(s.Skipped)),
		s.Duration.Round(time.Millisecond))
}

// Breakdown returns per-category copy counts and per-reason skip counts,
// one per line, sorted by name.
func (s *Summary) Breakdown() string {
	var b strings.Builder

	categories := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "  %s: %d\n", c, s.ByCategory[c])
	}

	reasons := make([]string, 0, len(s.ByReason))
	for r := range s.ByReason {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(&b, "  skipped %s: %d\n", r, s.ByReason[classifier.SkipReason(r)])
	}

	return strings.TrimSuffix(b.String(), "\n")
}
