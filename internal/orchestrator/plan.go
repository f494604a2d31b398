package orchestrator

import (
	"fmt"
	"sort"

	"landingmig/internal/classifier"
	"landingmig/internal/config"
)

// PlannedCopy is one copy a run would perform.
type PlannedCopy struct {
	SourcePath      string
	DestinationPath string
	Category        string
}

// SkippedFile is a file a run would not copy.
type SkippedFile struct {
	Path   string
	Reason classifier.SkipReason
}

// Collision lists sources that map to the same destination. In a real run
// the last source wins.
type Collision struct {
	DestinationPath string
	Sources         []string
}

// PlanResult describes what Run would do without doing it.
type PlanResult struct {
	ByCategory map[string][]PlannedCopy
	Skipped    []SkippedFile
	Collisions []Collision
	Total      int // Number of planned copies
}

// Plan scans and classifies like Run but never touches the destination.
// With the "error" empty slug policy it fails with ErrEmptySlug where Run
// would, returning what was planned up to that point.
func (o *Orchestrator) Plan() (*PlanResult, error) {
	result := &PlanResult{
		ByCategory: map[string][]PlannedCopy{},
		Skipped:    []SkippedFile{},
		Collisions: []Collision{},
	}

	entries, err := o.scan()
	if err != nil {
		return result, err
	}

	sources := map[string][]string{}
	var order []string

	for _, entry := range entries {
		c := classifier.Classify(entry, o.config.Extensions)
		if c.IsSkipped() {
			if c.IsEmptySlug() && o.config.EmptySlugPolicy != config.EmptySlugSkip {
				return result, fmt.Errorf("%w: %s", ErrEmptySlug, entry.Path)
			}
			result.Skipped = append(result.Skipped, SkippedFile{Path: entry.Path, Reason: c.Reason})
			continue
		}

		dst := c.DestinationPath(o.config.DestinationRoot)
		result.ByCategory[c.Category] = append(result.ByCategory[c.Category], PlannedCopy{
			SourcePath:      entry.Path,
			DestinationPath: dst,
			Category:        c.Category,
		})
		result.Total++

		if _, ok := sources[dst]; !ok {
			order = append(order, dst)
		}
		sources[dst] = append(sources[dst], entry.Path)
	}

	for _, dst := range order {
		if len(sources[dst]) > 1 {
			result.Collisions = append(result.Collisions, Collision{DestinationPath: dst, Sources: sources[dst]})
		}
	}

	return result, nil
}

// Categories returns the planned category slugs in sorted order.
func (p *PlanResult) Categories() []string {
	categories := make([]string, 0, len(p.ByCategory))
	for c := range p.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Copies returns every planned copy, grouped by sorted category.
func (p *PlanResult) Copies() []PlannedCopy {
	copies := make([]PlannedCopy, 0, p.Total)
	for _, c := range p.Categories() {
		copies = append(copies, p.ByCategory[c]...)
	}
	return copies
}
