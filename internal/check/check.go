// Package check reports product images referenced by a slug mapping that are
// missing from an images directory.
package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"landingmig/internal/config"
)

// Missing is a mapping entry whose image does not exist.
type Missing struct {
	Slug  string
	Image string
	Path  string // Full path that was looked up
}

func (m Missing) String() string {
	return fmt.Sprintf("%s (for %s)", m.Image, m.Slug)
}

// Report is the outcome of a check.
type Report struct {
	Checked int
	Missing []Missing
}

// OK reports whether every referenced image exists.
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// LoadMapping reads a slug to image mapping from a JSON or YAML file.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	mapping := map[string]string{}
	if err := config.Unmarshal(path, data, &mapping); err != nil {
		return nil, fmt.Errorf("invalid mapping %s: %w", path, err)
	}
	return mapping, nil
}

// Run looks up every image of mapping below imagesDir. Image values may be
// bare file names or slash separated paths such as landing/cat/file.jpg.
// Missing entries are sorted by slug.
func Run(mapping map[string]string, imagesDir string) (*Report, error) {
	info, err := os.Stat(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("images directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("images directory %s is not a directory", imagesDir)
	}

	slugs := make([]string, 0, len(mapping))
	for slug := range mapping {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	report := &Report{Missing: []Missing{}}
	for _, slug := range slugs {
		img := mapping[slug]
		p := filepath.Join(imagesDir, filepath.FromSlash(img))
		report.Checked++

		_, err := os.Stat(p)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			report.Missing = append(report.Missing, Missing{Slug: slug, Image: img, Path: p})
		default:
			return report, fmt.Errorf("failed to check %s: %w", p, err)
		}
	}
	return report, nil
}
