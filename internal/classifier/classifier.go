// Package classifier decides whether a scanned file is migrated and where it goes.
package classifier

import (
	"path/filepath"

	"landingmig/internal/matcher"
	"landingmig/internal/normalizer"
	"landingmig/internal/scanner"
)

// SkipReason represents why a file is not migrated.
type SkipReason string

const (
	RootFile      SkipReason = "ROOT_FILE"
	NotImage      SkipReason = "NOT_IMAGE"
	EmptyCategory SkipReason = "EMPTY_CATEGORY"
	EmptyFilename SkipReason = "EMPTY_FILENAME"
)

// Classification represents the result of classifying a file.
// It is either ELIGIBLE (with category and filename) or SKIPPED (with reason).
type Classification struct {
	Type        string // "ELIGIBLE" or "SKIPPED"
	RawCategory string // Basename of the containing directory
	Category    string // Slug of RawCategory
	Filename    string // Slug of the file basename
	Reason      SkipReason
}

// Classify determines what happens to a scanned file.
//
// Files without a configured extension are NOT_IMAGE and files directly in
// the source root are ROOT_FILE. Everything else is ELIGIBLE unless the
// category or filename normalizes to an empty slug.
func Classify(entry scanner.FileEntry, extensions []string) *Classification {
	if !matcher.Match(entry.Name, extensions).Matched {
		return &Classification{Type: "SKIPPED", Reason: NotImage}
	}

	if entry.InRoot() {
		return &Classification{Type: "SKIPPED", Reason: RootFile}
	}

	rawCategory := filepath.Base(entry.Dir)
	c := &Classification{
		Type:        "ELIGIBLE",
		RawCategory: rawCategory,
		Category:    normalizer.Normalize(rawCategory),
		Filename:    normalizer.Normalize(entry.Name),
	}

	switch {
	case c.Category == "":
		c.Type = "SKIPPED"
		c.Reason = EmptyCategory
	case c.Filename == "":
		c.Type = "SKIPPED"
		c.Reason = EmptyFilename
	}

	return c
}

// IsEligible returns true if the file should be copied.
func (c *Classification) IsEligible() bool {
	return c.Type == "ELIGIBLE"
}

// IsSkipped returns true if the file is not copied.
func (c *Classification) IsSkipped() bool {
	return c.Type == "SKIPPED"
}

// IsEmptySlug reports whether the file was skipped because a slug came out empty.
func (c *Classification) IsEmptySlug() bool {
	return c.Reason == EmptyCategory || c.Reason == EmptyFilename
}

// CategoryDir returns the destination directory for an eligible file.
func (c *Classification) CategoryDir(destRoot string) string {
	return filepath.Join(destRoot, c.Category)
}

// DestinationPath returns the destination file path for an eligible file.
func (c *Classification) DestinationPath(destRoot string) string {
	return filepath.Join(destRoot, c.Category, c.Filename)
}
