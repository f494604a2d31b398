// Package normalizer turns raw directory and file names into URL-safe slugs.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	leadingNumberPattern = regexp.MustCompile(`^\d*\s*`)
	disallowedPattern    = regexp.MustCompile(`[^a-z0-9.]`)
	hyphenRunPattern     = regexp.MustCompile(`-{2,}`)
	extensionGapPattern  = regexp.MustCompile(`-+(\.[a-z0-9]+)$`)
)

// Step is a single string transform in the slug pipeline.
type Step func(string) string

// Steps is the slug pipeline in the order it must run. Later steps depend on
// the character set left by earlier ones.
var Steps = []Step{
	StripLeadingNumber,
	strings.ToLower,
	ReplaceDisallowed,
	CollapseHyphens,
	DropHyphenBeforeExtension,
	TrimHyphens,
}

// Normalize rewrites a raw filesystem name into a slug.
//
// Examples:
//   - "04 Hidraulicos" -> "hidraulicos"
//   - "Foto Principal.JPG" -> "foto-principal.jpg"
//   - "img (1).png" -> "img-1.png"
//
// A name made only of digits and whitespace normalizes to "".
func Normalize(name string) string {
	for _, step := range Steps {
		name = step(name)
	}
	return name
}

// StripLeadingNumber removes a leading run of digits followed by whitespace.
func StripLeadingNumber(s string) string {
	return leadingNumberPattern.ReplaceAllString(s, "")
}

// ReplaceDisallowed replaces each rune outside [a-z0-9.] with a hyphen.
func ReplaceDisallowed(s string) string {
	return disallowedPattern.ReplaceAllString(s, "-")
}

// CollapseHyphens reduces every run of hyphens to one.
func CollapseHyphens(s string) string {
	return hyphenRunPattern.ReplaceAllString(s, "-")
}

// DropHyphenBeforeExtension removes hyphens left between a stem and its
// final extension ("img-1-.png" -> "img-1.png").
func DropHyphenBeforeExtension(s string) string {
	return extensionGapPattern.ReplaceAllString(s, "$1")
}

// TrimHyphens strips leading and trailing hyphens.
func TrimHyphens(s string) string {
	return strings.Trim(s, "-")
}

// Title turns a slug back into a display name: hyphens and underscores become
// spaces and every word is title cased ("bombas-y-motores" -> "Bombas Y Motores").
func Title(slug string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	// Casers keep state between calls, so each call gets its own.
	return cases.Title(language.Spanish).String(name)
}
