// Package config handles configuration loading and validation for landingmig.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "extensions[0]")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// ValidateConfig checks the configuration against the filesystem and returns
// all findings. Unlike Validate it does not stop at the first problem.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	var findings []ConfigValidationError
	findings = append(findings, ValidatePaths(cfg)...)
	findings = append(findings, ValidateExtensions(cfg)...)
	findings = append(findings, ValidatePolicies(cfg)...)

	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePaths checks that the source root is a readable directory and that
// the destination root exists or can be created.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	info, err := os.Stat(cfg.SourceRoot)
	switch {
	case os.IsNotExist(err):
		errs = append(errs, ConfigValidationError{
			Field:    "sourceRoot",
			Message:  "directory does not exist: " + cfg.SourceRoot,
			Severity: SeverityError,
		})
	case os.IsPermission(err):
		errs = append(errs, ConfigValidationError{
			Field:    "sourceRoot",
			Message:  "directory is not accessible: " + cfg.SourceRoot,
			Severity: SeverityError,
		})
	case err != nil:
		errs = append(errs, ConfigValidationError{
			Field:    "sourceRoot",
			Message:  "error accessing directory: " + err.Error(),
			Severity: SeverityError,
		})
	case !info.IsDir():
		errs = append(errs, ConfigValidationError{
			Field:    "sourceRoot",
			Message:  "path is not a directory: " + cfg.SourceRoot,
			Severity: SeverityError,
		})
	}

	if f, ok := validateDestination(cfg.DestinationRoot); !ok {
		errs = append(errs, f)
	}

	if isWithin(cfg.SourceRoot, cfg.DestinationRoot) {
		errs = append(errs, ConfigValidationError{
			Field:    "destinationRoot",
			Message:  "destination is inside the source root; migrated files will be picked up again on the next run",
			Severity: SeverityWarning,
		})
	}

	return errs
}

// validateDestination accepts an existing directory or a path whose nearest
// existing ancestor is a writable directory (MkdirAll creates the rest).
func validateDestination(dest string) (ConfigValidationError, bool) {
	info, err := os.Stat(dest)
	if err == nil {
		if !info.IsDir() {
			return ConfigValidationError{
				Field:    "destinationRoot",
				Message:  "path exists but is not a directory: " + dest,
				Severity: SeverityError,
			}, false
		}
		return ConfigValidationError{}, true
	}
	if !os.IsNotExist(err) {
		return ConfigValidationError{
			Field:    "destinationRoot",
			Message:  "error accessing directory: " + err.Error(),
			Severity: SeverityError,
		}, false
	}

	parent := filepath.Dir(filepath.Clean(dest))
	for {
		info, err := os.Stat(parent)
		if err == nil {
			if !info.IsDir() {
				return ConfigValidationError{
					Field:    "destinationRoot",
					Message:  "ancestor path is not a directory: " + parent,
					Severity: SeverityError,
				}, false
			}
			if !isDirectoryWritable(parent) {
				return ConfigValidationError{
					Field:    "destinationRoot",
					Message:  "ancestor directory is not writable: " + parent,
					Severity: SeverityError,
				}, false
			}
			return ConfigValidationError{}, true
		}
		next := filepath.Dir(parent)
		if next == parent {
			return ConfigValidationError{
				Field:    "destinationRoot",
				Message:  "no existing ancestor directory for: " + dest,
				Severity: SeverityError,
			}, false
		}
		parent = next
	}
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".landingmig_write_test")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// isWithin reports whether child is parent or lies below it.
func isWithin(parent, child string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	c, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	if p == c {
		return true
	}
	return strings.HasPrefix(c, p+string(filepath.Separator))
}

// ValidateExtensions checks extension syntax and reports duplicates.
func ValidateExtensions(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	seen := make(map[string]int)
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ConfigValidationError{
				Field:    formatField("extensions", i),
				Message:  "extension must start with a dot: \"" + ext + "\"",
				Severity: SeverityError,
			})
			continue
		}
		lower := strings.ToLower(ext)
		if first, ok := seen[lower]; ok {
			errs = append(errs, ConfigValidationError{
				Field:    formatField("extensions", i),
				Message:  "duplicate extension \"" + ext + "\" (first at index " + strconv.Itoa(first) + ")",
				Severity: SeverityWarning,
			})
			continue
		}
		seen[lower] = i
	}

	return errs
}

// ValidatePolicies checks that policy values are valid.
func ValidatePolicies(cfg *Configuration) []ConfigValidationError {
	var errs []ConfigValidationError

	switch cfg.SymlinkPolicy {
	case "", SymlinkPolicyFiles, SymlinkPolicyFollow, SymlinkPolicySkip, SymlinkPolicyError:
	default:
		errs = append(errs, ConfigValidationError{
			Field:    "symlinkPolicy",
			Message:  "invalid symlink policy: \"" + cfg.SymlinkPolicy + "\". Must be \"files\", \"follow\", \"skip\" or \"error\"",
			Severity: SeverityError,
		})
	}

	switch cfg.EmptySlugPolicy {
	case "", EmptySlugError, EmptySlugSkip:
	default:
		errs = append(errs, ConfigValidationError{
			Field:    "emptySlugPolicy",
			Message:  "invalid empty slug policy: \"" + cfg.EmptySlugPolicy + "\". Must be \"error\" or \"skip\"",
			Severity: SeverityError,
		})
	}

	return errs
}

// formatField creates a field reference string for validation errors.
func formatField(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}
