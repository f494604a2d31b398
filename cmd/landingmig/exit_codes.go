package main

import (
	"errors"
	"os"

	"landingmig/internal/config"
	"landingmig/internal/manifest"
	"landingmig/internal/orchestrator"
	"landingmig/internal/organizer"
)

// Exit codes for the landingmig CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Migration or command completed
	ExitGeneral = 1 // General/runtime error
	ExitUsage   = 2 // Invalid flags or configuration
	ExitIO      = 3 // Missing source root, permission denied, failed copy
	ExitMissing = 4 // check found missing images
)

// ErrMissingImages is returned by check when referenced images are missing.
var ErrMissingImages = errors.New("missing images")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is and errors.As on wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrMissingImages) {
		return ExitMissing
	}

	// Usage/config/validation errors (exit 2)
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, manifest.ErrUnknownFormat) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	var copyErr *organizer.CopyError
	if errors.As(err, &copyErr) ||
		errors.Is(err, orchestrator.ErrSourceNotFound) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
