// Package orchestrator coordinates a landing image migration: scan the
// source root, classify every file and copy the eligible ones into their
// category directory under the destination root.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"landingmig/internal/audit"
	"landingmig/internal/classifier"
	"landingmig/internal/config"
	"landingmig/internal/organizer"
	"landingmig/internal/output"
	"landingmig/internal/scanner"
)

var (
	// ErrEmptySlug is returned when a category or file name normalizes to an
	// empty slug and the empty slug policy is "error".
	ErrEmptySlug = errors.New("name normalizes to an empty slug")

	// ErrSourceNotFound is returned when the source root does not exist or is
	// not a directory.
	ErrSourceNotFound = errors.New("source root not found")

	// ErrOutsideSource is returned by MigrateFile for paths not below the
	// source root.
	ErrOutsideSource = errors.New("path is outside the source root")
)

// Result represents the outcome of one scanned file.
type Result struct {
	SourcePath      string
	DestinationPath string
	Category        string
	Bytes           int64
	Copied          bool
	Reason          classifier.SkipReason // Set when the file was skipped
}

// Orchestrator runs migrations for one configuration.
type Orchestrator struct {
	config *config.Configuration
	out    *output.Output
	audit  *audit.AuditWriter
}

// New creates an Orchestrator. out may be nil to discard console output and
// auditWriter may be nil to disable the audit trail.
func New(cfg *config.Configuration, out *output.Output, auditWriter *audit.AuditWriter) *Orchestrator {
	if out == nil {
		out = output.Discard()
	}
	return &Orchestrator{
		config: cfg,
		out:    out,
		audit:  auditWriter,
	}
}

// Config returns the configuration the orchestrator runs with.
func (o *Orchestrator) Config() *config.Configuration {
	return o.config
}

// Run performs a full migration. It stops at the first error and returns the
// summary of the work done so far together with the error. Cancelling ctx
// stops the run between files.
func (o *Orchestrator) Run(ctx context.Context) (summary *Summary, err error) {
	start := time.Now()
	summary = NewSummary()

	if o.audit != nil {
		if _, err := o.audit.StartRun(audit.RunTypeMigrate, o.config.SourceRoot, o.config.DestinationRoot); err != nil {
			return summary, err
		}
		defer func() {
			status := audit.RunStatusCompleted
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				status = audit.RunStatusInterrupted
			case err != nil:
				status = audit.RunStatusFailed
			}
			if endErr := o.audit.EndRun(status, summary.AuditSummary(err)); endErr != nil && err == nil {
				err = endErr
			}
		}()
	}
	defer func() {
		summary.Duration = time.Since(start)
	}()

	if err := organizer.EnsureDir(o.config.DestinationRoot); err != nil {
		return summary, fmt.Errorf("failed to create destination root: %w", err)
	}

	entries, err := o.scan()
	if err != nil {
		return summary, err
	}
	summary.TotalFiles = len(entries)

	o.out.StartProgress(len(entries))
	defer o.out.EndProgress()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := o.migrate(entry)
		if err != nil {
			return summary, err
		}
		summary.Add(result)
		o.out.UpdateProgress(i + 1)
	}

	return summary, nil
}

// MigrateFile classifies and copies a single file below the source root, the
// same way Run handles it.
func (o *Orchestrator) MigrateFile(path string) (Result, error) {
	entry, err := o.entryFor(path)
	if err != nil {
		return Result{SourcePath: path}, err
	}
	return o.migrate(entry)
}

// scan enumerates the source root, mapping a missing root to ErrSourceNotFound.
func (o *Orchestrator) scan() ([]scanner.FileEntry, error) {
	opts := scanner.DefaultScanOptions()
	opts.SymlinkPolicy = o.config.SymlinkPolicy

	entries, err := scanner.ScanWithOptions(o.config.SourceRoot, opts)
	if err != nil {
		var scanErr *scanner.ScanError
		if errors.As(err, &scanErr) && scanErr.Type == scanner.DirectoryNotFound && scanErr.Path == o.config.SourceRoot {
			return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("failed to scan source root: %w", err)
	}
	return entries, nil
}

func (o *Orchestrator) entryFor(path string) (scanner.FileEntry, error) {
	dir := filepath.Dir(path)
	rel, err := filepath.Rel(o.config.SourceRoot, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return scanner.FileEntry{}, fmt.Errorf("%w: %s", ErrOutsideSource, path)
	}
	return scanner.FileEntry{
		Name:   filepath.Base(path),
		Path:   path,
		Dir:    dir,
		RelDir: rel,
	}, nil
}

// migrate handles one file: skip it, or create its category directory and
// copy it.
func (o *Orchestrator) migrate(entry scanner.FileEntry) (Result, error) {
	result := Result{SourcePath: entry.Path}
	c := classifier.Classify(entry, o.config.Extensions)

	if c.IsSkipped() {
		result.Reason = c.Reason
		if c.IsEmptySlug() && o.config.EmptySlugPolicy != config.EmptySlugSkip {
			err := fmt.Errorf("%w: %s", ErrEmptySlug, entry.Path)
			o.recordError(entry.Path, string(c.Reason), err, "classify")
			return result, err
		}
		o.out.Verbose("Skipping %s (%s)", entry.Path, c.Reason)
		if o.audit != nil {
			if err := o.audit.RecordSkip(entry.Path, audit.ReasonCode(c.Reason)); err != nil {
				return result, err
			}
		}
		return result, nil
	}

	result.Category = c.Category
	if err := organizer.EnsureDir(c.CategoryDir(o.config.DestinationRoot)); err != nil {
		o.recordError(entry.Path, copyErrorType(err), err, "mkdir")
		return result, fmt.Errorf("failed to create category directory: %w", err)
	}

	dst := c.DestinationPath(o.config.DestinationRoot)
	result.DestinationPath = dst
	o.out.Info("Copying %s -> %s", entry.Path, dst)

	copied, err := organizer.Copy(entry.Path, dst)
	if err != nil {
		o.recordError(entry.Path, copyErrorType(err), err, "copy")
		return result, fmt.Errorf("failed to copy %s: %w", entry.Path, err)
	}
	result.Copied = true
	result.Bytes = copied.Bytes

	if o.audit != nil {
		identity, err := audit.CaptureIdentity(dst)
		if err != nil {
			return result, err
		}
		if err := o.audit.RecordCopy(entry.Path, dst, identity); err != nil {
			return result, err
		}
	}
	return result, nil
}

// recordError writes an ERROR event. The audit failure is dropped so the
// original error reaches the caller.
func (o *Orchestrator) recordError(path, errType string, err error, op string) {
	if o.audit == nil {
		return
	}
	if auditErr := o.audit.RecordError(path, errType, err.Error(), op); auditErr != nil {
		o.out.Error("audit: %v", auditErr)
	}
}

func copyErrorType(err error) string {
	var copyErr *organizer.CopyError
	if errors.As(err, &copyErr) {
		return string(copyErr.Type)
	}
	return "UNKNOWN"
}
