package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"landingmig/internal/audit"
	"landingmig/internal/check"
	"landingmig/internal/manifest"
)

// runManifest executes the manifest command.
func runManifest(args []string, env *Environment) error {
	f, err := parseManifestFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(&f.common, &f.migration)
	if err != nil {
		return err
	}
	if f.prefix != "" {
		cfg.PublicPrefix = f.prefix
	}

	format := f.format
	if format == "" {
		format = manifest.FormatJSON
		if f.output != "" {
			format = manifest.FormatForPath(f.output)
		}
	}
	if format != manifest.FormatJSON && format != manifest.FormatYAML {
		return fmt.Errorf("%w: %q", manifest.ErrUnknownFormat, format)
	}

	m, err := manifest.Build(cfg.DestinationRoot, cfg.PublicPrefix)
	if err != nil {
		return err
	}

	if f.output == "" {
		return manifest.Encode(m, env.Stdout, format)
	}

	file, err := os.Create(f.output)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	if err := manifest.Encode(m, file, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	out := env.newOutput(f.common.output)
	out.Info("Wrote %s images in %s categories to %s",
		humanize.Comma(int64(m.Count())),
		humanize.Comma(int64(len(m.Categories))),
		f.output)
	return nil
}

// runCheck executes the check command.
func runCheck(args []string, env *Environment) error {
	f, err := parseCheckFlags(args)
	if err != nil {
		return err
	}
	out := env.newOutput(f.output)

	mapping, err := check.LoadMapping(f.mapping)
	if err != nil {
		return err
	}
	report, err := check.Run(mapping, f.images)
	if err != nil {
		return err
	}

	for _, m := range report.Missing {
		out.Print("Missing: %s", m)
	}
	if report.OK() {
		out.Info("All %s images present in %s", humanize.Comma(int64(report.Checked)), f.images)
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrMissingImages, len(report.Missing), report.Checked)
}

// runHistory executes the history command.
func runHistory(args []string, env *Environment) error {
	f, runID, err := parseHistoryFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(&f.common, &f.migration)
	if err != nil {
		return err
	}
	if !cfg.AuditEnabled() {
		return fmt.Errorf("%w: no audit directory configured (use --audit-dir)", ErrUsage)
	}
	out := env.newOutput(f.common.output)
	reader := audit.NewAuditReader(cfg.Audit.LogDirectory)

	if runID != "" {
		events, err := reader.GetRun(audit.RunID(runID))
		if err != nil {
			return err
		}
		for _, e := range events {
			out.Print("%s", formatEvent(e))
		}
		return nil
	}

	runs, err := reader.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		out.Info("No runs recorded in %s", cfg.Audit.LogDirectory)
		return nil
	}
	for _, r := range runs {
		out.Print("%s  %-7s  %-11s  %s  copied %s, skipped %s, errors %s",
			r.RunID, r.RunType, r.Status,
			humanize.Time(r.StartTime),
			humanize.Comma(int64(r.Summary.Copied)),
			humanize.Comma(int64(r.Summary.Skipped)),
			humanize.Comma(int64(r.Summary.Errors)))
	}
	return nil
}

func formatEvent(e audit.AuditEvent) string {
	line := fmt.Sprintf("%s  %-9s %-7s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.EventType, e.Status)
	switch e.EventType {
	case audit.EventCopy:
		line += fmt.Sprintf("  %s -> %s", e.SourcePath, e.DestinationPath)
		if e.FileIdentity != nil {
			line += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(e.FileIdentity.Size)))
		}
	case audit.EventSkip:
		line += fmt.Sprintf("  %s (%s)", e.SourcePath, e.ReasonCode)
	case audit.EventError:
		line += "  " + e.SourcePath
		if e.ErrorDetails != nil {
			line += fmt.Sprintf(": %s (%s)", e.ErrorDetails.ErrorMessage, e.ErrorDetails.ErrorType)
		}
	case audit.EventRunStart:
		line += fmt.Sprintf("  %s -> %s", e.Metadata["sourceRoot"], e.Metadata["destinationRoot"])
	case audit.EventRunEnd:
		line += "  " + e.Metadata["status"]
	}
	return line
}
