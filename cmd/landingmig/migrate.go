package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"landingmig/internal/audit"
	"landingmig/internal/config"
	"landingmig/internal/orchestrator"
	"landingmig/internal/output"
	"landingmig/internal/watcher"
)

// openAudit opens the audit log when the configuration enables it. A nil
// writer means auditing is off.
func openAudit(cfg *config.Configuration) (*audit.AuditWriter, error) {
	if !cfg.AuditEnabled() {
		return nil, nil
	}
	w, err := audit.NewAuditWriter(*cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return w, nil
}

// reportWarnings prints configuration warnings in verbose mode. Errors are
// left to the command, which reports them with a typed error.
func reportWarnings(cfg *config.Configuration, out *output.Output) {
	for _, w := range config.ValidateConfig(cfg).Warnings {
		out.Verbose("warning: %s: %s", w.Field, w.Message)
	}
}

func printSummary(out *output.Output, summary *orchestrator.Summary) {
	if summary == nil {
		return
	}
	out.Print("%s", summary.PrintSummary())
	if b := summary.Breakdown(); b != "" {
		out.Verbose("%s", b)
	}
}

// runMigrate executes the run command.
func runMigrate(ctx context.Context, args []string, env *Environment) error {
	f, err := parseRunFlags("run", args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(&f.common, &f.migration)
	if err != nil {
		return err
	}
	out := env.newOutput(f.common.output)
	reportWarnings(cfg, out)

	aw, err := openAudit(cfg)
	if err != nil {
		return err
	}
	if aw != nil {
		defer aw.Close()
	}

	summary, err := orchestrator.New(cfg, out, aw).Run(ctx)
	printSummary(out, summary)
	return err
}

// runPlan executes the plan command.
func runPlan(args []string, env *Environment) error {
	f, err := parseRunFlags("plan", args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(&f.common, &f.migration)
	if err != nil {
		return err
	}
	out := env.newOutput(f.common.output)
	reportWarnings(cfg, out)

	plan, err := orchestrator.New(cfg, out, nil).Plan()
	if err != nil {
		return err
	}

	for _, c := range plan.Copies() {
		out.Info("Would copy %s -> %s", c.SourcePath, c.DestinationPath)
	}
	for _, s := range plan.Skipped {
		out.Verbose("Would skip %s (%s)", s.Path, s.Reason)
	}
	for _, c := range plan.Collisions {
		out.Error("warning: %s is written by %s", c.DestinationPath, strings.Join(c.Sources, ", "))
	}
	for _, cat := range plan.Categories() {
		out.Print("  %s: %d", cat, len(plan.ByCategory[cat]))
	}
	out.Print("Would copy %s files into %s categories, %s skipped",
		humanize.Comma(int64(plan.Total)),
		humanize.Comma(int64(len(plan.ByCategory))),
		humanize.Comma(int64(len(plan.Skipped))))
	return nil
}

// runWatch executes the watch command: a full migration followed by a watch
// session that lasts until ctx is cancelled.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, err := parseRunFlags("watch", args)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(&f.common, &f.migration)
	if err != nil {
		return err
	}
	out := env.newOutput(f.common.output)
	reportWarnings(cfg, out)

	aw, err := openAudit(cfg)
	if err != nil {
		return err
	}
	if aw != nil {
		defer aw.Close()
	}

	o := orchestrator.New(cfg, out, aw)
	summary, err := o.Run(ctx)
	printSummary(out, summary)
	if err != nil {
		return err
	}

	if aw != nil {
		if _, err := aw.StartRun(audit.RunTypeWatch, cfg.SourceRoot, cfg.DestinationRoot); err != nil {
			return err
		}
	}

	w := watcher.New(watcher.ConfigFromSettings(cfg.Watch), func(path string) (bool, error) {
		result, err := o.MigrateFile(path)
		return result.Copied, err
	})
	w.OnError(func(path string, err error) {
		if path == "" {
			out.Error("watch: %v", err)
			return
		}
		out.Error("%s: %v", path, err)
	})

	if err := w.Start(ctx, cfg.SourceRoot); err != nil {
		endWatchRun(aw, out, audit.RunStatusFailed, &watcher.WatchSummary{Errors: 1})
		return fmt.Errorf("starting watcher: %w", err)
	}
	out.Info("Watching %s for new images (Ctrl+C to stop)", cfg.SourceRoot)

	<-ctx.Done()
	ws := w.Stop()

	endWatchRun(aw, out, audit.RunStatusCompleted, ws)
	out.Print("Watched for %s: %s copied, %s skipped, %s errors",
		ws.Duration.Round(time.Second),
		humanize.Comma(int64(ws.FilesCopied)),
		humanize.Comma(int64(ws.FilesSkipped)),
		humanize.Comma(int64(ws.Errors)))
	return nil
}

func endWatchRun(aw *audit.AuditWriter, out *output.Output, status audit.RunStatus, ws *watcher.WatchSummary) {
	if aw == nil {
		return
	}
	summary := audit.RunSummary{
		TotalFiles: ws.FilesCopied + ws.FilesSkipped + ws.Errors,
		Copied:     ws.FilesCopied,
		Skipped:    ws.FilesSkipped,
		Errors:     ws.Errors,
	}
	if err := aw.EndRun(status, summary); err != nil {
		out.Error("audit: %v", err)
	}
}
