package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"landingmig/internal/audit"
	"landingmig/internal/config"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// outputFlags holds the console verbosity flags.
type outputFlags struct {
	quiet   bool
	verbose bool
}

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config string
	output outputFlags
}

// migrationFlags override configuration file values.
type migrationFlags struct {
	source     string
	dest       string
	extensions []string
	emptySlug  string
	symlinks   string
	auditDir   string
}

// runFlags holds flags for run, plan, watch and history.
type runFlags struct {
	common    commonFlags
	migration migrationFlags
}

// manifestFlags holds flags for the manifest command.
type manifestFlags struct {
	common    commonFlags
	migration migrationFlags
	output    string
	format    string
	prefix    string
}

// checkFlags holds flags for the check command.
type checkFlags struct {
	output  outputFlags
	mapping string
	images  string
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print summaries and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print skipped files and per-category counts")
}

// addCommonFlags adds config and verbosity flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "configuration file (JSON or YAML)")
	addOutputFlags(fs, &f.output)
}

// addMigrationFlags adds the configuration override flags to a FlagSet.
func addMigrationFlags(fs *flag.FlagSet, f *migrationFlags) {
	fs.StringVarP(&f.source, "source", "s", "", "source root")
	fs.StringVarP(&f.dest, "dest", "d", "", "destination root")
	fs.StringSliceVar(&f.extensions, "ext", nil, "image extension to migrate (repeatable)")
	fs.StringVar(&f.emptySlug, "empty-slug", "", "empty slug policy: error or skip")
	fs.StringVar(&f.symlinks, "symlinks", "", "symlink policy: files, follow, skip or error")
	fs.StringVar(&f.auditDir, "audit-dir", "", "directory of the audit log")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead of
// printing them.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parse runs fs.Parse and maps failures to ErrUsage. flag.ErrHelp passes
// through unchanged.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// parseRunFlags parses flags for run, plan and watch. Positional arguments
// are rejected.
func parseRunFlags(name string, args []string) (*runFlags, error) {
	fs := newFlagSet(name)
	f := &runFlags{}
	addCommonFlags(fs, &f.common)
	addMigrationFlags(fs, &f.migration)

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

func parseManifestFlags(args []string) (*manifestFlags, error) {
	fs := newFlagSet("manifest")
	f := &manifestFlags{}
	addCommonFlags(fs, &f.common)
	addMigrationFlags(fs, &f.migration)
	fs.StringVarP(&f.output, "output", "o", "", "manifest file (default: stdout)")
	fs.StringVar(&f.format, "format", "", "json or yaml (default: from --output, else json)")
	fs.StringVar(&f.prefix, "prefix", "", "public path prefix of images")

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

func parseCheckFlags(args []string) (*checkFlags, error) {
	fs := newFlagSet("check")
	f := &checkFlags{}
	addOutputFlags(fs, &f.output)
	fs.StringVar(&f.mapping, "mapping", "", "slug to image mapping (JSON or YAML)")
	fs.StringVar(&f.images, "images", "", "directory holding the images")

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if f.mapping == "" || f.images == "" {
		return nil, fmt.Errorf("%w: --mapping and --images are required", ErrUsage)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// parseHistoryFlags parses flags for history, which accepts an optional run ID.
func parseHistoryFlags(args []string) (*runFlags, string, error) {
	fs := newFlagSet("history")
	f := &runFlags{}
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.migration.auditDir, "audit-dir", "", "directory of the audit log")

	if err := parse(fs, args); err != nil {
		return nil, "", err
	}
	if fs.NArg() > 1 {
		return nil, "", fmt.Errorf("%w: history takes at most one run ID", ErrUsage)
	}
	return f, fs.Arg(0), nil
}

// resolveConfig loads the configuration file, or the defaults when none is
// given, and applies flag overrides. Flags win.
func resolveConfig(c *commonFlags, m *migrationFlags) (*config.Configuration, error) {
	cfg := config.Default()
	if c.config != "" {
		var err error
		cfg, err = config.Load(c.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	mergeFlags(m, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// mergeFlags copies explicitly set flags into cfg.
func mergeFlags(m *migrationFlags, cfg *config.Configuration) {
	if m.source != "" {
		cfg.SourceRoot = m.source
	}
	if m.dest != "" {
		// A prefix derived from the old destination follows the new one.
		if cfg.PublicPrefix == filepath.Base(filepath.Clean(cfg.DestinationRoot)) {
			cfg.PublicPrefix = ""
		}
		cfg.DestinationRoot = m.dest
	}
	if len(m.extensions) > 0 {
		cfg.Extensions = make([]string, 0, len(m.extensions))
		for _, ext := range m.extensions {
			if ext != "" && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}
	if m.emptySlug != "" {
		cfg.EmptySlugPolicy = m.emptySlug
	}
	if m.symlinks != "" {
		cfg.SymlinkPolicy = m.symlinks
	}
	if m.auditDir != "" {
		cfg.Audit = &audit.AuditConfig{LogDirectory: m.auditDir}
	}
}
