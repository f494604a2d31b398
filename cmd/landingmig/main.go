// Package main provides the CLI entry point for landingmig.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"landingmig/internal/output"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	IsTTY  bool
}

// DefaultEnv returns the process environment.
func DefaultEnv() *Environment {
	cfg := output.DefaultConfig()
	return &Environment{
		Stdout: cfg.Writer,
		Stderr: cfg.ErrWriter,
		IsTTY:  cfg.IsTTY,
	}
}

// newOutput builds the console output for one command.
func (e *Environment) newOutput(f outputFlags) *output.Output {
	return output.New(output.Config{
		Verbose:   f.verbose,
		Quiet:     f.quiet,
		Writer:    e.Stdout,
		ErrWriter: e.Stderr,
		IsTTY:     e.IsTTY,
	})
}

var commands = []string{"run", "plan", "manifest", "check", "watch", "history", "version", "help"}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	for _, c := range commands {
		if s == c {
			return true
		}
	}
	return false
}

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the subcommand named by args[1] and returns the exit
// code. Without a subcommand, or when the first argument is a flag, it runs
// a migration.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	if !isCommand(cmd) {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "run":
		err = runMigrate(ctx, args, env)
	case "plan":
		err = runPlan(args, env)
	case "manifest":
		err = runManifest(args, env)
	case "check":
		err = runCheck(args, env)
	case "watch":
		err = runWatch(ctx, args, env)
	case "history":
		err = runHistory(args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "landingmig %s\n", Version)
	case "help":
		err = runHelp(args, env)
	}

	if errors.Is(err, flag.ErrHelp) {
		printCommandUsage(env.Stdout, cmd)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(env.Stderr, "Run 'landingmig help %s' for usage.\n", cmd)
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}
