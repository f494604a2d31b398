package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: landingmig [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Copy landing images into category folders (default)")
	fmt.Fprintln(w, "  plan       Show what run would copy without copying")
	fmt.Fprintln(w, "  manifest   Write a manifest of the destination tree")
	fmt.Fprintln(w, "  check      Report product images missing from a directory")
	fmt.Fprintln(w, "  watch      Migrate, then keep migrating new images")
	fmt.Fprintln(w, "  history    List audited runs or show one run")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'landingmig help <command>' for details on a specific command.")
}

func printMigrationFlags(w io.Writer) {
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Configuration file (JSON or YAML)")
	fmt.Fprintln(w, "  -s, --source <dir>        Source root (default \"Pagina web\")")
	fmt.Fprintln(w, "  -d, --dest <dir>          Destination root")
	fmt.Fprintln(w, "                            (default \"heavy-api/storage/app/public/landing\")")
	fmt.Fprintln(w, "      --ext <.ext>          Image extension to migrate, repeatable")
	fmt.Fprintln(w, "                            (default .png .jpg .jpeg .svg)")
	fmt.Fprintln(w, "      --empty-slug <p>      error (default) or skip")
	fmt.Fprintln(w, "      --symlinks <p>        files (default), follow, skip or error")
	fmt.Fprintln(w, "      --audit-dir <dir>     Append an audit trail to this directory")
	fmt.Fprintln(w, "  -q, --quiet               Only print summaries and errors")
	fmt.Fprintln(w, "  -v, --verbose             Print skipped files and per-category counts")
}

// printCommandUsage prints usage for one command.
func printCommandUsage(w io.Writer, cmd string) {
	switch cmd {
	case "run":
		fmt.Fprintln(w, "Usage: landingmig [run] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Copy every image of a category folder below the source root to")
		fmt.Fprintln(w, "<dest>/<category-slug>/<file-slug>. Files in the source root and")
		fmt.Fprintln(w, "non-image files are skipped. Existing files are overwritten.")
		fmt.Fprintln(w)
		printMigrationFlags(w)
	case "plan":
		fmt.Fprintln(w, "Usage: landingmig plan [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "List the copies run would make and the files it would skip.")
		fmt.Fprintln(w, "Nothing is written.")
		fmt.Fprintln(w)
		printMigrationFlags(w)
	case "manifest":
		fmt.Fprintln(w, "Usage: landingmig manifest [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Describe the categories and images of the destination tree.")
		fmt.Fprintln(w)
		printMigrationFlags(w)
		fmt.Fprintln(w, "  -o, --output <path>       Manifest file (default: stdout)")
		fmt.Fprintln(w, "      --format <f>          json or yaml (default: from --output, else json)")
		fmt.Fprintln(w, "      --prefix <p>          Public path prefix (default: destination basename)")
	case "check":
		fmt.Fprintln(w, "Usage: landingmig check --mapping <file> --images <dir>")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Report every slug whose image is missing from the images directory.")
		fmt.Fprintln(w, "Exits with code 4 when anything is missing.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --mapping <file>      Slug to image mapping (JSON or YAML)")
		fmt.Fprintln(w, "      --images <dir>        Directory holding the images")
		fmt.Fprintln(w, "  -q, --quiet               Only print missing images")
		fmt.Fprintln(w, "  -v, --verbose             Print every checked image")
	case "watch":
		fmt.Fprintln(w, "Usage: landingmig watch [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run a full migration, then migrate images as they appear or change")
		fmt.Fprintln(w, "below the source root. Stop with Ctrl+C.")
		fmt.Fprintln(w)
		printMigrationFlags(w)
	case "history":
		fmt.Fprintln(w, "Usage: landingmig history [run-id] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "List the runs recorded in the audit log, or the events of one run.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "  -c, --config <path>       Configuration file (JSON or YAML)")
		fmt.Fprintln(w, "      --audit-dir <dir>     Directory of the audit log")
	default:
		printUsage(w)
	}
}

// runHelp prints the usage of the command named in args, or the main usage.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}
	if !isCommand(args[0]) {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	printCommandUsage(env.Stdout, args[0])
	return nil
}
