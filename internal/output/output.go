// Package output handles console output for landingmig: per-file progress
// lines, verbose detail, errors and an in-place progress counter on terminals.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Quiet     bool      // Suppress Info lines; summaries and errors still print
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// Output handles formatted output with verbose and progress support.
type Output struct {
	config          Config
	progressActive  bool
	progressTotal   int
	progressCurrent int
	mu              sync.Mutex
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	if config.Verbose {
		config.Quiet = false
	}
	return &Output{
		config: config,
	}
}

// DefaultConfig returns a Config writing to stdout and stderr with TTY detection.
func DefaultConfig() Config {
	return Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Discard returns an Output that writes nowhere.
func Discard() *Output {
	return New(Config{Writer: io.Discard, ErrWriter: io.Discard})
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.write(o.config.Writer, format, args...)
}

// Info prints an informational message unless quiet mode is enabled.
func (o *Output) Info(format string, args ...interface{}) {
	if o.config.Quiet {
		return
	}
	o.write(o.config.Writer, format, args...)
}

// Print prints a message regardless of verbose or quiet mode.
func (o *Output) Print(format string, args ...interface{}) {
	o.write(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.write(o.config.ErrWriter, format, args...)
}

func (o *Output) write(w io.Writer, format string, args ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearProgressLineLocked()
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
	o.redrawProgressLocked()
}

// clearProgressLineLocked clears the current progress line if active.
func (o *Output) clearProgressLineLocked() {
	if o.progressActive && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}

func (o *Output) redrawProgressLocked() {
	if o.progressActive && o.progressCurrent > 0 {
		fmt.Fprintf(o.config.Writer, "\rCopying %d/%d...", o.progressCurrent, o.progressTotal)
	}
}

// progressEnabled reports whether the in-place counter is drawn.
// It is suppressed when not on a TTY or when verbose mode is enabled.
func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress indicator session.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progressActive = true
	o.progressTotal = total
	o.progressCurrent = 0
}

// UpdateProgress updates the progress indicator.
func (o *Output) UpdateProgress(current int) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	o.progressCurrent = current
	fmt.Fprintf(o.config.Writer, "\rCopying %d/%d...", current, o.progressTotal)
}

// EndProgress clears the progress indicator.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressActive {
		return
	}
	o.clearProgressLineLocked()
	o.progressActive = false
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

// IsQuiet returns whether quiet mode is enabled.
func (o *Output) IsQuiet() bool {
	return o.config.Quiet
}

// IsTTY returns whether the output is a terminal.
func (o *Output) IsTTY() bool {
	return o.config.IsTTY
}
