package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newBuffered(cfg Config) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cfg.Writer = &stdout
	cfg.ErrWriter = &stderr
	return New(cfg), &stdout, &stderr
}

func TestVerboseOutputOnlyAppearsWhenEnabled(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		expectEmpty bool
	}{
		{"verbose disabled - no output", false, true},
		{"verbose enabled - has output", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, buf, _ := newBuffered(Config{Verbose: tt.verbose})

			out.Verbose("skipped %s", "banner.png")

			if tt.expectEmpty && buf.Len() > 0 {
				t.Errorf("expected no output when verbose disabled, got: %q", buf.String())
			}
			if !tt.expectEmpty && buf.String() != "skipped banner.png\n" {
				t.Errorf("unexpected output: %q", buf.String())
			}
		})
	}
}

func TestInfoRespectsQuiet(t *testing.T) {
	out, buf, _ := newBuffered(Config{})
	out.Info("Copying %s -> %s", "a.png", "b.png")
	if buf.String() != "Copying a.png -> b.png\n" {
		t.Errorf("Info() wrote %q", buf.String())
	}

	out, buf, _ = newBuffered(Config{Quiet: true})
	out.Info("hidden")
	out.Print("summary")
	if buf.String() != "summary\n" {
		t.Errorf("quiet output = %q, want only the summary", buf.String())
	}
	if !out.IsQuiet() {
		t.Error("IsQuiet() = false")
	}
}

func TestVerboseOverridesQuiet(t *testing.T) {
	out, buf, _ := newBuffered(Config{Verbose: true, Quiet: true})
	out.Info("shown")
	if out.IsQuiet() || !strings.Contains(buf.String(), "shown") {
		t.Errorf("verbose should disable quiet, got %q", buf.String())
	}
}

func TestErrorOutputGoesToErrWriter(t *testing.T) {
	out, stdout, stderr := newBuffered(Config{Quiet: true})
	out.Error("copy failed: %v", "boom")
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q", stdout.String())
	}
	if stderr.String() != "copy failed: boom\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestNewWithNilWriters(t *testing.T) {
	out := New(Config{})
	if out.config.Writer == nil || out.config.ErrWriter == nil {
		t.Error("New() should default nil writers")
	}
	Discard().Print("nowhere")
}

func TestProgressSuppressedWhenNotTTYOrVerbose(t *testing.T) {
	for _, cfg := range []Config{{IsTTY: false}, {IsTTY: true, Verbose: true}} {
		out, buf, _ := newBuffered(cfg)
		out.StartProgress(3)
		out.UpdateProgress(1)
		out.EndProgress()
		if buf.Len() != 0 {
			t.Errorf("config %+v: expected no progress output, got %q", cfg, buf.String())
		}
	}
}

func TestInfoClearsAndRedrawsProgress(t *testing.T) {
	out, buf, _ := newBuffered(Config{IsTTY: true})
	out.StartProgress(2)
	out.UpdateProgress(1)
	buf.Reset()

	out.Info("Copying a -> b")

	got := buf.String()
	if !strings.HasPrefix(got, "\r") || !strings.Contains(got, "Copying a -> b\n") {
		t.Errorf("Info() during progress = %q", got)
	}
	if !strings.HasSuffix(got, "\rCopying 1/2...") {
		t.Errorf("progress not redrawn: %q", got)
	}
}

func TestProgressIndicatorFormatAndLifecycle(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	pattern := regexp.MustCompile(`^\rCopying (\d+)/(\d+)\.\.\.$`)

	properties.Property("progress updates use carriage return and N/M format", prop.ForAll(
		func(total, current int) bool {
			out, buf, _ := newBuffered(Config{IsTTY: true})
			out.StartProgress(total)
			buf.Reset()
			out.UpdateProgress(current)
			m := pattern.FindStringSubmatch(buf.String())
			if m == nil {
				t.Logf("unexpected progress line %q", buf.String())
				return false
			}

			buf.Reset()
			out.EndProgress()
			cleared := strings.HasPrefix(buf.String(), "\r") && strings.HasSuffix(buf.String(), "\r")
			return cleared && !out.progressActive
		},
		gen.IntRange(1, 1000),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t)
}
