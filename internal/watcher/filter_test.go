package watcher

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFileFilter_Defaults(t *testing.T) {
	f := NewFileFilter(nil)
	if len(f.Patterns()) != len(DefaultIgnorePatterns()) {
		t.Errorf("Patterns() = %v", f.Patterns())
	}

	tests := []struct {
		path   string
		ignore bool
	}{
		{"foto.png.tmp", true},
		{"foto.PNG.PART", true},
		{filepath.Join("Motores", "bomba.jpg.crdownload"), true},
		{".~lock.foto.png#", true},
		{"~$catalogo.png", true},
		{".foto.png.swp", true},
		{"foto.png", false},
		{"tmp.png", false},
		{filepath.Join("tmp", "foto.svg"), false},
	}
	for _, tt := range tests {
		if got := f.ShouldIgnore(tt.path); got != tt.ignore {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.ignore)
		}
	}
}

func TestFileFilter_CustomPatterns(t *testing.T) {
	f := NewFileFilter([]string{"*.BAK", "draft-*"})
	if !f.ShouldIgnore("foto.bak") || !f.ShouldIgnore("Draft-1.png") {
		t.Error("custom patterns should match case-insensitively")
	}
	if f.ShouldIgnore("foto.tmp") {
		t.Error("custom patterns replace the defaults")
	}

	patterns := f.Patterns()
	patterns[0] = "changed"
	if f.Patterns()[0] != "*.bak" {
		t.Error("Patterns() should return a copy")
	}
}

func TestFileFilter_MalformedPatternNeverMatches(t *testing.T) {
	if NewFileFilter([]string{"[unclosed"}).ShouldIgnore("[unclosed") {
		t.Error("a malformed pattern should not match")
	}
}

func TestTemporaryExtensionsAlwaysIgnored(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	f := NewFileFilter(nil)

	properties.Property("any name with a temporary extension is ignored", prop.ForAll(
		func(stem, ext string) bool {
			return f.ShouldIgnore(stem + ext)
		},
		gen.AlphaString(),
		gen.OneConstOf(".tmp", ".TMP", ".part", ".partial", ".download", ".crdownload"),
	))

	properties.Property("image names are not ignored", prop.ForAll(
		func(stem, ext string) bool {
			return !f.ShouldIgnore("a" + stem + ext)
		},
		gen.AlphaString(),
		gen.OneConstOf(".png", ".jpg", ".jpeg", ".svg"),
	))

	properties.TestingRun(t)
}
