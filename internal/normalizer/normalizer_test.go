package normalizer

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var slugShape = regexp.MustCompile(`^[a-z0-9.]+(-[a-z0-9.]+)*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading number and space", "04 Hidraulicos", "hidraulicos"},
		{"no leading number", "Hidraulicos", "hidraulicos"},
		{"mixed case with extension", "Foto Principal.JPG", "foto-principal.jpg"},
		{"parentheses", "img (1).png", "img-1.png"},
		{"spaces between words", "Bombas y Motores", "bombas-y-motores"},
		{"accented letters", "Hidráulicos", "hidr-ulicos"},
		{"underscores", "kit_reparacion_motor.png", "kit-reparacion-motor.png"},
		{"digits kept after prefix", "04 Motor 3516.png", "motor-3516.png"},
		{"digits glued to name", "12abc", "abc"},
		{"separator next to extension", "Casquete - .PNG", "casquete.png"},
		{"trailing punctuation", "  --Zapatas!!", "zapatas"},
		{"digits only", "007", ""},
		{"digits and spaces", "12   ", ""},
		{"empty", "", ""},
		{"hyphen hides leading digits", "-12 abc", "12-abc"},
		{"dots preserved", "v1.2.svg", "v1.2.svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_StepOrder(t *testing.T) {
	// Stripping after lowercasing or substitution would eat "2024" here.
	if got := Normalize("Catalogo 2024"); got != "catalogo-2024" {
		t.Errorf("Normalize() = %q, want %q", got, "catalogo-2024")
	}
	if len(Steps) != 6 {
		t.Fatalf("expected 6 pipeline steps, got %d", len(Steps))
	}
}

// These inputs already have slug shape but still change, so they are kept
// out of the idempotence generator.
func TestNormalize_SlugShapedInputsThatChange(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a-.png", "a.png"},
		{"motor-.jpg", "motor.jpg"},
		{"1a", "a"},
		{"04hidraulicos", "hidraulicos"},
	}
	for _, tt := range tests {
		if !slugShape.MatchString(tt.in) {
			t.Fatalf("%q should have slug shape", tt.in)
		}
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if Normalize(got) != got {
			t.Errorf("Normalize(%q) should be stable, got %q", got, Normalize(got))
		}
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hidraulicos", "Hidraulicos"},
		{"bombas-y-motores", "Bombas Y Motores"},
		{"kit_reparacion-motor", "Kit Reparacion Motor"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Title(tt.in); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// genSlug generates valid slugs that do not start with a digit and whose
// hyphens are followed by a letter or digit.
func genSlug() gopter.Gen {
	return gen.RegexMatch(`[a-z][a-z0-9.]{0,8}(-[a-z0-9][a-z0-9.]{0,7}){0,3}`)
}

// genSpaces generates up to three spaces.
func genSpaces() gopter.Gen {
	return gen.IntRange(0, 3).Map(func(n int) string {
		return strings.Repeat(" ", n)
	})
}

func TestNormalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("output is a slug or empty", prop.ForAll(
		func(raw string) bool {
			out := Normalize(raw)
			return out == "" || slugShape.MatchString(out)
		},
		gen.AnyString(),
	))

	properties.Property("output has no double, leading or trailing hyphens", prop.ForAll(
		func(raw string) bool {
			out := Normalize(raw)
			return !strings.Contains(out, "--") &&
				!strings.HasPrefix(out, "-") &&
				!strings.HasSuffix(out, "-")
		},
		gen.AnyString(),
	))

	properties.Property("normalizing a slug returns it unchanged", prop.ForAll(
		func(slug string) bool {
			return Normalize(slug) == slug && Normalize(Normalize(slug)) == slug
		},
		genSlug(),
	))

	properties.Property("leading digit and space run is dropped", prop.ForAll(
		func(digits, spaces, rest string) bool {
			return Normalize(digits+spaces+rest) == Normalize(rest)
		},
		gen.NumString(),
		genSpaces(),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t)
}
