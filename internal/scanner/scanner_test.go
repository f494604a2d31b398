package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// DirectoryStructure represents a generated source tree for testing.
type DirectoryStructure struct {
	RootFiles []string            // Files directly in the root
	SubDirs   map[string][]string // Subdirectory -> files inside it
}

// genFileName generates valid file names.
func genFileName() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaLowerChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return string(chars) + ".png"
	})
}

// genDirName generates valid directory names.
func genDirName() gopter.Gen {
	return gen.IntRange(1, 12).FlatMap(func(length interface{}) gopter.Gen {
		return gen.SliceOfN(length.(int), gen.AlphaLowerChar())
	}, reflect.TypeOf([]rune{})).Map(func(chars []rune) string {
		return "dir_" + string(chars)
	})
}

// genDirectoryStructure generates a root with files and subdirectories with files.
func genDirectoryStructure() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(4, genFileName()),
		gen.SliceOfN(3, genDirName()),
		gen.SliceOfN(4, genFileName()),
	).Map(func(vals []interface{}) DirectoryStructure {
		s := DirectoryStructure{SubDirs: map[string][]string{}}
		s.RootFiles = unique(vals[0].([]string))
		inner := unique(vals[2].([]string))
		for _, d := range unique(vals[1].([]string)) {
			s.SubDirs[d] = inner
		}
		return s
	})
}

func unique(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScannerReturnsEveryFileWithItsDirectory(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("all files are returned, directories never, with correct RelDir", prop.ForAll(
		func(structure DirectoryStructure) bool {
			root := t.TempDir()
			want := map[string]string{} // path -> RelDir
			for _, f := range structure.RootFiles {
				p := filepath.Join(root, f)
				writeFile(t, p)
				want[p] = "."
			}
			for d, files := range structure.SubDirs {
				os.MkdirAll(filepath.Join(root, d), 0755)
				for _, f := range files {
					p := filepath.Join(root, d, f)
					writeFile(t, p)
					want[p] = d
				}
			}

			entries, err := Scan(root)
			if err != nil {
				t.Logf("Scan failed: %v", err)
				return false
			}
			if len(entries) != len(want) {
				t.Logf("expected %d files, got %d", len(want), len(entries))
				return false
			}
			for _, e := range entries {
				rel, ok := want[e.Path]
				if !ok {
					t.Logf("unexpected entry %s", e.Path)
					return false
				}
				if e.RelDir != rel || e.InRoot() != (rel == ".") {
					t.Logf("RelDir for %s = %q, want %q", e.Path, e.RelDir, rel)
					return false
				}
				if e.Dir != filepath.Dir(e.Path) || e.Name != filepath.Base(e.Path) {
					t.Logf("inconsistent entry %+v", e)
					return false
				}
			}
			return true
		},
		genDirectoryStructure(),
	))

	properties.TestingRun(t)
}

func TestScan_NestedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "banner.png"))
	writeFile(t, filepath.Join(root, "04 Hidraulicos", "Foto Principal.JPG"))
	writeFile(t, filepath.Join(root, "04 Hidraulicos", "Bombas", "bomba 1.png"))

	entries, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := map[string]string{}
	for _, e := range entries {
		got[e.Name] = e.RelDir
	}
	want := map[string]string{
		"banner.png":         ".",
		"Foto Principal.JPG": "04 Hidraulicos",
		"bomba 1.png":        filepath.Join("04 Hidraulicos", "Bombas"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RelDirs = %v, want %v", got, want)
	}
}

func TestScan_PathKeepsRootSpelling(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cat", "a.png"))

	entries, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != filepath.Join(root, "cat", "a.png") {
		t.Errorf("entries = %+v", entries)
	}
}

func TestScan_LexicalOrderWithinDirectory(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"c.png", "a.png", "b.png"} {
		writeFile(t, filepath.Join(root, "cat", n))
	}

	entries, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
}

func TestScan_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := Scan(filepath.Join(root, "missing"))
	var scanErr *ScanError
	if !errors.As(err, &scanErr) || scanErr.Type != DirectoryNotFound {
		t.Errorf("missing root: got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing root should unwrap to os.ErrNotExist: %v", err)
	}

	file := filepath.Join(root, "file.png")
	writeFile(t, file)
	_, err = Scan(file)
	if !errors.As(err, &scanErr) || scanErr.Type != DirectoryNotFound {
		t.Errorf("file root: got %v", err)
	}
}

func TestSymlinkPolicyBehavior(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	setup := func(numFiles, numSymlinks int) (string, bool) {
		root := t.TempDir()
		targets := t.TempDir()
		for i := 0; i < numFiles; i++ {
			writeFile(t, filepath.Join(root, "cat", "file_"+strconv.Itoa(i)+".png"))
		}
		for i := 0; i < numSymlinks; i++ {
			target := filepath.Join(targets, "target_"+strconv.Itoa(i)+".png")
			writeFile(t, target)
			if err := os.Symlink(target, filepath.Join(root, "cat", "link_"+strconv.Itoa(i)+".png")); err != nil {
				t.Logf("symlink not supported: %v", err)
				return "", false
			}
		}
		return root, true
	}

	properties.Property("skip policy ignores symlinks", prop.ForAll(
		func(numFiles, numSymlinks int) bool {
			root, ok := setup(numFiles, numSymlinks)
			if !ok {
				return false
			}
			entries, err := ScanWithOptions(root, ScanOptions{SymlinkPolicy: SymlinkPolicySkip})
			return err == nil && len(entries) == numFiles
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.Property("default policy lists links to files", prop.ForAll(
		func(numFiles, numSymlinks int) bool {
			root, ok := setup(numFiles, numSymlinks)
			if !ok {
				return false
			}
			entries, err := Scan(root)
			return err == nil && len(entries) == numFiles+numSymlinks
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.Property("follow policy includes symlinks", prop.ForAll(
		func(numFiles, numSymlinks int) bool {
			root, ok := setup(numFiles, numSymlinks)
			if !ok {
				return false
			}
			entries, err := ScanWithOptions(root, ScanOptions{SymlinkPolicy: SymlinkPolicyFollow})
			return err == nil && len(entries) == numFiles+numSymlinks
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.Property("error policy fails on the first symlink", prop.ForAll(
		func(numFiles, numSymlinks int) bool {
			root, ok := setup(numFiles, numSymlinks)
			if !ok {
				return false
			}
			_, err := ScanWithOptions(root, ScanOptions{SymlinkPolicy: SymlinkPolicyError})
			var scanErr *ScanError
			return errors.As(err, &scanErr) && scanErr.Type == SymlinkError
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}

func TestScan_FollowedSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cat", "a.png"))
	if err := os.Symlink(root, filepath.Join(root, "cat", "loop")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	entries, err := ScanWithOptions(root, ScanOptions{SymlinkPolicy: SymlinkPolicyFollow})
	if err != nil {
		t.Fatalf("ScanWithOptions() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected the cycle to be visited once, got %d entries", len(entries))
	}
}

func TestScan_SymlinkedRootIsFollowed(t *testing.T) {
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "Bombas", "a.png"))
	root := filepath.Join(t.TempDir(), "Pagina web")
	if err := os.Symlink(target, root); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	for _, policy := range []string{SymlinkPolicyFiles, SymlinkPolicyFollow, SymlinkPolicySkip, SymlinkPolicyError} {
		entries, err := ScanWithOptions(root, ScanOptions{SymlinkPolicy: policy})
		if err != nil {
			t.Fatalf("%s: ScanWithOptions() error = %v", policy, err)
		}
		if len(entries) != 1 || entries[0].Path != filepath.Join(root, "Bombas", "a.png") {
			t.Errorf("%s: entries = %+v", policy, entries)
		}
	}
}

func TestScan_DefaultPolicyListsLinkedFilesButNotLinkedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cat", "a.png"))
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "b.png"))

	if err := os.Symlink(filepath.Join(root, "Cat", "a.png"), filepath.Join(root, "Cat", "link.png")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "Cat", "linked-dir")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing.png"), filepath.Join(root, "Cat", "broken.png")); err != nil {
		t.Fatal(err)
	}

	entries, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, []string{"a.png", "link.png"}) {
		t.Errorf("names = %v, want [a.png link.png]", names)
	}

	entries, err = ScanWithOptions(root, ScanOptions{SymlinkPolicy: SymlinkPolicyFollow})
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("follow policy should enter linked directories, got %+v", entries)
	}
}
