// Package manifest describes a migrated destination tree as a list of
// categories and their images, ready for a database seeder to consume.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rwcarlsen/goexif/exif"

	"landingmig/internal/normalizer"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for an output format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown manifest format")

// Manifest lists every category of a destination tree.
type Manifest struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Category is one destination subdirectory.
type Category struct {
	Slug        string  `json:"slug" yaml:"slug"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Images      []Image `json:"images" yaml:"images"`
}

// Image is one file inside a category.
type Image struct {
	File        string     `json:"file" yaml:"file"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Path        string     `json:"path" yaml:"path"` // Public path, e.g. landing/hidraulicos/bomba.png
	Width       int        `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int        `json:"height,omitempty" yaml:"height,omitempty"`
	CapturedAt  *time.Time `json:"capturedAt,omitempty" yaml:"capturedAt,omitempty"`
}

// Build reads destRoot and returns its manifest. Every non-hidden
// subdirectory is a category and every non-hidden regular file directly
// inside it is an image; deeper levels are ignored. Image paths are
// publicPrefix/category/file with forward slashes.
func Build(destRoot, publicPrefix string) (*Manifest, error) {
	dirs, err := os.ReadDir(destRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read destination root: %w", err)
	}

	m := &Manifest{Categories: []Category{}}
	for _, dir := range dirs {
		if !dir.IsDir() || hidden(dir.Name()) {
			continue
		}
		category, err := buildCategory(filepath.Join(destRoot, dir.Name()), dir.Name(), publicPrefix)
		if err != nil {
			return nil, err
		}
		m.Categories = append(m.Categories, category)
	}
	return m, nil
}

func buildCategory(dir, slug, publicPrefix string) (Category, error) {
	title := normalizer.Title(slug)
	c := Category{
		Slug:        slug,
		Title:       title,
		Description: fmt.Sprintf("Todo en %s para maquinaria pesada.", title),
		Images:      []Image{},
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return c, fmt.Errorf("failed to read category %s: %w", slug, err)
	}
	for _, f := range files {
		if !f.Type().IsRegular() || hidden(f.Name()) {
			continue
		}
		img, err := describe(filepath.Join(dir, f.Name()))
		if err != nil {
			return c, err
		}
		img.File = f.Name()
		img.Title = normalizer.Title(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		img.Description = fmt.Sprintf("Repuesto de alta calidad: %s", img.Title)
		img.Path = path.Join(publicPrefix, slug, f.Name())
		c.Images = append(c.Images, img)
	}
	return c, nil
}

// describe reads dimensions and, for JPEG files, the EXIF capture time.
// Formats the image package cannot decode (SVG) have no dimensions.
func describe(file string) (Image, error) {
	var img Image

	f, err := os.Open(file)
	if err != nil {
		return img, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".jpg", ".jpeg":
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return img, fmt.Errorf("failed to rewind image: %w", err)
		}
		if t, ok := captureTime(f); ok {
			img.CapturedAt = &t
		}
	}
	return img, nil
}

func captureTime(r io.Reader) (time.Time, bool) {
	x, err := exif.Decode(r)
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Encode writes m to w as JSON or YAML.
func Encode(m *Manifest, w io.Writer, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// FormatForPath picks the format from a file name: .yaml and .yml are YAML,
// everything else JSON.
func FormatForPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// WriteFile encodes m into the file at p, choosing the format from its name.
func WriteFile(m *Manifest, p string) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	if err := Encode(m, f, FormatForPath(p)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Count returns the total number of images.
func (m *Manifest) Count() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Images)
	}
	return n
}
