// Package scanner enumerates the files below a source root for landingmig.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was encountered with "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
	// ReadError covers any other failure while reading a directory.
	ReadError ScanErrorType = "READ_ERROR"
)

// Symlink policies for entries below the root. The root itself is always
// resolved.
const (
	SymlinkPolicyFiles  = "files"  // list links to files, do not descend into linked directories
	SymlinkPolicyFollow = "follow" // list linked files and descend into linked directories
	SymlinkPolicySkip   = "skip"   // ignore every link
	SymlinkPolicyError  = "error"  // fail on the first link
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	SymlinkPolicy string // "files", "follow", "skip" or "error"
}

// DefaultScanOptions returns the default scan options: links to files are
// listed, linked directories are not entered.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SymlinkPolicy: SymlinkPolicyFiles,
	}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name   string // Filename only
	Path   string // Root joined with the relative path, as the user spelled the root
	Dir    string // Directory holding the file (filepath.Dir(Path))
	RelDir string // Dir relative to the scan root; "." for files directly in the root
}

// InRoot reports whether the file sits directly in the scan root.
func (f FileEntry) InRoot() bool {
	return f.RelDir == "."
}

// Scan enumerates every file below directory with default options.
func Scan(directory string) ([]FileEntry, error) {
	return ScanWithOptions(directory, DefaultScanOptions())
}

// ScanWithOptions scans directory with configurable options. A symlinked
// root is followed under every policy. Entries of a directory come in
// lexical order; any read failure aborts the scan.
func ScanWithOptions(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, classify(directory, err)
	}

	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	s := &walk{
		root:    directory,
		opts:    opts,
		visited: make(map[string]bool),
	}
	files := []FileEntry{}
	if err := s.scanDirectory(directory, &files); err != nil {
		return nil, err
	}
	return files, nil
}

type walk struct {
	root    string
	opts    ScanOptions
	visited map[string]bool // resolved directories, guards symlink cycles
}

// scanDirectory recursively scans a directory.
func (s *walk) scanDirectory(directory string, files *[]FileEntry) error {
	if real, err := filepath.EvalSymlinks(directory); err == nil {
		if s.visited[real] {
			return nil
		}
		s.visited[real] = true
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return classify(directory, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())

		info, err := os.Lstat(fullPath)
		if err != nil {
			return classify(fullPath, err)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			switch s.opts.SymlinkPolicy {
			case SymlinkPolicyError:
				return &ScanError{
					Type: SymlinkError,
					Path: fullPath,
					Err:  errors.New("symlink encountered with error policy"),
				}
			case SymlinkPolicySkip:
				continue
			}
			info, err = os.Stat(fullPath)
			if err != nil {
				continue // broken symlink
			}
			if info.IsDir() && s.opts.SymlinkPolicy != SymlinkPolicyFollow {
				continue
			}
		}

		if info.IsDir() {
			if err := s.scanDirectory(fullPath, files); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		rel, err := filepath.Rel(s.root, directory)
		if err != nil {
			return &ScanError{Type: ReadError, Path: directory, Err: err}
		}
		*files = append(*files, FileEntry{
			Name:   entry.Name(),
			Path:   fullPath,
			Dir:    directory,
			RelDir: rel,
		})
	}

	return nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &ScanError{Type: DirectoryNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &ScanError{Type: ReadError, Path: path, Err: err}
	}
}
