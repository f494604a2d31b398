// Package organizer creates category directories and copies images into them.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// CopyErrorType represents the type of copy error.
type CopyErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound CopyErrorType = "SOURCE_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied CopyErrorType = "PERMISSION_DENIED"
	// NotADirectory indicates a destination directory path is taken by a file.
	NotADirectory CopyErrorType = "NOT_A_DIRECTORY"
	// WriteFailed covers any other failure while reading, writing or
	// applying metadata.
	WriteFailed CopyErrorType = "WRITE_FAILED"
	// SameFile indicates the source and destination are the same file.
	SameFile CopyErrorType = "SAME_FILE"
)

// CopyError represents an error that occurred while copying a file.
type CopyError struct {
	Type CopyErrorType
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// CopyResult represents the result of a successful copy.
type CopyResult struct {
	SourcePath      string
	DestinationPath string
	Bytes           int64
	Overwritten     bool // True if a file already existed at DestinationPath
}

// EnsureDir creates dir and any missing parents. It is a no-op when dir
// already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return classify(dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return classify(dir, err)
	}
	if !info.IsDir() {
		return &CopyError{Type: NotADirectory, Path: dir}
	}
	return nil
}

// Copy copies src to dst together with its permission bits and its access
// and modification times. An existing file at dst is overwritten unless it
// is src itself, which fails with SameFile and leaves the file untouched.
// The parent directory of dst must already exist.
func Copy(src, dst string) (*CopyResult, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, classify(src, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return nil, &CopyError{Type: WriteFailed, Path: src, Err: errors.New("not a regular file")}
	}

	overwritten := false
	if dstInfo, err := os.Stat(dst); err == nil {
		if dstInfo.IsDir() {
			return nil, &CopyError{Type: WriteFailed, Path: dst, Err: errors.New("destination is a directory")}
		}
		if os.SameFile(srcInfo, dstInfo) {
			return nil, &CopyError{Type: SameFile, Path: dst, Err: errors.New("source and destination are the same file")}
		}
		overwritten = true
	}

	n, err := copyContent(src, dst, srcInfo.Mode().Perm())
	if err != nil {
		return nil, err
	}

	if err := copyMetadata(src, dst, srcInfo); err != nil {
		return nil, err
	}

	return &CopyResult{
		SourcePath:      src,
		DestinationPath: dst,
		Bytes:           n,
		Overwritten:     overwritten,
	}, nil
}

func copyContent(src, dst string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, classify(src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, classify(dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, &CopyError{Type: WriteFailed, Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return n, &CopyError{Type: WriteFailed, Path: dst, Err: err}
	}
	return n, nil
}

// copyMetadata applies the source mode and times to dst. OpenFile only uses
// perm when it creates the file and is subject to the umask, so the mode is
// always set explicitly.
func copyMetadata(src, dst string, srcInfo fs.FileInfo) error {
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return classify(dst, err)
	}
	atime := accessTime(src, srcInfo)
	if err := os.Chtimes(dst, atime, srcInfo.ModTime()); err != nil {
		return classify(dst, err)
	}
	return nil
}

// classify wraps a filesystem error in a CopyError of the matching type.
func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &CopyError{Type: SourceNotFound, Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &CopyError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &CopyError{Type: WriteFailed, Path: path, Err: err}
	}
}
