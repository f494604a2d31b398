package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// CaptureIdentity computes the SHA-256 hash, size and modification time of
// the file at path.
func CaptureIdentity(path string) (*FileIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	hash, err := computeSHA256(path)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &FileIdentity{
		ContentHash: hash,
		Size:        info.Size(),
		ModTime:     info.ModTime().UTC(),
	}, nil
}

// SameContent reports whether two files have identical size and SHA-256 hash.
func SameContent(a, b string) (bool, error) {
	ia, err := CaptureIdentity(a)
	if err != nil {
		return false, err
	}
	ib, err := CaptureIdentity(b)
	if err != nil {
		return false, err
	}
	return ia.Size == ib.Size && ia.ContentHash == ib.ContentHash, nil
}

func computeSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
