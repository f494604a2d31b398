package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"
)

// ErrFileNotFound is returned when the file disappears before it settles.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file does not stabilize within the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits until a file stops growing before it is copied.
type StabilityChecker struct {
	threshold time.Duration // Size must stay unchanged this long
	timeout   time.Duration
	interval  time.Duration
}

// NewStabilityChecker creates a checker with a 30 second timeout, polling
// every threshold/4 (at least every 50ms).
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return NewStabilityCheckerWithOptions(threshold, 30*time.Second, interval)
}

// NewStabilityCheckerWithOptions creates a checker with explicit timing.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

// WaitForStable blocks until the size and modification time of path have
// not changed for the threshold. It returns ErrFileNotFound if the file
// goes away, ErrFileUnstable on timeout and ctx.Err() on cancellation.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	last, err := sample(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			current, err := sample(path)
			if err != nil {
				return err
			}
			if current.changedFrom(last) {
				last = current
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

type fileState struct {
	size    int64
	modTime time.Time
}

func (f fileState) changedFrom(prev fileState) bool {
	return f.size != prev.size || !f.modTime.Equal(prev.modTime)
}

func sample(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileState{}, ErrFileNotFound
		}
		return fileState{}, err
	}
	return fileState{size: info.Size(), modTime: info.ModTime()}, nil
}
