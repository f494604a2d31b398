// Package watcher keeps a destination tree in sync by migrating images as
// they are created or rewritten below the source root.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"landingmig/internal/config"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration // Quiet period after the last event for a file
	StableThreshold time.Duration // How long the size must stay unchanged
	IgnorePatterns  []string      // Glob patterns matched against base names
}

// DefaultWatchConfig returns a WatchConfig with the default timings.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
		IgnorePatterns:  DefaultIgnorePatterns(),
	}
}

// ConfigFromSettings converts configuration file settings. Nil settings
// give the defaults.
func ConfigFromSettings(s *config.WatchSettings) *WatchConfig {
	cfg := DefaultWatchConfig()
	if s == nil {
		return cfg
	}
	if s.DebounceMs > 0 {
		cfg.Debounce = time.Duration(s.DebounceMs) * time.Millisecond
	}
	if s.StableThresholdMs > 0 {
		cfg.StableThreshold = time.Duration(s.StableThresholdMs) * time.Millisecond
	}
	if len(s.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = s.IgnorePatterns
	}
	return cfg
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	FilesCopied  int
	FilesSkipped int // Ignored by pattern or not migrated by the handler
	Errors       int
	Duration     time.Duration
}

// FileHandler migrates one settled file. copied reports whether the file
// was copied to the destination.
type FileHandler func(path string) (copied bool, err error)

// ErrorHandler receives errors the watcher recovers from.
type ErrorHandler func(path string, err error)

// Watcher monitors a source tree for new or rewritten files.
type Watcher struct {
	config     *WatchConfig
	handler    FileHandler
	onError    ErrorHandler
	fsWatcher  *fsnotify.Watcher
	filter     *FileFilter
	debouncer  *Debouncer
	stability  *StabilityChecker
	ctx        context.Context
	cancel     context.CancelFunc
	eventsDone sync.WaitGroup
	inflight   sync.WaitGroup
	handleMu   sync.Mutex // Serializes handler calls
	startTime  time.Time

	mu           sync.Mutex
	stopped      bool
	filesCopied  int
	filesSkipped int
	errors       int
}

// New creates a Watcher. A nil config selects DefaultWatchConfig.
func New(cfg *WatchConfig, handler FileHandler) *Watcher {
	if cfg == nil {
		cfg = DefaultWatchConfig()
	}
	w := &Watcher{
		config:    cfg,
		handler:   handler,
		filter:    NewFileFilter(cfg.IgnorePatterns),
		stability: NewStabilityChecker(cfg.StableThreshold),
	}
	w.debouncer = NewDebouncer(cfg.Debounce, w.process)
	return w
}

// OnError installs a handler for recoverable errors: handler failures,
// unstable files and fsnotify errors. The watcher keeps running after them.
func (w *Watcher) OnError(h ErrorHandler) {
	w.onError = h
}

// Start watches root and every directory below it until ctx is cancelled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}

	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.addTree(root, false); err != nil {
		w.fsWatcher.Close()
		return err
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.startTime = time.Now()

	w.eventsDone.Add(1)
	go w.processEvents()

	return nil
}

// Stop shuts the watcher down, waits for an in-flight copy to finish and
// returns a summary of the session.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	alreadyStopped := w.stopped
	w.stopped = true
	w.mu.Unlock()

	if !alreadyStopped && w.fsWatcher != nil {
		w.cancel()
		w.debouncer.Stop()
		w.fsWatcher.Close()
		w.eventsDone.Wait()
		w.inflight.Wait()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	summary := &WatchSummary{
		FilesCopied:  w.filesCopied,
		FilesSkipped: w.filesSkipped,
		Errors:       w.errors,
	}
	if !w.startTime.IsZero() {
		summary.Duration = time.Since(w.startTime)
	}
	return summary
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.eventsDone.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError("", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.debouncer.Cancel(event.Name)

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// Files may already be inside a directory that was moved in.
			if err := w.addTree(event.Name, true); err != nil {
				w.reportError(event.Name, err)
			}
			return
		}
		w.enqueue(event.Name, event.Has(fsnotify.Create))
	}
}

// enqueue debounces a file unless it matches an ignore pattern. Ignored
// files are counted once, on creation.
func (w *Watcher) enqueue(path string, created bool) {
	if w.filter.ShouldIgnore(path) {
		if created {
			w.mu.Lock()
			w.filesSkipped++
			w.mu.Unlock()
		}
		return
	}
	w.debouncer.Add(path)
}

// addTree watches dir and its subdirectories. With enqueueFiles set, files
// already present are scheduled as if they had just been created.
func (w *Watcher) addTree(dir string, enqueueFiles bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsWatcher.Add(path)
		}
		if enqueueFiles && d.Type().IsRegular() {
			w.enqueue(path, true)
		}
		return nil
	})
}

// process runs on the debouncer's timer goroutine once a path settles.
func (w *Watcher) process(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if err := w.stability.WaitForStable(w.ctx, path); err != nil {
		if errors.Is(err, ErrFileNotFound) || errors.Is(err, context.Canceled) {
			return
		}
		w.reportError(path, err)
		return
	}

	if w.handler == nil {
		return
	}

	w.handleMu.Lock()
	copied, err := w.handler(path)
	w.handleMu.Unlock()

	if err != nil {
		w.reportError(path, err)
		return
	}
	w.mu.Lock()
	if copied {
		w.filesCopied++
	} else {
		w.filesSkipped++
	}
	w.mu.Unlock()
}

func (w *Watcher) reportError(path string, err error) {
	w.mu.Lock()
	w.errors++
	w.mu.Unlock()
	if w.onError != nil {
		w.onError(path, err)
	}
}

// Config returns the watcher configuration.
func (w *Watcher) Config() *WatchConfig {
	return w.config
}
