package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path: the callback runs once,
// delay after the last Add for that path.
type Debouncer struct {
	delay    time.Duration
	pending  map[string]*time.Timer
	callback func(path string)
	stopped  bool
	mu       sync.Mutex
}

// NewDebouncer creates a Debouncer that calls callback for each settled path.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]*time.Timer),
		callback: callback,
	}
}

// Add schedules path, restarting its timer if it is already pending.
// Add is a no-op after Stop.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if timer, ok := d.pending[path]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer Add may have replaced this timer.
		if d.pending[path] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.pending, path)
		d.mu.Unlock()

		if d.callback != nil {
			d.callback(path)
		}
	})
	d.pending[path] = timer
}

// Cancel drops a pending path.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.pending[path]; ok {
		timer.Stop()
		delete(d.pending, path)
	}
}

// Stop cancels every pending path and rejects further Adds.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, timer := range d.pending {
		timer.Stop()
		delete(d.pending, path)
	}
}

// Pending returns the number of paths waiting for their timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
