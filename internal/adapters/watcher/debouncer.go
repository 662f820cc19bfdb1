// Package watcher turns file system changes below the project root into
// debounced rebuild triggers.
package watcher

import (
	"cmp"
	"slices"
	"sync"
	"time"
	"unique"

	"go.trai.ch/pack/internal/core/ports"
)

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 100 * time.Millisecond

// change is the net effect of the events seen for one path in a window.
type change struct {
	first ports.WatchOp
	last  ports.WatchOp
}

// transient reports whether the path appeared and vanished again within the
// window, as editor swap files and atomic-save temporaries do.
func (c change) transient() bool {
	return c.first == ports.OpCreate && (c.last == ports.OpRemove || c.last == ports.OpRename)
}

// Debouncer coalesces rapid file system events into one rebuild trigger.
// Each path is reported once, with its latest operation. Paths that were
// created and removed within the same window are dropped, and a window that
// only held such paths triggers nothing.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]change
	timer    *time.Timer
	window   time.Duration
	callback func(changes []ports.WatchEvent)
}

// NewDebouncer creates a debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(changes []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]change),
		window:   window,
		callback: callback,
	}
}

// Add records event and restarts the window.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := unique.Make(event.Path)
	c, seen := d.pending[key]
	if !seen {
		c.first = event.Operation
	}
	c.last = event.Operation
	d.pending[key] = c

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	changes := d.drainLocked()
	d.timer = nil
	d.mu.Unlock()

	if len(changes) > 0 && d.callback != nil {
		go d.callback(changes)
	}
}

// Flush runs the callback with all pending changes and blocks until it returns.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Timer already fired.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}

	changes := d.drainLocked()
	d.mu.Unlock()

	if len(changes) > 0 && d.callback != nil {
		d.callback(changes)
	}
}

// drainLocked returns the pending changes sorted by path and clears the set.
func (d *Debouncer) drainLocked() []ports.WatchEvent {
	changes := make([]ports.WatchEvent, 0, len(d.pending))
	for handle, c := range d.pending {
		if c.transient() {
			continue
		}
		changes = append(changes, ports.WatchEvent{Path: handle.Value(), Operation: c.last})
	}
	clear(d.pending)
	slices.SortFunc(changes, func(a, b ports.WatchEvent) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return changes
}
