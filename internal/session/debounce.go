package session

import (
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of calls, delay after the burst
// ends. Every Trigger cancels the pending call.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn and cancels any call scheduled before
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		// A timer that already fired when Stop was called must not run
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
