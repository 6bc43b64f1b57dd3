package viewstate

import (
	"sync"
	"time"
)

// Debouncer runs an action once input has been quiet for a fixed delay.
// Each Trigger stops the pending timer, so only the last action runs.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer with the given quiescence window
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing whatever was pending
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		fire := gen == d.gen
		d.mu.Unlock()
		// a timer that already fired before Stop must not run a replaced action
		if fire {
			fn()
		}
	})
}

// Stop drops the pending action
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Flash clears a transient message after a delay. Showing a new message restarts
// the countdown, so an old timer never clears a newer message.
type Flash struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Show schedules clear to run after ttl, replacing any pending clear
func (f *Flash) Show(ttl time.Duration, clear func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.timer = time.AfterFunc(ttl, func() {
		f.mu.Lock()
		fire := gen == f.gen
		f.mu.Unlock()
		if fire {
			clear()
		}
	})
}

// Stop cancels the pending clear
func (f *Flash) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
}
