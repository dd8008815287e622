// Package debounce coalesces bursts of calls into a single call made after a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the latest submitted func once no other func was submitted for delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	pending chan bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn and returns a channel that receives true once fn has run,
// or false if a later call to Do (or Stop) superseded it.
func (d *Debouncer) Do(fn func()) <-chan bool {
	done := make(chan bool, 1)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.seq++
	seq := d.seq
	d.pending = done
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.mu.Unlock()

		fn()
		done <- true
	})
	return done
}

// Stop cancels the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.seq++
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.pending != nil {
		d.pending <- false
		d.pending = nil
	}
}
