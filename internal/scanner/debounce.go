package scanner

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It returns false if it already ran or is
	// running.
	Stop() bool
}

// Clock schedules callbacks. It exists so tests can drive time by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock schedules callbacks on the runtime timer.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer coalesces bursts of triggers into a single call of fn, delay after
// the last trigger. Trigger must be called from the owner's event loop; the
// timer callback goes back to that loop through post, so fn runs there too.
type Debouncer struct {
	clock Clock
	delay time.Duration
	post  func(task func()) error
	fn    func()

	timer Timer
	seq   uint64
}

// NewDebouncer creates a Debouncer.
func NewDebouncer(clock Clock, delay time.Duration, post func(task func()) error, fn func()) *Debouncer {
	return &Debouncer{clock: clock, delay: delay, post: post, fn: fn}
}

// Trigger (re)arms the timer. It returns true when no call was pending, i.e.
// when this trigger starts a new burst.
func (d *Debouncer) Trigger() bool {
	d.seq++
	seq := d.seq
	started := d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		_ = d.post(func() {
			// a later Trigger superseded this one
			if seq != d.seq {
				return
			}
			d.timer = nil
			d.fn()
		})
	})
	return started
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool { return d.timer != nil }

// Stop cancels any scheduled call.
func (d *Debouncer) Stop() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
