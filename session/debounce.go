package session

import (
	"sync"
	"time"
)

// Timer is a scheduled call that can be cancelled.
type Timer interface {
	// Stop cancels the call. It reports false if the call already ran.
	Stop() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Clock schedules with the time package.
var Clock Scheduler = clock{}

// Debouncer collapses bursts of triggers into a single call of fn, run once
// no trigger happened for the quiet window.
//
// At most one call is pending at any time. A pending call that lost the race
// against a newer Trigger, Flush or Stop never runs.
type Debouncer struct {
	sched Scheduler
	wait  time.Duration
	fn    func()

	mu      sync.Mutex
	timer   Timer
	gen     uint64 // identifies the pending call
	stopped bool
}

// NewDebouncer returns a Debouncer calling fn after wait. A nil sched uses Clock.
func NewDebouncer(sched Scheduler, wait time.Duration, fn func()) *Debouncer {
	if sched == nil {
		sched = Clock
	}
	return &Debouncer{sched: sched, wait: wait, fn: fn}
}

// Trigger cancels the pending call and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancel()
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Flush cancels the pending call and runs fn now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.fn()
}

// Stop cancels the pending call. Later triggers and flushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancel()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// cancel must be called with mu held.
func (d *Debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}
