// Package debounce provides a trailing-edge trigger that coalesces
// bursts of events into a single callback invocation.
package debounce

import (
	"sync"
	"time"
)

// Trigger delays a callback until a quiet period follows the last Touch.
// Repeated touches within the delay window restart the timer, so a burst
// of events produces exactly one invocation.
//
// Trigger is safe for concurrent use.
type Trigger struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

// New creates a trigger that invokes fn after delay of quiet.
func New(delay time.Duration, fn func()) *Trigger {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Trigger{
		delay: delay,
		fn:    fn,
	}
}

// Touch schedules (or reschedules) the callback.
// Any pending invocation is defused and the delay restarts.
func (t *Trigger) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, t.fire)
}

// fire runs the callback if the trigger is still live.
func (t *Trigger) fire() {
	t.mu.Lock()
	if t.stopped || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	fn := t.fn
	t.mu.Unlock()

	fn()
}

// Cancel defuses any pending invocation without stopping the trigger.
func (t *Trigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Flush runs the callback immediately if an invocation is pending.
func (t *Trigger) Flush() {
	t.mu.Lock()
	if t.stopped || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer.Stop()
	t.timer = nil
	fn := t.fn
	t.mu.Unlock()

	fn()
}

// Pending returns true if an invocation is scheduled.
func (t *Trigger) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop permanently disables the trigger and defuses any pending
// invocation. A stopped trigger ignores further touches.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
