// Package testutil provides deterministic substitutes for the engine's
// injectable collaborators, so tests never wait on real wall-clock time.
package testutil

import (
	"sync"
	"time"

	"github.com/roach88/ephemera/internal/lifecycle"
)

// ManualClock is a lifecycle.Clock whose time only moves when the test
// calls Advance. Timers scheduled through AfterFunc fire synchronously,
// in deadline order, during the Advance call that reaches them.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex. Callbacks run with the clock lock released.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current frozen time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules fn to fire when the clock advances past d from now.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) lifecycle.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d and fires every pending timer whose
// deadline has been reached, in deadline order. Callbacks run on the
// caller's goroutine before Advance returns, so a test can assert on their
// effects immediately.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*manualTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
	c.mu.Unlock()

	// Selection by earliest deadline keeps multi-timer tests deterministic.
	for i := 0; i < len(due); i++ {
		min := i
		for j := i + 1; j < len(due); j++ {
			if due[j].deadline.Before(due[min].deadline) {
				min = j
			}
		}
		due[i], due[min] = due[min], due[i]
		due[i].fn()
	}
}

// Pending returns the number of armed, unfired timers. Used to assert the
// single-timer invariant.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer. Returns false if it already fired or was
// already stopped.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
