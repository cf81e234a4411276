package lifecycle

import "time"

// Clock supplies wall time and fire-once timers to a Manager.
//
// The engine never reaches into ambient time globals directly; the clock is
// an injected collaborator so tests can simulate expiry deterministically
// instead of waiting on real time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arranges for fn to run once, on its own goroutine, after d
	// has elapsed, and returns a handle to cancel it.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable fire-once timer handle.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired or was
	// already stopped.
	Stop() bool
}

// WallClock is the production Clock backed by the time package.
type WallClock struct{}

// Now implements Clock.
func (WallClock) Now() time.Time {
	return time.Now()
}

// AfterFunc implements Clock.
func (WallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return wallTimer{t: time.AfterFunc(d, fn)}
}

type wallTimer struct {
	t *time.Timer
}

func (w wallTimer) Stop() bool {
	return w.t.Stop()
}
