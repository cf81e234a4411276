package testutil

import "sync/atomic"

// RecordingReclaimer counts reclamation hints so tests can assert the
// dissolution path issued one without forcing a real collection.
type RecordingReclaimer struct {
	hints atomic.Int64
}

// Hint implements sweep.Reclaimer.
func (r *RecordingReclaimer) Hint() {
	r.hints.Add(1)
}

// Hints returns the number of hints issued so far.
func (r *RecordingReclaimer) Hints() int64 {
	return r.hints.Load()
}
