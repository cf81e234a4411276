package sweep

import "runtime/debug"

// Reclaimer is the injectable memory-reclamation hint issued after a sweep.
//
// The hint is strictly best-effort: no guarantee of immediate or eventual
// reclamation is implied by the contract. Tests substitute a recording
// implementation to assert the hint was issued without touching the real
// runtime.
type Reclaimer interface {
	// Hint asks the runtime to reclaim freed memory. Must not block the
	// caller.
	Hint()
}

// RuntimeReclaimer hints the Go runtime via debug.FreeOSMemory.
//
// FreeOSMemory forces a collection, so the call is pushed onto its own
// goroutine to keep dissolution non-blocking.
type RuntimeReclaimer struct{}

// Hint implements Reclaimer.
func (RuntimeReclaimer) Hint() {
	go debug.FreeOSMemory()
}

// NopReclaimer ignores hints. Useful where forcing collections is
// undesirable (benchmarks, latency-sensitive embedders).
type NopReclaimer struct{}

// Hint implements Reclaimer.
func (NopReclaimer) Hint() {}
