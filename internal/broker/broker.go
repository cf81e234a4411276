// Package broker defines the state access broker contract: an
// externally-owned key/value store exposing scoped, path-addressed
// read/write/delete plus a live count of in-flight accesses ("handles").
//
// The lifecycle engine depends on this contract but never owns the store.
// Its only obligations toward a broker are: at most one Read per Execute,
// at a fixed configured path; never Write or Delete; never enumerate paths.
// The broker alone is responsible for handle accounting and for concurrency
// safety of the underlying store.
//
// Three reference backends are provided - memory (tests, demos), sqlite
// (durable single-file) and badger (embedded LSM) - all opaque to the
// engine.
package broker

import (
	"context"
	"sync/atomic"
)

// Broker is the state access contract.
//
// Read returns (value, true, nil) when the path holds a value and
// (nil, false, nil) when it does not; an absent value is not an error.
// All operations count against ActiveHandles for the duration of the call.
type Broker interface {
	// Read fetches the value stored at path.
	Read(ctx context.Context, path string) (value []byte, ok bool, err error)

	// Write stores value at path, replacing any previous value.
	Write(ctx context.Context, path string, value []byte) error

	// Delete removes the value at path. Deleting an absent path is a no-op.
	Delete(ctx context.Context, path string) error

	// ActiveHandles returns the number of operations currently in flight.
	// With nothing in flight the count is exactly 0.
	ActiveHandles() int64

	// Close releases the underlying store.
	Close() error
}

// handles is the shared in-flight access counter embedded by every backend.
//
// acquire increments the counter and returns the matching release; backends
// defer the release so the decrement lands only after the operation's tail
// completes, whatever path the operation exits through.
type handles struct {
	n atomic.Int64
}

func (h *handles) acquire() (release func()) {
	h.n.Add(1)
	return func() { h.n.Add(-1) }
}

// ActiveHandles returns the current in-flight access count.
func (h *handles) ActiveHandles() int64 {
	return h.n.Load()
}
