package lifecycle

import (
	"context"
	"fmt"

	"github.com/roach88/ephemera/internal/broker"
)

// Capabilities is the sealed grant set declared at manifestation.
//
// The set is fixed for the life of the instance: there is no API to widen
// it after Manifest returns. Grants are enforced mechanically - every
// broker access during Execute goes through a guard that counts against
// them - rather than by inspecting implementation text.
type Capabilities struct {
	// Timers is the number of fire-once timers the instance may arm.
	Timers int

	// ReadsPerExecute is the number of broker reads allowed within a
	// single Execute call.
	ReadsPerExecute int

	// Writes is the number of broker writes the instance may issue.
	Writes int

	// Deletes is the number of broker deletes the instance may issue.
	Deletes int
}

// DefaultCapabilities is the grant set the engine requires: exactly one
// dissolution timer, one preference read per execution, and no store
// mutation at all.
func DefaultCapabilities() Capabilities {
	return Capabilities{Timers: 1, ReadsPerExecute: 1}
}

// guardedBroker wraps a caller-supplied broker and enforces the sealed
// capability grants for one Execute call. A fresh guard is created per
// call, so ReadsPerExecute resets between executions.
type guardedBroker struct {
	inner  broker.Broker
	grants Capabilities
	taskID string
	reads  int
	writes int
	dels   int
}

func newGuardedBroker(inner broker.Broker, grants Capabilities, taskID string) *guardedBroker {
	return &guardedBroker{inner: inner, grants: grants, taskID: taskID}
}

func (g *guardedBroker) Read(ctx context.Context, path string) ([]byte, bool, error) {
	if g.reads >= g.grants.ReadsPerExecute {
		return nil, false, &LifecycleError{
			Code:    ErrCodeCapabilityDenied,
			Message: fmt.Sprintf("read capability exhausted (%d granted per execution)", g.grants.ReadsPerExecute),
			TaskID:  g.taskID,
		}
	}
	g.reads++
	return g.inner.Read(ctx, path)
}

func (g *guardedBroker) Write(ctx context.Context, path string, value []byte) error {
	if g.writes >= g.grants.Writes {
		return &LifecycleError{
			Code:    ErrCodeCapabilityDenied,
			Message: fmt.Sprintf("write capability exhausted (%d granted)", g.grants.Writes),
			TaskID:  g.taskID,
		}
	}
	g.writes++
	return g.inner.Write(ctx, path, value)
}

func (g *guardedBroker) Delete(ctx context.Context, path string) error {
	if g.dels >= g.grants.Deletes {
		return &LifecycleError{
			Code:    ErrCodeCapabilityDenied,
			Message: fmt.Sprintf("delete capability exhausted (%d granted)", g.grants.Deletes),
			TaskID:  g.taskID,
		}
	}
	g.dels++
	return g.inner.Delete(ctx, path)
}

func (g *guardedBroker) ActiveHandles() int64 {
	return g.inner.ActiveHandles()
}

func (g *guardedBroker) Close() error {
	// The guard never owns the underlying store.
	return nil
}
