package lifecycle

import (
	"errors"
	"fmt"
)

// LifecycleError represents a programmer-contract violation: executing a
// dissolved instance, manifesting an invalid intent, or exceeding the
// instance's sealed capability grants.
//
// Contract violations indicate a bug in the caller, not a legitimate
// input, so they are returned as hard errors - unlike domain failures,
// which are always represented as result values.
type LifecycleError struct {
	// Code identifies the violation category.
	Code LifecycleErrorCode

	// Message is a human-readable description.
	Message string

	// TaskID identifies the affected instance, when known.
	TaskID string
}

// LifecycleErrorCode categorizes contract violations.
type LifecycleErrorCode string

const (
	// ErrCodeDissolved indicates Execute was called on an instance that is
	// no longer Active, or that dissolution completed while an execution
	// was in flight and its result was discarded.
	ErrCodeDissolved LifecycleErrorCode = "DISSOLVED"

	// ErrCodeInvalidIntent indicates a task intent that violates the
	// construction contract (no operation name, no operands).
	ErrCodeInvalidIntent LifecycleErrorCode = "INVALID_INTENT"

	// ErrCodeCapabilityDenied indicates an access outside the instance's
	// sealed capability grants.
	ErrCodeCapabilityDenied LifecycleErrorCode = "CAPABILITY_DENIED"
)

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.TaskID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDissolvedError returns true if the error is a DISSOLVED contract
// violation. Uses errors.As to handle wrapped errors.
func IsDissolvedError(err error) bool {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Code == ErrCodeDissolved
	}
	return false
}

// IsInvalidIntentError returns true if the error is an INVALID_INTENT
// contract violation.
func IsInvalidIntentError(err error) bool {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Code == ErrCodeInvalidIntent
	}
	return false
}

// IsCapabilityDeniedError returns true if the error is a CAPABILITY_DENIED
// contract violation.
func IsCapabilityDeniedError(err error) bool {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Code == ErrCodeCapabilityDenied
	}
	return false
}
