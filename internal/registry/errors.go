package registry

import "errors"

// DomainError represents an invalid mathematical input, such as division
// by zero. Domain errors are business-level failures: the lifecycle engine
// converts them into result values and they never escape Execute as
// returned errors.
type DomainError struct {
	// Message is the human-readable description, surfaced verbatim in the
	// calculation result.
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError reports whether err is (or wraps) a DomainError.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
