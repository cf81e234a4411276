// Package registry holds the immutable operation registry: the pure,
// deterministic arithmetic functions the lifecycle engine dispatches to.
//
// Operations never retain state and never touch the broker. The registry is
// frozen at construction; extension happens by building a new registry with
// With, never by mutating an existing one. This keeps dispatch deterministic
// regardless of how many manager instances share a registry.
package registry

import (
	"fmt"
	"math"
)

// Operation is a pure function over an ordered operand sequence and the
// caller's stored preferences. Domain failures (division by zero) are
// returned as *DomainError; operations never panic on valid input.
type Operation func(operands []float64, prefs Preferences) (float64, error)

// Registry is an immutable name → Operation mapping.
//
// The zero value is empty and unusable; construct with Default or New.
type Registry struct {
	ops map[string]Operation
}

// New builds a registry from the given operation table.
// The map is copied; later mutation of the argument has no effect.
func New(ops map[string]Operation) *Registry {
	cp := make(map[string]Operation, len(ops))
	for name, op := range ops {
		cp[name] = op
	}
	return &Registry{ops: cp}
}

// Default returns the standard arithmetic registry:
// add, subtract, multiply, divide.
func Default() *Registry {
	return New(map[string]Operation{
		"add":      Add,
		"subtract": Subtract,
		"multiply": Multiply,
		"divide":   Divide,
	})
}

// With returns a new registry extended (or overridden) with the given
// operation. The receiver is not modified.
func (r *Registry) With(name string, op Operation) *Registry {
	cp := make(map[string]Operation, len(r.ops)+1)
	for n, o := range r.ops {
		cp[n] = o
	}
	cp[name] = op
	return &Registry{ops: cp}
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Len returns the number of registered operations.
// Used for diagnostics and testing.
func (r *Registry) Len() int {
	return len(r.ops)
}

// Add sums all operands (seed 0). Preferences are ignored.
func Add(operands []float64, _ Preferences) (float64, error) {
	sum := 0.0
	for _, v := range operands {
		sum += v
	}
	return sum, nil
}

// Subtract left-folds: the first operand is the seed, each subsequent
// operand is subtracted from the running value.
func Subtract(operands []float64, _ Preferences) (float64, error) {
	if len(operands) == 0 {
		return 0, &DomainError{Message: "at least one operand is required"}
	}
	acc := operands[0]
	for _, v := range operands[1:] {
		acc -= v
	}
	return acc, nil
}

// Multiply multiplies all operands (seed 1). Preferences are ignored.
func Multiply(operands []float64, _ Preferences) (float64, error) {
	product := 1.0
	for _, v := range operands {
		product *= v
	}
	return product, nil
}

// Divide left-folds a quotient seeded by the first operand.
//
// Any zero-valued operand after the first fails with
// DomainError("Division by zero"). If prefs.Precision is set, the final
// quotient is rounded to that many decimal digits; the rounding mode
// defaults to half-away-from-zero, with RoundingModeHalfEven opting into
// banker's rounding.
func Divide(operands []float64, prefs Preferences) (float64, error) {
	if len(operands) == 0 {
		return 0, &DomainError{Message: "at least one operand is required"}
	}
	quotient := operands[0]
	for _, v := range operands[1:] {
		if v == 0 {
			return 0, &DomainError{Message: "Division by zero"}
		}
		quotient /= v
	}
	if prefs.Precision != nil {
		return roundTo(quotient, *prefs.Precision, prefs.RoundingMode)
	}
	return quotient, nil
}

// roundTo rounds v to digits decimal places using the named mode.
func roundTo(v float64, digits int, mode string) (float64, error) {
	if digits < 0 {
		return 0, &DomainError{Message: fmt.Sprintf("precision must be non-negative, got %d", digits)}
	}
	scale := math.Pow10(digits)
	switch mode {
	case "", RoundingModeHalfAway:
		// math.Round is half-away-from-zero.
		return math.Round(v*scale) / scale, nil
	case RoundingModeHalfEven:
		return math.RoundToEven(v*scale) / scale, nil
	default:
		return 0, &DomainError{Message: fmt.Sprintf("unknown rounding mode %q", mode)}
	}
}
