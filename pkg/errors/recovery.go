// Package errors provides panic recovery for caller supplied code.
//
// Prep tasks are arbitrary user functions; a panic inside one of them must not
// take the host process down, so classifier operations run them under Recover
// and report the panic as an ordinary error.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError represents an error that was created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string

	// Kind classifies the failure for errors.Is checks; KindUnknown by default.
	Kind Kind
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns the sentinel of the panic's kind, or nil for KindUnknown.
func (e *PanicError) Unwrap() error {
	return e.Kind.sentinel()
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover is meant to be deferred with a pointer to the caller's named error
// result. A recovered panic becomes a *PanicError; an error already assigned
// is kept in the chain.
//
// Usage:
//
//	func SomeMethod() (err error) {
//	    defer Recover(&err, "SomeMethod")
//	    // ...
//	    return nil
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		settle(err, operation, r, KindUnknown)
	}
}

// RecoverAs behaves like Recover but tags the resulting PanicError with kind.
func RecoverAs(err *error, operation string, kind Kind) {
	if r := recover(); r != nil {
		settle(err, operation, r, kind)
	}
}

func settle(err *error, operation string, r interface{}, kind Kind) {
	panicErr := NewPanicError(operation, r)
	panicErr.Kind = kind

	if *err != nil {
		*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
		return
	}
	*err = panicErr
}

// SafeExecute executes fn and converts any panic into a *PanicError.
//
// Example:
//
//	err := SafeExecute("prep task 2", func() error {
//	    out = task(in)
//	    return nil
//	})
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
