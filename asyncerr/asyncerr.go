// Package asyncerr defines the error taxonomy shared by every async
// primitive: Cancelled, ContextDeallocated, and UserError (any error
// raised from caller-supplied code, carried verbatim).
package asyncerr

import (
	"github.com/pkg/errors"
)

// Cancelled is reported by a Future that was explicitly cancelled, or
// whose CancellationToken fired before completion.
var Cancelled = errors.New("asyncninja: cancelled")

// ContextDeallocated is reported by a Future bound to an ExecutionContext
// that was destroyed before the Future completed.
var ContextDeallocated = errors.New("asyncninja: execution context deallocated")

// UserError wraps an error raised by caller-supplied code (a thunk, a
// miss handler, a combine function) so it can travel through the async
// chains without losing its stack trace.
type UserError struct {
	cause error
}

// NewUserError wraps err as a UserError. Returns nil if err is nil.
func NewUserError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*UserError); ok {
		return err
	}
	return &UserError{cause: errors.WithStack(err)}
}

// Error implements the error interface.
func (e *UserError) Error() string { return e.cause.Error() }

// Cause returns the wrapped error, for github.com/pkg/errors.Cause and
// errors.Unwrap-style callers.
func (e *UserError) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *UserError) Unwrap() error { return e.cause }

// FromRecover converts a recovered panic value into a UserError. Intended
// to be called from a deferred recover() inside any thunk evaluation.
func FromRecover(r interface{}) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(error); ok {
		return NewUserError(err)
	}
	return NewUserError(errors.Errorf("panic: %v", r))
}
