// Package fallible provides Fallible[T], the tagged success/failure
// variant every completed Future carries. It captures the "exceptions as
// values" discipline spec'd for this core: nothing raised by caller code
// is ever allowed to cross an executor boundary as a panic.
package fallible

import "github.com/AlekOke/AsyncNinja/asyncerr"

// Fallible is either a Success(T) or a Failure(error). The zero value
// holds no error, so it reports IsSuccess and carries T's zero value;
// use Success or Failure to construct one.
type Fallible[T any] struct {
	value T
	err   error
}

// Success returns a Fallible holding v.
func Success[T any](v T) Fallible[T] { return Fallible[T]{value: v} }

// Failure returns a Fallible holding err. Panics if err is nil: a
// Failure without an error isn't a distinguishable state.
func Failure[T any](err error) Fallible[T] {
	if err == nil {
		panic("fallible: Failure requires a non-nil error")
	}
	return Fallible[T]{err: err}
}

// IsSuccess reports whether f holds a value rather than an error.
func (f Fallible[T]) IsSuccess() bool { return f.err == nil }

// Unpack returns the held value and error, mirroring Go's native
// (value, error) idiom for callers that don't want to branch on
// IsSuccess themselves.
func (f Fallible[T]) Unpack() (T, error) { return f.value, f.err }

// LiftSuccess returns the held value and true if f is a Success, or the
// zero value and false if f is a Failure. Unlike the source's raising
// variant, the Go port never panics here — see MustLiftSuccess for that.
func (f Fallible[T]) LiftSuccess() (T, bool) {
	if f.err != nil {
		var zero T
		return zero, false
	}
	return f.value, true
}

// MustLiftSuccess returns the held value, panicking with the held error
// if f is a Failure. Intended only for tests and top-level code that has
// already decided a failure is unrecoverable.
func (f Fallible[T]) MustLiftSuccess() T {
	if f.err != nil {
		panic(f.err)
	}
	return f.value
}

// Error returns the held error, or nil if f is a Success.
func (f Fallible[T]) Error() error { return f.err }

// Map transforms a Success value with fn, passing a Failure through
// unchanged. If fn panics, the result is a Failure wrapping the
// recovered value as a asyncerr.UserError.
func Map[T, U any](f Fallible[T], fn func(T) (U, error)) (result Fallible[U]) {
	if f.err != nil {
		return Failure[U](f.err)
	}
	defer func() {
		if r := recover(); r != nil {
			result = Failure[U](asyncerr.FromRecover(r))
		}
	}()
	u, err := fn(f.value)
	if err != nil {
		return Failure[U](asyncerr.NewUserError(err))
	}
	return Success(u)
}

// FlatMap is like Map, but fn itself returns a Fallible[U], letting the
// transform short-circuit without an intermediate error value.
func FlatMap[T, U any](f Fallible[T], fn func(T) Fallible[U]) (result Fallible[U]) {
	if f.err != nil {
		return Failure[U](f.err)
	}
	defer func() {
		if r := recover(); r != nil {
			result = Failure[U](asyncerr.FromRecover(r))
		}
	}()
	return fn(f.value)
}

// FromThunk invokes thunk, capturing any panic into a Failure so that no
// raise ever escapes. A normal error return is wrapped as a
// asyncerr.UserError; a panic is converted the same way via
// asyncerr.FromRecover.
func FromThunk[T any](thunk func() (T, error)) (result Fallible[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure[T](asyncerr.FromRecover(r))
		}
	}()
	v, err := thunk()
	if err != nil {
		return Failure[T](asyncerr.NewUserError(err))
	}
	return Success(v)
}
