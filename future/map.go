package future

import (
	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
)

// Map returns a downstream Future that completes with f(v) once the
// receiver succeeds with v, on ex. Failure (including Cancelled and
// ContextDeallocated) propagates downstream unchanged, without invoking
// f. A panic inside f becomes a UserError failure of the downstream
// Future, never a propagated panic.
func Map[T, U any](in Future[T], ex executor.Executor, f func(T) (U, error)) Future[U] {
	out, p := New[U]()
	in.AddHandler(ex, func(v fallible.Fallible[T]) {
		p.Complete(fallible.FlatMap(v, func(t T) fallible.Fallible[U] {
			return fallible.FromThunk(func() (U, error) { return f(t) })
		}))
	})
	return out
}

// FlatMap is like Map, but f itself returns a Future[U]; the downstream
// Future forwards that inner Future's eventual completion rather than
// wrapping it.
func FlatMap[T, U any](in Future[T], ex executor.Executor, f func(T) Future[U]) Future[U] {
	out, p := New[U]()
	in.AddHandler(ex, func(v fallible.Fallible[T]) {
		t, err := v.Unpack()
		if err != nil {
			p.Fail(err)
			return
		}
		inner := func() (result Future[U]) {
			defer func() {
				if r := recover(); r != nil {
					result = FromError[U](asyncerr.FromRecover(r))
				}
			}()
			return f(t)
		}()
		p.CompleteWith(inner)
	})
	return out
}

// MapContext is the contextual variant of Map: ctx is weakly captured,
// the downstream Future fails with asyncerr.ContextDeallocated if ctx is
// gone by the time the upstream value is ready, and the downstream
// Future is registered as a dependent of ctx.
func MapContext[T, U any](in Future[T], ctx *econtext.Context, ex executor.Executor, f func(*econtext.Context, T) (U, error)) Future[U] {
	out, p := New[U]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	in.AddHandler(ex, func(v fallible.Fallible[T]) {
		t, err := v.Unpack()
		if err != nil {
			p.Fail(err)
			return
		}
		c, ok := weak.Get()
		if !ok {
			p.CancelBecauseOfDeallocatedContext()
			return
		}
		p.Complete(fallible.FromThunk(func() (U, error) { return f(c, t) }))
	})
	return out
}

// FlatMapContext is the contextual variant of FlatMap.
func FlatMapContext[T, U any](in Future[T], ctx *econtext.Context, ex executor.Executor, f func(*econtext.Context, T) Future[U]) Future[U] {
	out, p := New[U]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	in.AddHandler(ex, func(v fallible.Fallible[T]) {
		t, err := v.Unpack()
		if err != nil {
			p.Fail(err)
			return
		}
		c, ok := weak.Get()
		if !ok {
			p.CancelBecauseOfDeallocatedContext()
			return
		}
		inner := func() (result Future[U]) {
			defer func() {
				if r := recover(); r != nil {
					result = FromError[U](asyncerr.FromRecover(r))
				}
			}()
			return f(c, t)
		}()
		p.CompleteWith(inner)
	})
	return out
}
