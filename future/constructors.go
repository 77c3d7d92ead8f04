package future

import (
	"time"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/cancel"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
)

// FromValue returns an already-completed, successful Future. No handler
// scheduling cost: AddHandler's fast path runs registrants' callbacks
// directly on their own executor.
func FromValue[T any](v T) Future[T] {
	f, p := New[T]()
	p.Succeed(v)
	return f
}

// FromError returns an already-completed, failed Future.
func FromError[T any](err error) Future[T] {
	f, p := New[T]()
	p.Fail(err)
	return f
}

// FromThunk schedules thunk on ex; success becomes Succeed, a returned
// error or a recovered panic becomes Fail.
func FromThunk[T any](ex executor.Executor, thunk func() (T, error)) Future[T] {
	f, p := New[T]()
	ex.Execute(func() { p.Complete(fallible.FromThunk(thunk)) })
	return f
}

// FromThunkFuture schedules thunk on ex; thunk itself returns a Future,
// whose eventual completion is forwarded to the result.
func FromThunkFuture[T any](ex executor.Executor, thunk func() Future[T]) Future[T] {
	f, p := New[T]()
	ex.Execute(func() {
		inner := func() (result Future[T]) {
			defer func() {
				if r := recover(); r != nil {
					result = FromError[T](asyncerr.FromRecover(r))
				}
			}()
			return thunk()
		}()
		p.CompleteWith(inner)
	})
	return f
}

// FromContextThunk is like FromThunk, but weakly captures ctx: if ctx is
// already gone by the time ex runs thunk, the result fails with
// asyncerr.ContextDeallocated and thunk is never invoked. The resulting
// Future is registered as a dependent of ctx.
func FromContextThunk[T any](ctx *econtext.Context, ex executor.Executor, thunk func(*econtext.Context) (T, error)) Future[T] {
	f, p := New[T]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	ex.Execute(func() {
		c, ok := weak.Get()
		if !ok {
			p.CancelBecauseOfDeallocatedContext()
			return
		}
		p.Complete(fallible.FromThunk(func() (T, error) { return thunk(c) }))
	})
	return f
}

// FromContextThunkFuture is the Future-returning-thunk counterpart of
// FromContextThunk.
func FromContextThunkFuture[T any](ctx *econtext.Context, ex executor.Executor, thunk func(*econtext.Context) Future[T]) Future[T] {
	f, p := New[T]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	ex.Execute(func() {
		c, ok := weak.Get()
		if !ok {
			p.CancelBecauseOfDeallocatedContext()
			return
		}
		inner := func() (result Future[T]) {
			defer func() {
				if r := recover(); r != nil {
					result = FromError[T](asyncerr.FromRecover(r))
				}
			}()
			return thunk(c)
		}()
		p.CompleteWith(inner)
	})
	return f
}

// FromDelayedThunk schedules thunk on ex after delay d. If token is
// non-nil and fires before the timer elapses, the result fails with
// asyncerr.Cancelled and thunk is never run.
func FromDelayedThunk[T any](ex executor.Executor, d time.Duration, token *cancel.Token, thunk func() (T, error)) Future[T] {
	f, p := New[T]()
	if token != nil {
		token.Add(p)
	}
	ex.ExecuteAfter(d, func() {
		if token != nil && token.IsCancelled() {
			return // p already failed by the token's fan-out
		}
		p.Complete(fallible.FromThunk(thunk))
	})
	return f
}

// FromContextDelayedThunk combines FromContextThunk and
// FromDelayedThunk: ctx and an optional token are both weakly observed,
// whichever fires first (context destroyed, token cancelled) wins and
// the thunk never runs.
func FromContextDelayedThunk[T any](ctx *econtext.Context, ex executor.Executor, d time.Duration, token *cancel.Token, thunk func(*econtext.Context) (T, error)) Future[T] {
	f, p := New[T]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	if token != nil {
		token.Add(p)
	}
	ex.ExecuteAfter(d, func() {
		if token != nil && token.IsCancelled() {
			return
		}
		c, ok := weak.Get()
		if !ok {
			p.CancelBecauseOfDeallocatedContext()
			return
		}
		p.Complete(fallible.FromThunk(func() (T, error) { return thunk(c) }))
	})
	return f
}

// After returns a Future that completes successfully with struct{}{}
// once d has elapsed, or fails with asyncerr.Cancelled if token fires
// first. It unites Executor, CancellationToken, and Promise into a
// single delay primitive.
func After(ex executor.Executor, d time.Duration, token *cancel.Token) Future[struct{}] {
	return FromDelayedThunk(ex, d, token, func() (struct{}, error) { return struct{}{}, nil })
}
