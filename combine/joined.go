// Package combine implements the collection combinators that fan out
// and fan in Futures: joined, reduce, and the async_map/async_flat_map
// pair, plus their ExecutionContext-bound variants.
//
// All four share one shape: schedule once per input, fold the result
// into a shared accumulator under a short critical section, and
// complete the aggregate once the count of outstanding inputs reaches
// zero.
package combine

import (
	"sync"

	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
	"github.com/AlekOke/AsyncNinja/future"
)

// Joined returns a Future that completes once every future in futs has
// succeeded, with results in input order. On the first observed
// failure it fails the aggregate with that error; remaining successes
// are ignored (their handler receipts are not kept, so the handlers stay
// registered on the remaining inputs until those complete). Joined(ex)
// with no futures succeeds immediately with an empty slice.
func Joined[T any](ex executor.Executor, futs ...future.Future[T]) future.Future[[]T] {
	n := len(futs)
	out, p := future.New[[]T]()
	if n == 0 {
		p.Succeed([]T{})
		return out
	}
	results := make([]T, n)
	var mu sync.Mutex
	remaining := n
	failed := false
	for i, f := range futs {
		i, f := i, f
		f.AddHandler(ex, func(v fallible.Fallible[T]) {
			mu.Lock()
			if failed {
				mu.Unlock()
				return
			}
			val, err := v.Unpack()
			if err != nil {
				failed = true
				mu.Unlock()
				p.Fail(err)
				return
			}
			results[i] = val
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				p.Succeed(results)
			}
		})
	}
	return out
}

// JoinedContext is the contextual variant of Joined: ctx is weakly
// captured and registered as the aggregate's owner, so ctx's
// destruction fails the still-pending aggregate with
// asyncerr.ContextDeallocated. Each input future's handler re-checks
// ctx's liveness at dispatch time before folding its result in.
func JoinedContext[T any](ctx *econtext.Context, ex executor.Executor, futs ...future.Future[T]) future.Future[[]T] {
	n := len(futs)
	out, p := future.New[[]T]()
	weak := ctx.Weak()
	ctx.AddDependent(p)
	if n == 0 {
		p.Succeed([]T{})
		return out
	}
	results := make([]T, n)
	var mu sync.Mutex
	remaining := n
	failed := false
	for i, f := range futs {
		i, f := i, f
		f.AddHandler(ex, func(v fallible.Fallible[T]) {
			mu.Lock()
			if failed {
				mu.Unlock()
				return
			}
			if _, ok := weak.Get(); !ok {
				failed = true
				mu.Unlock()
				p.CancelBecauseOfDeallocatedContext()
				return
			}
			val, err := v.Unpack()
			if err != nil {
				failed = true
				mu.Unlock()
				p.Fail(err)
				return
			}
			results[i] = val
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				p.Succeed(results)
			}
		})
	}
	return out
}
