package combine

import (
	"sync"
	"sync/atomic"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
	"github.com/AlekOke/AsyncNinja/future"
	"github.com/AlekOke/AsyncNinja/locking"
)

// AsyncFlatMap schedules one task per item on ex, each invoking
// f(item) and then forwarding the resulting Future's completion into
// the aggregate at that item's index. A panic raised by f itself
// becomes a locally failed Future rather than escaping. Completion
// semantics (first failure wins, completes once every index is
// filled, empty input succeeds immediately) match AsyncMap.
func AsyncFlatMap[I, T any](ex executor.Executor, items []I, f func(I) future.Future[T]) future.Future[[]T] {
	n := len(items)
	out, p := future.New[[]T]()
	if n == 0 {
		p.Succeed([]T{})
		return out
	}
	results := make([]T, n)
	var mu sync.Mutex
	remaining := n
	var canContinue int32 = 1
	p.NotifyDrain(func() { atomic.StoreInt32(&canContinue, 0) })

	for i, item := range items {
		i, item := i, item
		ex.Execute(func() {
			if atomic.LoadInt32(&canContinue) == 0 {
				return
			}
			inner := func() (result future.Future[T]) {
				defer func() {
					if r := recover(); r != nil {
						result = future.FromError[T](asyncerr.FromRecover(r))
					}
				}()
				return f(item)
			}()
			inner.AddHandler(executor.Immediate(), func(v fallible.Fallible[T]) {
				if atomic.LoadInt32(&canContinue) == 0 {
					return
				}
				val, err := v.Unpack()
				if err != nil {
					atomic.StoreInt32(&canContinue, 0)
					p.Fail(err)
					return
				}
				unlock := locking.Lock(&mu)
				results[i] = val
				remaining--
				done := remaining == 0
				unlock()
				if done {
					p.Succeed(results)
				}
			})
		})
	}
	return out
}

// AsyncFlatMapContext is the contextual variant of AsyncFlatMap.
func AsyncFlatMapContext[I, T any](ctx *econtext.Context, ex executor.Executor, items []I, f func(*econtext.Context, I) future.Future[T]) future.Future[[]T] {
	n := len(items)
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
	var canContinue int32 = 1
	p.NotifyDrain(func() { atomic.StoreInt32(&canContinue, 0) })

	for i, item := range items {
		i, item := i, item
		ex.Execute(func() {
			if atomic.LoadInt32(&canContinue) == 0 {
				return
			}
			c, ok := weak.Get()
			if !ok {
				atomic.StoreInt32(&canContinue, 0)
				p.CancelBecauseOfDeallocatedContext()
				return
			}
			inner := func() (result future.Future[T]) {
				defer func() {
					if r := recover(); r != nil {
						result = future.FromError[T](asyncerr.FromRecover(r))
					}
				}()
				return f(c, item)
			}()
			inner.AddHandler(executor.Immediate(), func(v fallible.Fallible[T]) {
				if atomic.LoadInt32(&canContinue) == 0 {
					return
				}
				val, err := v.Unpack()
				if err != nil {
					atomic.StoreInt32(&canContinue, 0)
					p.Fail(err)
					return
				}
				unlock := locking.Lock(&mu)
				results[i] = val
				remaining--
				done := remaining == 0
				unlock()
				if done {
					p.Succeed(results)
				}
			})
		})
	}
	return out
}
