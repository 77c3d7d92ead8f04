package combine

import (
	"sync"
	"sync/atomic"

	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
	"github.com/AlekOke/AsyncNinja/future"
	"github.com/AlekOke/AsyncNinja/locking"
)

// AsyncMap schedules one task per item on ex, each computing f(item).
// The first failure (a returned error or a recovered panic, both
// carried as a asyncerr.UserError) wins the aggregate; successes are
// written into a pre-sized result buffer at their input index under a
// short lock. The aggregate completes once every index is filled.
// AsyncMap(ex, nil, f) succeeds immediately with an empty slice.
func AsyncMap[I, T any](ex executor.Executor, items []I, f func(I) (T, error)) future.Future[[]T] {
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
			val, err := fallible.FromThunk(func() (T, error) { return f(item) }).Unpack()
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
	}
	return out
}

// AsyncMapContext is the contextual variant of AsyncMap: ctx is weakly
// captured and the aggregate registered as its dependent. Each task
// re-checks ctx's liveness right before invoking f; the first task to
// find it gone fails the aggregate with asyncerr.ContextDeallocated
// instead of running f.
func AsyncMapContext[I, T any](ctx *econtext.Context, ex executor.Executor, items []I, f func(*econtext.Context, I) (T, error)) future.Future[[]T] {
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
			val, err := fallible.FromThunk(func() (T, error) { return f(c, item) }).Unpack()
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
	}
	return out
}
