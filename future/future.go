// Package future implements Future[T] and Promise[T], the one-shot
// value primitive: a handle to a value that appears at most once, a
// handler registry that schedules callbacks back onto executors, and a
// state machine that is atomic and terminal.
//
// Registration and completion race-free: a handler registered after
// completion runs immediately on its own executor; completion drains
// and clears the handler registry under a short lock, then invokes
// each handler's callback after the lock is released.
package future

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
)

// handlerEntry is one registered callback: an executor to run it on, and
// the callback itself. Removed from the core's handler map either when
// the core completes (the whole map is discarded at once) or when its
// owning Handler is released early.
type handlerEntry[T any] struct {
	ex executor.Executor
	cb func(fallible.Fallible[T])
}

// core is the single shared object a Future[T] and a Promise[T] are
// both views over — conceptually one object with two roles.
type core[T any] struct {
	mu        sync.Mutex
	completed int32 // atomic fast path checked before taking mu
	value     fallible.Fallible[T]

	nextHandlerID uint64
	handlers      map[uint64]*handlerEntry[T]

	drainCBs []func()
}

// Future is the read-capability view of a one-shot value.
type Future[T any] struct {
	c *core[T]
}

// Promise is the write-capability view of the same value.
type Promise[T any] struct {
	c *core[T]
}

// New returns a pending Future/Promise pair sharing the same identity.
func New[T any]() (Future[T], Promise[T]) {
	c := &core[T]{handlers: make(map[uint64]*handlerEntry[T])}
	runtime.SetFinalizer(c, finalizeCore[T])
	return Future[T]{c}, Promise[T]{c}
}

// finalizeCore runs (best-effort, non-deterministic timing — there is no
// deterministic destructor in Go) when a pending core becomes
// unreachable without ever completing: the closest native analogue to a
// promise released without ever completing. It runs the registered
// NotifyDrain callbacks, used by the combinators purely as a
// work-elision optimization, never for correctness.
func finalizeCore[T any](c *core[T]) {
	c.mu.Lock()
	if atomic.LoadInt32(&c.completed) == 1 {
		c.mu.Unlock()
		return
	}
	cbs := c.drainCBs
	c.drainCBs = nil
	c.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// IsCompleted reports whether the future has reached its terminal state.
func (f Future[T]) IsCompleted() bool { return atomic.LoadInt32(&f.c.completed) == 1 }

// AddHandler registers cb to run when the future completes. If the
// future is already complete, cb is scheduled on ex immediately and nil
// is returned (no registration occurred). Otherwise a Handler receipt
// is constructed, atomically appended to the handler registry, and
// returned.
func (f Future[T]) AddHandler(ex executor.Executor, cb func(fallible.Fallible[T])) *Handler[T] {
	c := f.c
	c.mu.Lock()
	if atomic.LoadInt32(&c.completed) == 1 {
		v := c.value
		c.mu.Unlock()
		ex.Execute(func() { cb(v) })
		return nil
	}
	c.nextHandlerID++
	id := c.nextHandlerID
	c.handlers[id] = &handlerEntry[T]{ex: ex, cb: cb}
	c.mu.Unlock()
	return &Handler[T]{c: c, id: id}
}

// OnTerminal registers cb to run (on no particular executor — it is
// invoked directly from whichever goroutine drains the handler list, or
// synchronously if the future is already complete) once the future
// reaches its terminal state, regardless of success or failure. Used by
// econtext.Context to know when it can stop holding a dependent.
func (f Future[T]) OnTerminal(cb func()) *Handler[T] {
	if cb == nil {
		return nil
	}
	return f.AddHandler(executor.Immediate(), func(fallible.Fallible[T]) { cb() })
}

// Wait blocks the calling goroutine until the future completes or done
// is closed, returning the completion value and true, or the zero
// Fallible and false if done fired first. For testing; production code
// should use AddHandler.
func (f Future[T]) Wait(done <-chan struct{}) (fallible.Fallible[T], bool) {
	ch := make(chan fallible.Fallible[T], 1)
	h := f.AddHandler(executor.Immediate(), func(v fallible.Fallible[T]) { ch <- v })
	defer releaseHandler(h)
	select {
	case v := <-ch:
		return v, true
	case <-done:
		select {
		case v := <-ch:
			return v, true
		default:
			var zero fallible.Fallible[T]
			return zero, false
		}
	}
}

func releaseHandler[T any](h *Handler[T]) {
	if h != nil {
		h.Release()
	}
}

// Handler is the registration receipt returned by AddHandler. Calling
// Release deregisters the callback immediately and idempotently. The
// future holds the callback strongly: dropping a Handler without calling
// Release does not deregister it, and the callback stays registered
// until the future completes.
type Handler[T any] struct {
	c        *core[T]
	id       uint64
	released int32
}

// Release deregisters the handler from its future. Idempotent, and safe
// to call after the future has already completed (a no-op, since the
// handler map was discarded at completion time).
func (h *Handler[T]) Release() {
	if h == nil {
		return
	}
	if !atomic.CompareAndSwapInt32(&h.released, 0, 1) {
		return
	}
	h.c.mu.Lock()
	if h.c.handlers != nil {
		delete(h.c.handlers, h.id)
	}
	h.c.mu.Unlock()
}

// complete is the shared implementation behind Succeed/Fail/Complete: it
// transitions Pending -> Completed exactly once, draining the handler
// registry under the lock, then invoking every handler's callback on
// its own executor after the lock is released.
func (c *core[T]) complete(v fallible.Fallible[T]) {
	if atomic.LoadInt32(&c.completed) == 1 {
		return
	}
	c.mu.Lock()
	if atomic.LoadInt32(&c.completed) == 1 {
		c.mu.Unlock()
		return
	}
	c.value = v
	handlers := c.handlers
	c.handlers = nil
	c.drainCBs = nil
	atomic.StoreInt32(&c.completed, 1)
	c.mu.Unlock()

	for _, h := range handlers {
		ex, cb := h.ex, h.cb
		ex.Execute(func() { cb(v) })
	}
}

// Succeed completes the promise with a success value. A no-op if the
// promise is already completed (by success or failure).
func (p Promise[T]) Succeed(v T) { p.c.complete(fallible.Success(v)) }

// Fail completes the promise with a failure. A no-op if the promise is
// already completed.
func (p Promise[T]) Fail(err error) {
	if err == nil {
		logrus.Warn("asyncninja: Fail called with a nil error; ignoring")
		return
	}
	p.c.complete(fallible.Failure[T](err))
}

// Complete completes the promise with an already-constructed Fallible.
func (p Promise[T]) Complete(f fallible.Fallible[T]) { p.c.complete(f) }

// CompleteWith registers a handler on other that forwards its completion
// to p. Race-safe if other is already complete: AddHandler's fast path
// schedules the forwarding callback immediately via executor.Immediate.
func (p Promise[T]) CompleteWith(other Future[T]) {
	other.AddHandler(executor.Immediate(), func(v fallible.Fallible[T]) { p.c.complete(v) })
}

// Cancel is shorthand for Fail(asyncerr.Cancelled).
func (p Promise[T]) Cancel() { p.Fail(asyncerr.Cancelled) }

// CancelBecauseOfDeallocatedContext is shorthand for
// Fail(asyncerr.ContextDeallocated).
func (p Promise[T]) CancelBecauseOfDeallocatedContext() { p.Fail(asyncerr.ContextDeallocated) }

// CancelDueToToken implements cancel.Cancellable and econtext.Completable
// so a Promise can be registered directly with a CancellationToken or an
// ExecutionContext.
func (p Promise[T]) CancelDueToToken(err error) { p.Fail(err) }

// OnTerminal implements the other half of econtext.Completable.
func (p Promise[T]) OnTerminal(cb func()) { p.Future().OnTerminal(cb) }

// NotifyDrain registers cb to run if the promise is released without
// ever completing (see finalizeCore's caveats on timing). Used by the
// combinators to stop enqueueing work once nobody can observe the
// aggregate result anymore.
func (p Promise[T]) NotifyDrain(cb func()) {
	if cb == nil {
		return
	}
	c := p.c
	c.mu.Lock()
	if atomic.LoadInt32(&c.completed) == 1 {
		c.mu.Unlock()
		return
	}
	c.drainCBs = append(c.drainCBs, cb)
	c.mu.Unlock()
}

// Future returns the read-capability view of this promise's value.
func (p Promise[T]) Future() Future[T] { return Future[T]{p.c} }
