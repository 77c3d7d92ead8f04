// Package cached implements CachedValue[T], a recomputing, invalidatable
// single-flight cache: a miss handler that produces a Future[T], a weak
// reference to the ExecutionContext it runs under, and a single cached
// Future shared by every caller until the next Invalidate.
//
// The locking discipline (a short critical section guarding the cached
// slot) narrows a flat key/value store down to a single slot; the
// at-most-one-in-flight guarantee is delegated to
// golang.org/x/sync/singleflight so concurrent cache misses collapse
// into one origin call.
package cached

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/future"
	"github.com/AlekOke/AsyncNinja/locking"
)

// MissHandler computes the cached value given the live context. It may
// panic; CachedValue converts any panic into a UserError failure of the
// returned Future rather than letting it escape.
type MissHandler[T any] func(*econtext.Context) future.Future[T]

// CachedValue holds at most one outstanding Future[T] produced by its
// miss handler at any time between invalidations. The zero value is
// not usable; construct with New.
type CachedValue[T any] struct {
	weak    econtext.Weak
	handler MissHandler[T]

	mu     sync.Mutex
	cached *future.Future[T]

	sf singleflight.Group
}

// New returns a CachedValue that invokes handler against ctx (weakly
// captured: the CachedValue does not keep ctx alive, and Value returns
// a Future failed with asyncerr.ContextDeallocated once ctx is closed)
// on its first miss.
func New[T any](ctx *econtext.Context, handler MissHandler[T]) *CachedValue[T] {
	return &CachedValue[T]{weak: ctx.Weak(), handler: handler}
}

// Value returns the cached Future, invoking the miss handler on first
// use or after an Invalidate. Concurrent first callers share exactly
// one invocation of the miss handler: singleflight.Group collapses
// them onto the same key, and the resulting Future's identity is what
// every caller observes until the next Invalidate.
func (c *CachedValue[T]) Value() future.Future[T] {
	if f, ok := c.snapshot(); ok {
		return f
	}

	ctx, ok := c.weak.Get()
	if !ok {
		return future.FromError[T](asyncerr.ContextDeallocated)
	}

	v, err, _ := c.sf.Do("value", func() (interface{}, error) {
		if f, ok := c.snapshot(); ok {
			return f, nil
		}
		f := c.invoke(ctx)
		unlock := locking.Lock(&c.mu)
		c.cached = &f
		unlock()
		return f, nil
	})
	if err != nil {
		// invoke never returns a non-nil error from its Do closure; kept
		// only because singleflight.Do's signature requires handling it.
		return future.FromError[T](err)
	}
	return v.(future.Future[T])
}

// Invalidate clears the cached Future. It does not cancel any
// in-flight Future the miss handler already produced — callers that
// still hold it continue to observe its eventual completion — but the
// next Value call starts a fresh computation with a new identity.
func (c *CachedValue[T]) Invalidate() {
	unlock := locking.Lock(&c.mu)
	stale := c.cached
	c.cached = nil
	unlock()

	if stale != nil && !stale.IsCompleted() {
		logrus.Debug("asyncninja: CachedValue invalidated while a miss-handler Future was still in flight")
	}
}

func (c *CachedValue[T]) snapshot() (future.Future[T], bool) {
	defer locking.Lock(&c.mu)()
	if c.cached == nil {
		var zero future.Future[T]
		return zero, false
	}
	return *c.cached, true
}

// invoke calls the miss handler panic-safely, forwarding its Future's
// eventual completion to a freshly allocated result Future so the
// caller never observes a raw panic.
func (c *CachedValue[T]) invoke(ctx *econtext.Context) future.Future[T] {
	out, p := future.New[T]()
	inner := func() (result future.Future[T]) {
		defer func() {
			if r := recover(); r != nil {
				result = future.FromError[T](asyncerr.FromRecover(r))
			}
		}()
		return c.handler(ctx)
	}()
	p.CompleteWith(inner)
	return out
}
