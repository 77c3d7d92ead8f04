// Package econtext implements ExecutionContext, a collaborator identity
// that owns an executor and a release pool, and binds dependent
// Futures to its own lifetime so that its destruction fails any still-
// pending dependent with asyncerr.ContextDeallocated.
//
// The context↔dependent relationship is unidirectional: the context
// holds its dependents strongly (in its ReleasePool), while a
// dependent holds the context only through a Weak handle that checks
// liveness before dereferencing.
package econtext

import (
	"sync"

	"github.com/google/uuid"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/pool"
)

// Completable is anything an ExecutionContext can bind as a dependent: a
// way to fail it when the context is deallocated, and a way for the
// context to learn the dependent settled on its own so it can stop
// holding onto it. future.Promise[T] implements this.
type Completable interface {
	CancelDueToToken(err error)
	OnTerminal(cb func())
}

// Context is a collaborator that owns an Executor and a ReleasePool.
// Construct with New.
type Context struct {
	id uuid.UUID
	ex executor.Executor

	mu     sync.Mutex
	closed bool
	rp     *pool.ReleasePool
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithExecutor overrides the context's default executor. If omitted, a
// Context uses executor.Default().
func WithExecutor(ex executor.Executor) Option {
	return func(c *Context) { c.ex = ex }
}

// New constructs a Context ready for use.
func New(opts ...Option) *Context {
	c := &Context{
		id: uuid.New(),
		ex: executor.Default(),
		rp: pool.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID identifies the context for logging/debugging and equality
// comparisons.
func (c *Context) ID() uuid.UUID { return c.id }

// Executor returns the context's default executor for work placement.
func (c *Context) Executor() executor.Executor { return c.ex }

// ReleasePool returns the pool anchoring this context's dependents and
// handlers.
func (c *Context) ReleasePool() *pool.ReleasePool { return c.rp }

// AddDependent registers d so that Close, if it precedes d reaching a
// terminal state, fails d with asyncerr.ContextDeallocated. If the
// context is already closed, d is failed immediately, synchronously,
// before AddDependent returns.
func (c *Context) AddDependent(d Completable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		d.CancelDueToToken(asyncerr.ContextDeallocated)
		return
	}
	c.mu.Unlock()

	receipt := c.rp.Insert(pool.ItemFunc(func() {
		d.CancelDueToToken(asyncerr.ContextDeallocated)
	}))
	d.OnTerminal(receipt.Evict)
}

// Close destroys the context: drains its ReleasePool (failing every
// still-pending dependent with asyncerr.ContextDeallocated and releasing
// every anchored handler), and marks the context closed so any later
// AddDependent call fails its argument immediately.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.rp.Drain()
}

// IsClosed reports whether Close has already run.
func (c *Context) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Weak returns a handle that can check the context's liveness and
// retrieve it without extending its lifetime. Callbacks that close over
// a Context must go through Weak and check Get's ok return before using
// the context.
func (c *Context) Weak() Weak { return Weak{ctx: c} }

// Weak is a liveness-checked reference to a Context. It holds a plain
// pointer, so it keeps the Context value reachable for the garbage
// collector, but Get reports the Context gone once Close has run. Code
// holding a Weak must call Get and check its ok return rather than
// assuming the context is still live, because IsClosed() may already be
// true.
type Weak struct {
	ctx *Context
}

// Get returns the context and true if it is non-nil and not yet closed,
// or (nil, false) otherwise.
func (w Weak) Get() (*Context, bool) {
	if w.ctx == nil || w.ctx.IsClosed() {
		return nil, false
	}
	return w.ctx, true
}
