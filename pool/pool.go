// Package pool implements ReleasePool, a scoped lifetime anchor: a bag
// of released-together items (mostly future.Handler receipts) plus
// drain callbacks invoked exactly once when the pool's owner is
// destroyed.
package pool

import "sync"

// Item is anything a ReleasePool can hold: a receipt whose Release is
// idempotent and deregisters whatever it anchors (typically a
// future.Handler).
type Item interface {
	Release()
}

// ItemFunc adapts a plain func into an Item.
type ItemFunc func()

// Release implements Item.
func (f ItemFunc) Release() { f() }

// ReleasePool owns a bag of Items and a list of drain callbacks. The
// zero value is ready to use.
type ReleasePool struct {
	mu      sync.Mutex
	drained bool
	nextID  uint64
	items   map[uint64]Item
	drainCB []func()
}

// New returns a fresh, undrained ReleasePool.
func New() *ReleasePool { return &ReleasePool{items: make(map[uint64]Item)} }

// Receipt identifies one Insert call. Evict removes the item from the
// pool without invoking Release on it — used when the held item has
// already settled on its own (e.g. a Future that completed normally)
// and only needs to stop occupying the pool, not be released again.
type Receipt struct {
	pool *ReleasePool
	id   uint64
}

// Evict removes the receipt's item from the pool. A no-op if the pool
// has already drained or the receipt was already evicted.
func (r Receipt) Evict() {
	if r.pool == nil {
		return
	}
	r.pool.evict(r.id)
}

func (p *ReleasePool) evict(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.items != nil {
		delete(p.items, id)
	}
}

// Insert adds item to the pool, returning a Receipt that can later evict
// it without releasing it. If the pool has already drained, item is
// released immediately, inline, and the returned Receipt is inert.
func (p *ReleasePool) Insert(item Item) Receipt {
	if item == nil {
		return Receipt{}
	}
	p.mu.Lock()
	if p.drained {
		p.mu.Unlock()
		item.Release()
		return Receipt{}
	}
	p.nextID++
	id := p.nextID
	p.items[id] = item
	p.mu.Unlock()
	return Receipt{pool: p, id: id}
}

// NotifyDrain registers cb to run when the pool drains. If the pool has
// already drained, cb runs immediately, inline.
func (p *ReleasePool) NotifyDrain(cb func()) {
	if cb == nil {
		return
	}
	p.mu.Lock()
	if p.drained {
		p.mu.Unlock()
		cb()
		return
	}
	p.drainCB = append(p.drainCB, cb)
	p.mu.Unlock()
}

// Drain releases every item still in the pool and runs every registered
// drain callback, exactly once. Subsequent calls are no-ops.
func (p *ReleasePool) Drain() {
	p.mu.Lock()
	if p.drained {
		p.mu.Unlock()
		return
	}
	p.drained = true
	items := p.items
	cbs := p.drainCB
	p.items = nil
	p.drainCB = nil
	p.mu.Unlock()

	for _, item := range items {
		item.Release()
	}
	for _, cb := range cbs {
		cb()
	}
}

// IsDrained reports whether Drain has already run.
func (p *ReleasePool) IsDrained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drained
}
