// Package cancel implements CancellationToken, the fan-out cancellation
// signal: a shared {NotCancelled, Cancelled} state that registers
// Cancellables and, when fired, synchronously invokes CancelDueToToken
// on each of them.
//
// A Cancellable is not limited to a Future: anything that needs to
// react to a shared cancellation signal (a timer, a context, a worker
// loop) can register one.
package cancel

import (
	"sync"

	"github.com/AlekOke/AsyncNinja/asyncerr"
)

// Cancellable is anything a CancellationToken can fire into. A Future
// typically implements this by failing itself with asyncerr.Cancelled.
type Cancellable interface {
	CancelDueToToken(err error)
}

// CancellableFunc adapts a plain func into a Cancellable.
type CancellableFunc func(err error)

// CancelDueToToken implements Cancellable.
func (f CancellableFunc) CancelDueToToken(err error) { f(err) }

// Token is a shared cancellation signal. The zero value is not usable;
// construct one with New.
type Token struct {
	mu          sync.Mutex
	cancelled   bool
	cancellable []Cancellable
}

// New returns a fresh, not-yet-cancelled Token.
func New() *Token { return &Token{} }

// Add registers c with the token. If the token has already fired,
// c is cancelled immediately, synchronously, before Add returns — the
// registrant never observes a Cancelled token without being cancelled
// itself.
//
// The registration is not weak: the token holds c in a plain slice, and
// so keeps it reachable, until Cancel runs and drops every registrant.
// There is no way to deregister c before that.
func (t *Token) Add(c Cancellable) {
	if c == nil {
		return
	}
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		c.CancelDueToToken(asyncerr.Cancelled)
		return
	}
	t.cancellable = append(t.cancellable, c)
	t.mu.Unlock()
}

// Cancel fires the token. Idempotent: only the first call has any
// effect. Every Cancellable registered at the time of firing is invoked
// synchronously, on the calling goroutine, in registration order.
func (t *Token) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	registrants := t.cancellable
	t.cancellable = nil
	t.mu.Unlock()

	for _, c := range registrants {
		c.CancelDueToToken(asyncerr.Cancelled)
	}
}

// IsCancelled reports the token's current state.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
