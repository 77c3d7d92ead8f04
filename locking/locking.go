// Package locking is a two-line helper for the short critical sections
// scattered through the combinators and CachedValue: acquire, do the
// minimal bookkeeping, release. It is intentionally too small to be a
// dependency the way errors or logging are; it exists to give those
// call sites a consistent idiom rather than a naked Lock/Unlock pair.
package locking

import "sync"

// Lock acquires mu and returns a func that releases it. Callers
// typically write `defer locking.Lock(&mu)()`.
func Lock(mu *sync.Mutex) func() {
	mu.Lock()
	return mu.Unlock
}
