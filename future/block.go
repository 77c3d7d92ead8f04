package future

import (
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
)

// WaitAll blocks until every future in fs has completed (a nil done
// never fires), or until done closes, returning false in the latter case. For
// testing and blocking entry points; production code should prefer
// AddHandler or the combine package.
func WaitAll[T any](done <-chan struct{}, fs ...Future[T]) ([]fallible.Fallible[T], bool) {
	results := make([]fallible.Fallible[T], len(fs))
	remaining := len(fs)
	if remaining == 0 {
		return results, true
	}
	ch := make(chan struct{}, remaining)
	handlers := make([]*Handler[T], len(fs))
	for i, f := range fs {
		i := i
		handlers[i] = f.AddHandler(executor.Immediate(), func(v fallible.Fallible[T]) {
			results[i] = v
			ch <- struct{}{}
		})
	}
	defer func() {
		for _, h := range handlers {
			releaseHandler(h)
		}
	}()
	for remaining > 0 {
		select {
		case <-ch:
			remaining--
		case <-done:
			return results, false
		}
	}
	return results, true
}
