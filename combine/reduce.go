package combine

import (
	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/fallible"
	"github.com/AlekOke/AsyncNinja/future"
)

// Reducer folds an input of type T into an accumulator of type A. A
// returned error, or a panic, fails the Reduce it is part of.
type Reducer[T, A any] func(acc A, next T) (A, error)

// Reduce folds futs into a single accumulator starting from initial.
//
// When ordered is true, Reduce awaits Joined(ex, futs...) and then
// folds the results sequentially, in input order, on ex.
//
// When ordered is false, Reduce installs one handler per input on a
// derived-serial executor (ex.DerivedSerial()) instead: since that
// executor never runs two submissions concurrently, the accumulator
// needs no explicit lock, and combine runs in arrival order rather
// than input order. The derived-serial executor never re-enters
// itself, so the two modes are equivalent in everything except
// ordering and the moment a fast, early-arriving future's result is
// folded in.
func Reduce[T, A any](ex executor.Executor, initial A, ordered bool, combine Reducer[T, A], futs ...future.Future[T]) future.Future[A] {
	if ordered {
		return reduceOrdered(ex, initial, combine, futs...)
	}
	return reduceUnordered(ex, initial, combine, futs...)
}

func reduceOrdered[T, A any](ex executor.Executor, initial A, combine Reducer[T, A], futs ...future.Future[T]) future.Future[A] {
	joined := Joined(ex, futs...)
	return future.FlatMap(joined, ex, func(vals []T) future.Future[A] {
		acc := initial
		for _, v := range vals {
			next, err := combine(acc, v)
			if err != nil {
				return future.FromError[A](err)
			}
			acc = next
		}
		return future.FromValue(acc)
	})
}

func reduceUnordered[T, A any](ex executor.Executor, initial A, combine Reducer[T, A], futs ...future.Future[T]) future.Future[A] {
	n := len(futs)
	out, p := future.New[A]()
	if n == 0 {
		p.Succeed(initial)
		return out
	}
	serial := ex.DerivedSerial()
	acc := initial
	remaining := n
	canContinue := true
	for _, f := range futs {
		f.AddHandler(serial, func(v fallible.Fallible[T]) {
			remaining--
			if !canContinue {
				return
			}
			val, err := v.Unpack()
			if err != nil {
				canContinue = false
				p.Fail(err)
				return
			}
			next, cerr := safeCombine(combine, acc, val)
			if cerr != nil {
				canContinue = false
				p.Fail(cerr)
				return
			}
			acc = next
			if remaining == 0 {
				p.Succeed(acc)
			}
		})
	}
	return out
}

func safeCombine[T, A any](combine Reducer[T, A], acc A, v T) (result A, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = asyncerr.FromRecover(r)
		}
	}()
	return combine(acc, v)
}

// ReduceContext is the contextual variant of Reduce: the aggregate is
// weakly bound to ctx and registered as its dependent, failing with
// asyncerr.ContextDeallocated if ctx is destroyed first. Ordering
// semantics are identical to Reduce.
func ReduceContext[T, A any](ctx *econtext.Context, ex executor.Executor, initial A, ordered bool, combine Reducer[T, A], futs ...future.Future[T]) future.Future[A] {
	out, p := future.New[A]()
	ctx.AddDependent(p)
	if ctx.IsClosed() {
		p.CancelBecauseOfDeallocatedContext()
		return out
	}
	p.CompleteWith(Reduce(ex, initial, ordered, combine, futs...))
	return out
}
