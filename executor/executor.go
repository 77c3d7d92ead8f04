// Package executor provides the scheduling abstraction every other
// primitive in this module submits work through: an opaque wrapper
// around "run this block somewhere" with three submission modes
// (immediate, async, delayed) plus a derived-serial mode used by the
// combinators to get FIFO, non-overlapping execution without an
// explicit lock.
//
// It generalizes the bare `go func(){...}()` submission pattern into a
// first-class, named, comparable value that can be passed around,
// compared, and substituted (e.g. with Immediate in tests).
package executor

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Executor schedules blocks for execution according to its own policy.
// Submission never fails in this model; a nil block is a programming
// error and is logged (and, while abortOnNilBlock is set, which is the
// default, panics) rather than silently dropped.
type Executor interface {
	// Execute schedules block per the executor's policy. Only the
	// Immediate executor runs block synchronously on the caller's
	// goroutine; every other variant returns before block has run.
	Execute(block func())

	// ExecuteAfter schedules block after the given delay. Not itself
	// cancellable — pair it with a cancel.CancellationToken if the
	// caller needs to abort before the timer fires.
	ExecuteAfter(d time.Duration, block func())

	// DerivedSerial returns a new Executor whose submissions are
	// totally ordered with respect to each other (FIFO) and never
	// overlap, regardless of what executes them underneath. Used by
	// combine.Reduce in unordered mode to eliminate an explicit lock
	// around its accumulator: a single worker goroutine drains a FIFO
	// queue, so two submissions can never run concurrently, and this
	// implementation's serial executor never re-enters itself.
	DerivedSerial() Executor

	// Name identifies the executor for logging/debugging and equality
	// comparisons. Preset executors have stable, human-readable names;
	// derived-serial executors get a generated suffix.
	Name() string
}

// abortOnNilBlock controls whether a nil block submitted to Execute or
// ExecuteAfter panics (true, the default in every build) or is merely
// logged. Tests that want to assert the log-only behavior can flip it.
var abortOnNilBlock = true

func guardNilBlock(name string, block func()) bool {
	if block != nil {
		return true
	}
	logrus.WithField("executor", name).Warn("asyncninja: nil block submitted to executor")
	if abortOnNilBlock {
		panic("asyncninja: nil block submitted to executor " + name)
	}
	return false
}

// immediateExecutor runs every submission synchronously on the calling
// goroutine. ExecuteAfter still honors the delay (via time.Sleep) since
// "immediate" only promises synchronous dispatch, not dispatch without
// delay.
type immediateExecutor struct{}

func (immediateExecutor) Execute(block func()) {
	if !guardNilBlock("immediate", block) {
		return
	}
	block()
}

func (immediateExecutor) ExecuteAfter(d time.Duration, block func()) {
	if !guardNilBlock("immediate", block) {
		return
	}
	if d > 0 {
		time.Sleep(d)
	}
	block()
}

func (immediateExecutor) DerivedSerial() Executor { return newSerialExecutor("immediate-derived") }

func (immediateExecutor) Name() string { return "immediate" }

// Immediate returns the executor that runs every submission inline on
// the calling goroutine, synchronously.
func Immediate() Executor { return immediateExecutor{} }

// goExecutor schedules every submission onto its own goroutine: a
// concurrent-on-queue executor with no ordering guarantee between
// submissions.
type goExecutor struct {
	name string
}

func (e goExecutor) Execute(block func()) {
	if !guardNilBlock(e.name, block) {
		return
	}
	go runGuarded(e.name, block)
}

func (e goExecutor) ExecuteAfter(d time.Duration, block func()) {
	if !guardNilBlock(e.name, block) {
		return
	}
	if d <= 0 {
		go runGuarded(e.name, block)
		return
	}
	timer := time.NewTimer(d)
	go func() {
		<-timer.C
		runGuarded(e.name, block)
	}()
}

func (e goExecutor) DerivedSerial() Executor { return newSerialExecutor(e.name + "-derived") }

func (e goExecutor) Name() string { return e.name }

func runGuarded(name string, block func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("executor", name).WithField("panic", r).
				Warn("asyncninja: panic recovered from executor submission")
		}
	}()
	block()
}

// serialExecutor realizes DerivedSerial: a single worker goroutine drains
// a FIFO channel of submissions, so two blocks submitted to the same
// serialExecutor are never run concurrently and always run in submission
// order.
type serialExecutor struct {
	name  string
	tasks chan func()
}

func newSerialExecutor(name string) *serialExecutor {
	e := &serialExecutor{
		name:  name + "-" + uuid.NewString()[:8],
		tasks: make(chan func(), 256),
	}
	go e.run()
	return e
}

func (e *serialExecutor) run() {
	for task := range e.tasks {
		runGuarded(e.name, task)
	}
}

func (e *serialExecutor) Execute(block func()) {
	if !guardNilBlock(e.name, block) {
		return
	}
	e.tasks <- block
}

func (e *serialExecutor) ExecuteAfter(d time.Duration, block func()) {
	if !guardNilBlock(e.name, block) {
		return
	}
	if d <= 0 {
		e.tasks <- block
		return
	}
	timer := time.NewTimer(d)
	go func() {
		<-timer.C
		e.tasks <- block
	}()
}

func (e *serialExecutor) DerivedSerial() Executor { return newSerialExecutor(e.name + "-derived") }

func (e *serialExecutor) Name() string { return e.name }
