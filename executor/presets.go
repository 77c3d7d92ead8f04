package executor

import "sync"

// The preset executors are process-wide singletons, lazily constructed
// on first reference and never torn down until process exit. Each is
// independently comparable: Default() == Default() is true across
// every call, but Default() != Utility() and neither equals a
// serialExecutor returned from DerivedSerial.
//
// All six QoS variants (Default, UserInteractive, UserInitiated,
// Utility, Background, plus Primary as an alias of Default) and Main
// share the same goExecutor realization in this implementation: Go's
// runtime scheduler, not a fixed OS thread-pool priority, balances the
// goroutines they spawn. A platform with real thread QoS classes would
// map each preset to a distinct priority; here they differ only in name
// and in the intent the caller signals by choosing one.
var (
	onceMain            sync.Once
	onceDefault         sync.Once
	onceUserInteractive sync.Once
	onceUserInitiated   sync.Once
	onceUtility         sync.Once
	onceBackground      sync.Once

	mainExecutor            Executor
	defaultExecutor         Executor
	userInteractiveExecutor Executor
	userInitiatedExecutor   Executor
	utilityExecutor         Executor
	backgroundExecutor      Executor
)

// Main returns the process-wide executor intended for work that must
// happen on the conceptual "main" collaborator (e.g. driving a UI event
// loop on platforms that have one). In this Go port it is realized the
// same way as the other presets: goroutine-dispatched, FIFO is not
// guaranteed.
func Main() Executor {
	onceMain.Do(func() { mainExecutor = goExecutor{name: "main"} })
	return mainExecutor
}

// Default returns the process-wide default-priority executor.
func Default() Executor {
	onceDefault.Do(func() { defaultExecutor = goExecutor{name: "default"} })
	return defaultExecutor
}

// Primary is an alias for Default.
func Primary() Executor { return Default() }

// UserInteractive returns the process-wide executor for work that
// blocks a user's direct interaction and should preempt less urgent
// work where the platform allows it.
func UserInteractive() Executor {
	onceUserInteractive.Do(func() { userInteractiveExecutor = goExecutor{name: "user-interactive"} })
	return userInteractiveExecutor
}

// UserInitiated returns the process-wide executor for work the user is
// waiting on but that isn't literally blocking interaction (e.g. opening
// a document after a tap).
func UserInitiated() Executor {
	onceUserInitiated.Do(func() { userInitiatedExecutor = goExecutor{name: "user-initiated"} })
	return userInitiatedExecutor
}

// Utility returns the process-wide executor for long-running work the
// user didn't directly request but is depending on indirectly (a sync,
// an import).
func Utility() Executor {
	onceUtility.Do(func() { utilityExecutor = goExecutor{name: "utility"} })
	return utilityExecutor
}

// Background returns the process-wide executor for work with no user
// visibility at all (prefetching, cleanup).
func Background() Executor {
	onceBackground.Do(func() { backgroundExecutor = goExecutor{name: "background"} })
	return backgroundExecutor
}
