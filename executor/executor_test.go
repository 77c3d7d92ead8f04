package executor

import (
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

func TestImmediateRunsSynchronously(t *testing.T) {
	defer leaktest.Check(t)()
	ran := false
	Immediate().Execute(func() { ran = true })
	require.True(t, ran)
}

func TestImmediateName(t *testing.T) {
	defer leaktest.Check(t)()
	require.Equal(t, "immediate", Immediate().Name())
}

func TestDefaultExecuteRunsBlock(t *testing.T) {
	defer leaktest.Check(t)()
	done := make(chan int, 1)
	callerGoroutine := make(chan struct{})
	go func() { close(callerGoroutine) }()
	<-callerGoroutine

	Default().Execute(func() { done <- 1 })
	select {
	case v := <-done:
		require.Equal(t, 1, v)
	case <-time.After(time.Second):
		t.Fatal("Execute never ran the block")
	}
}

func TestPresetsAreStableSingletons(t *testing.T) {
	defer leaktest.Check(t)()
	r := require.New(t)
	r.Equal(Default(), Default())
	r.Equal(Utility(), Utility())
	r.NotEqual(Default().Name(), Utility().Name())
	r.Equal(Default(), Primary())
}

func TestDerivedSerialRunsFIFOWithoutOverlap(t *testing.T) {
	// No leaktest.Check here: DerivedSerial's worker goroutine runs for
	// the lifetime of the process and is never torn down, so it would
	// always show up as a false leak.
	r := require.New(t)
	serial := Default().DerivedSerial()

	var mu sync.Mutex
	var order []int
	inFlight := 0
	maxConcurrent := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		serial.Execute(func() {
			defer wg.Done()
			mu.Lock()
			inFlight++
			if inFlight > maxConcurrent {
				maxConcurrent = inFlight
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			order = append(order, i)
			inFlight--
			mu.Unlock()
		})
	}
	wg.Wait()

	r.Equal(1, maxConcurrent, "derived-serial executor must never run two submissions concurrently")
	for i, v := range order {
		r.Equal(i, v, "derived-serial executor must preserve submission order")
	}
}

func TestExecuteAfterDelay(t *testing.T) {
	defer leaktest.Check(t)()
	start := time.Now()
	done := make(chan struct{})
	Default().ExecuteAfter(20*time.Millisecond, func() { close(done) })
	<-done
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNilBlockPanicsWhenGuarded(t *testing.T) {
	defer leaktest.Check(t)()
	require.Panics(t, func() { Default().Execute(nil) })
}
