package econtext

import (
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/executor"
)

type fakeDependent struct {
	cancelled error
	terminal  func()
}

func (f *fakeDependent) CancelDueToToken(err error) { f.cancelled = err }
func (f *fakeDependent) OnTerminal(cb func())       { f.terminal = cb }

func TestAddDependentFailsOnClose(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	d := &fakeDependent{}
	ctx.AddDependent(d)
	require.Nil(t, d.cancelled)

	ctx.Close()
	require.ErrorIs(t, d.cancelled, asyncerr.ContextDeallocated)
}

func TestAddDependentOnAlreadyClosedFailsImmediately(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	ctx.Close()

	d := &fakeDependent{}
	ctx.AddDependent(d)
	require.ErrorIs(t, d.cancelled, asyncerr.ContextDeallocated)
}

func TestDependentSettlingEarlyEvictsFromPool(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	d := &fakeDependent{}
	ctx.AddDependent(d)

	d.terminal() // simulate the dependent completing on its own

	require.True(t, ctx.ReleasePool().IsDrained() == false)
	ctx.Close()
	require.Nil(t, d.cancelled, "an evicted dependent must not be cancelled at Close")
}

func TestWeakReflectsClosedState(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	weak := ctx.Weak()

	got, ok := weak.Get()
	require.True(t, ok)
	require.Same(t, ctx, got)

	ctx.Close()
	_, ok = weak.Get()
	require.False(t, ok)
}

func TestWeakZeroValue(t *testing.T) {
	defer leaktest.Check(t)()
	var w Weak
	_, ok := w.Get()
	require.False(t, ok)
}

func TestNewDefaultsToDefaultExecutor(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	require.Equal(t, executor.Default(), ctx.Executor())
}

func TestWithExecutorOverridesDefault(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New(WithExecutor(executor.Utility()))
	require.Equal(t, executor.Utility(), ctx.Executor())
}

func TestCloseIsIdempotent(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := New()
	ctx.Close()
	require.NotPanics(t, ctx.Close)
}
