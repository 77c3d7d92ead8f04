package combine

import (
	"errors"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
	"github.com/AlekOke/AsyncNinja/future"
)

func TestJoinedEmptySucceedsImmediately(t *testing.T) {
	defer leaktest.Check(t)()
	out := Joined[int](executor.Immediate())
	v, _ := out.Wait(nil)
	got, err := v.Unpack()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestJoinedPreservesInputOrder(t *testing.T) {
	defer leaktest.Check(t)()
	futs := []future.Future[int]{
		future.FromValue(1),
		future.FromValue(2),
		future.FromValue(3),
	}
	out := Joined(executor.Immediate(), futs...)
	v, _ := out.Wait(nil)
	got, err := v.Unpack()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestJoinedFirstFailureWins(t *testing.T) {
	defer leaktest.Check(t)()
	cause := errors.New("boom")
	futs := []future.Future[int]{
		future.FromValue(1),
		future.FromError[int](cause),
		future.FromValue(3),
	}
	out := Joined(executor.Immediate(), futs...)
	v, _ := out.Wait(nil)
	_, err := v.Unpack()
	require.ErrorIs(t, err, cause)
}

func TestJoinedContextFailsWhenContextGone(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := econtext.New()
	ctx.Close()

	out := JoinedContext(ctx, executor.Immediate(), future.FromValue(1))
	v, _ := out.Wait(nil)
	_, err := v.Unpack()
	require.ErrorIs(t, err, asyncerr.ContextDeallocated)
}

func TestJoinedContextSucceedsWhileContextLive(t *testing.T) {
	defer leaktest.Check(t)()
	ctx := econtext.New()
	out := JoinedContext(ctx, executor.Immediate(), future.FromValue(1), future.FromValue(2))
	v, _ := out.Wait(nil)
	got, err := v.Unpack()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, got)
}
