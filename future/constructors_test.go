package future

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlekOke/AsyncNinja/asyncerr"
	"github.com/AlekOke/AsyncNinja/cancel"
	"github.com/AlekOke/AsyncNinja/econtext"
	"github.com/AlekOke/AsyncNinja/executor"
)

func timeout(d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	time.AfterFunc(d, func() { close(ch) })
	return ch
}

func TestFromValueAndFromError(t *testing.T) {
	r := require.New(t)

	v, ok := FromValue(9).Wait(nil)
	r.True(ok)
	got, err := v.Unpack()
	r.NoError(err)
	r.Equal(9, got)

	cause := errors.New("boom")
	v, ok = FromError[int](cause).Wait(nil)
	r.True(ok)
	_, err = v.Unpack()
	r.ErrorIs(err, cause)
}

func TestFromThunkSuccessAndPanic(t *testing.T) {
	r := require.New(t)

	f := FromThunk(executor.Immediate(), func() (int, error) { return 5, nil })
	v, _ := f.Wait(nil)
	got, err := v.Unpack()
	r.NoError(err)
	r.Equal(5, got)

	f2 := FromThunk(executor.Immediate(), func() (int, error) { panic("nope") })
	v2, _ := f2.Wait(nil)
	_, err = v2.Unpack()
	r.Contains(err.Error(), "nope")
}

func TestFromThunkFutureForwards(t *testing.T) {
	f := FromThunkFuture(executor.Immediate(), func() Future[int] { return FromValue(3) })
	v, _ := f.Wait(nil)
	got, err := v.Unpack()
	require.NoError(t, err)
	require.Equal(t, 3, got)
}

func TestFromContextThunkFailsWhenContextGone(t *testing.T) {
	ctx := econtext.New()
	ctx.Close()

	f := FromContextThunk(ctx, executor.Default(), func(*econtext.Context) (int, error) {
		t.Fatal("thunk must not run once the context is gone")
		return 0, nil
	})

	v, ok := f.Wait(timeout(time.Second))
	require.True(t, ok)
	_, err := v.Unpack()
	require.ErrorIs(t, err, asyncerr.ContextDeallocated)
}

func TestFromContextThunkRunsWhileContextLive(t *testing.T) {
	ctx := econtext.New()
	f := FromContextThunk(ctx, executor.Immediate(), func(c *econtext.Context) (int, error) {
		require.Same(t, ctx, c)
		return 11, nil
	})
	v, _ := f.Wait(nil)
	got, err := v.Unpack()
	require.NoError(t, err)
	require.Equal(t, 11, got)
}

func TestFromDelayedThunkCancelledByToken(t *testing.T) {
	tok := cancel.New()
	f := FromDelayedThunk(executor.Default(), 200*time.Millisecond, tok, func() (int, error) {
		t.Fatal("thunk must not run once the token has fired")
		return 0, nil
	})
	tok.Cancel()

	v, ok := f.Wait(timeout(time.Second))
	require.True(t, ok)
	_, err := v.Unpack()
	require.ErrorIs(t, err, asyncerr.Cancelled)
}

func TestAfterCompletesWithoutToken(t *testing.T) {
	start := time.Now()
	f := After(executor.Default(), 20*time.Millisecond, nil)
	v, ok := f.Wait(timeout(time.Second))
	require.True(t, ok)
	_, err := v.Unpack()
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
