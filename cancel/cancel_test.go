package cancel

import (
	"errors"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/AlekOke/AsyncNinja/asyncerr"
)

func TestCancelInvokesRegistrants(t *testing.T) {
	defer leaktest.Check(t)()
	tok := New()
	var got []error
	tok.Add(CancellableFunc(func(err error) { got = append(got, err) }))
	tok.Add(CancellableFunc(func(err error) { got = append(got, err) }))

	tok.Cancel()

	require.Len(t, got, 2)
	for _, err := range got {
		require.ErrorIs(t, err, asyncerr.Cancelled)
	}
	require.True(t, tok.IsCancelled())
}

func TestCancelIsIdempotent(t *testing.T) {
	defer leaktest.Check(t)()
	tok := New()
	calls := 0
	tok.Add(CancellableFunc(func(error) { calls++ }))
	tok.Cancel()
	tok.Cancel()
	require.Equal(t, 1, calls)
}

func TestAddAfterCancelFiresImmediately(t *testing.T) {
	defer leaktest.Check(t)()
	tok := New()
	tok.Cancel()

	fired := false
	tok.Add(CancellableFunc(func(err error) {
		fired = true
		require.True(t, errors.Is(err, asyncerr.Cancelled))
	}))
	require.True(t, fired)
}
