package asyncerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUserErrorNilIsNil(t *testing.T) {
	require.Nil(t, NewUserError(nil))
}

func TestNewUserErrorWrapsOnce(t *testing.T) {
	r := require.New(t)
	cause := errors.New("boom")
	wrapped := NewUserError(cause)
	r.Error(wrapped)
	r.Equal("boom", wrapped.Error())

	rewrapped := NewUserError(wrapped)
	r.Same(wrapped, rewrapped)
}

func TestUserErrorUnwrap(t *testing.T) {
	r := require.New(t)
	cause := errors.New("boom")
	wrapped := NewUserError(cause)
	r.True(errors.Is(wrapped, cause))
}

func TestFromRecoverNil(t *testing.T) {
	require.Nil(t, FromRecover(nil))
}

func TestFromRecoverFromError(t *testing.T) {
	r := require.New(t)
	cause := errors.New("boom")
	err := FromRecover(cause)
	r.True(errors.Is(err, cause))
}

func TestFromRecoverFromNonError(t *testing.T) {
	r := require.New(t)
	err := FromRecover("panic string")
	r.Error(err)
	r.Contains(err.Error(), "panic string")
}
