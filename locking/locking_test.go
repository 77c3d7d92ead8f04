package locking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockUnlocks(t *testing.T) {
	var mu sync.Mutex
	unlock := Lock(&mu)
	require.False(t, mu.TryLock())
	unlock()
	require.True(t, mu.TryLock())
	mu.Unlock()
}
