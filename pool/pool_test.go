package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrainReleasesItemsOnce(t *testing.T) {
	p := New()
	released := 0
	p.Insert(ItemFunc(func() { released++ }))
	p.Insert(ItemFunc(func() { released++ }))

	p.Drain()
	p.Drain()

	require.Equal(t, 2, released)
	require.True(t, p.IsDrained())
}

func TestInsertAfterDrainReleasesInline(t *testing.T) {
	p := New()
	p.Drain()

	released := false
	p.Insert(ItemFunc(func() { released = true }))
	require.True(t, released)
}

func TestEvictRemovesWithoutReleasing(t *testing.T) {
	p := New()
	released := false
	receipt := p.Insert(ItemFunc(func() { released = true }))
	receipt.Evict()

	p.Drain()
	require.False(t, released)
}

func TestNotifyDrainRunsOnDrain(t *testing.T) {
	p := New()
	fired := false
	p.NotifyDrain(func() { fired = true })
	require.False(t, fired)
	p.Drain()
	require.True(t, fired)
}

func TestNotifyDrainAfterDrainRunsInline(t *testing.T) {
	p := New()
	p.Drain()
	fired := false
	p.NotifyDrain(func() { fired = true })
	require.True(t, fired)
}
