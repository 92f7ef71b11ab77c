package concurrency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingFIFOWithWrap(t *testing.T) {
	r := NewRing[int](4, false)
	for i := 0; i < 3; i++ {
		require.True(t, r.Enqueue(i))
	}
	v, ok := r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	require.True(t, r.Enqueue(3))
	require.True(t, r.Enqueue(4))
	assert.True(t, r.IsFull())
	assert.False(t, r.Enqueue(5))

	head, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, head)
	assert.Equal(t, 4, r.Len())

	for want := 1; want <= 4; want++ {
		v, ok := r.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	_, ok = r.Dequeue()
	assert.False(t, ok)
	_, ok = r.Peek()
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
}

func TestRingGrowsByDoubling(t *testing.T) {
	const initial = 3
	r := NewRing[int](initial, true)
	// Force wrap before the first growth.
	r.Enqueue(-1)
	r.Enqueue(-2)
	r.Dequeue()
	r.Dequeue()

	for n := 1; n <= 200; n++ {
		require.True(t, r.Enqueue(n))
		c := r.Cap()
		assert.GreaterOrEqual(t, c, n)
		assert.Zero(t, c%initial)
		m := c / initial
		assert.Zero(t, m&(m-1), "capacity %d is not a power-of-two multiple", c)
	}
	for want := 1; want <= 200; want++ {
		v, ok := r.Dequeue()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

func TestRingDefaultCapacity(t *testing.T) {
	r := NewRing[string](0, true)
	assert.Equal(t, DefaultQueueCapacity, r.Cap())
	assert.True(t, r.Growable())
}

func TestRingResize(t *testing.T) {
	r := NewRing[int](4, false)
	for i := 0; i < 4; i++ {
		r.Enqueue(i)
	}
	r.Dequeue()
	r.Enqueue(4)

	assert.ErrorIs(t, r.Resize(3), ErrRingTooSmall)
	assert.ErrorIs(t, r.Resize(0), ErrRingTooSmall)

	require.NoError(t, r.Resize(8))
	assert.Equal(t, 8, r.Cap())
	assert.Equal(t, 4, r.Len())
	for want := 1; want <= 4; want++ {
		v, _ := r.Dequeue()
		assert.Equal(t, want, v)
	}

	r.Enqueue(9)
	r.Clear()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 8, r.Cap())
}
