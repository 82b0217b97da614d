package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestQueue_Init verifies queue initialization.
func TestQueue_Init(t *testing.T) {
	var q Queue[uint64]
	q.Init(10)

	require.NotNil(t, q.buf)
	require.Equal(t, 10, len(q.buf))
	require.Equal(t, 0, q.head)
	require.Equal(t, 0, q.tail)
}

// TestQueue_Init_MinSize verifies that Init enforces minimum size.
func TestQueue_Init_MinSize(t *testing.T) {
	var q Queue[uint64]
	q.Init(1) // Should be rounded up to 2

	require.GreaterOrEqual(t, len(q.buf), 2)
}

// TestQueue_TryPushTryPop verifies basic push/pop operations.
func TestQueue_TryPushTryPop(t *testing.T) {
	var q Queue[uint64]
	q.Init(10)

	require.True(t, q.TryPush(1))
	require.True(t, q.TryPush(2))
	require.True(t, q.TryPush(3))
	require.Equal(t, 3, q.Len())

	for _, want := range []uint64{1, 2, 3} {
		val, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, want, val)
	}

	_, ok := q.TryPop()
	require.False(t, ok)
}

// TestQueue_Full verifies that TryPush returns false when queue is full.
func TestQueue_Full(t *testing.T) {
	var q Queue[uint64]
	q.Init(3) // Can hold 2 elements (head+1 == tail means full)

	require.True(t, q.TryPush(1))
	require.True(t, q.TryPush(2))
	require.False(t, q.TryPush(3))
}

// TestQueue_WrapAround verifies circular buffer behavior.
func TestQueue_WrapAround(t *testing.T) {
	var q Queue[uint64]
	q.Init(4) // Can hold 3 elements

	require.True(t, q.TryPush(1))
	require.True(t, q.TryPush(2))
	val, _ := q.TryPop()
	require.Equal(t, uint64(1), val)

	require.True(t, q.TryPush(3))
	require.True(t, q.TryPush(4))

	for _, want := range []uint64{2, 3, 4} {
		val, _ = q.TryPop()
		require.Equal(t, want, val)
	}
}

// TestQueue_PushGrowsPreservingOrder verifies that Push never drops and keeps FIFO order across a wrap.
func TestQueue_PushGrowsPreservingOrder(t *testing.T) {
	var q Queue[string]
	q.Init(3)

	q.Push("a")
	q.Push("b")
	v, _ := q.TryPop()
	require.Equal(t, "a", v)

	for _, s := range []string{"c", "d", "e", "f"} {
		q.Push(s)
	}
	require.Equal(t, 5, q.Len())

	for _, want := range []string{"b", "c", "d", "e", "f"} {
		v, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

// TestQueue_ZeroValuePush verifies that an uninitialized queue is usable with Push.
func TestQueue_ZeroValuePush(t *testing.T) {
	var q Queue[int]
	q.Push(7)

	v, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, 7, v)
}
