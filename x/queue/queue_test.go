package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	q := New[int](4)
	for i := 1; i <= 3; i++ {
		require.True(t, q.TrySend(i))
	}
	var got []int
	n := q.Drain(func(v int) bool { got = append(got, v); return true })
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, ok := q.TryRecv()
	assert.False(t, ok, "empty queue yields nothing")
}

func TestFullRejects(t *testing.T) {
	q := New[string](2)
	assert.True(t, q.TrySend("a"))
	assert.True(t, q.TrySend("b"))
	assert.False(t, q.TrySend("c"))
	assert.Equal(t, uint32(1), q.Drops())
	assert.Equal(t, 2, q.Len())
}

func TestDrainStopsEarly(t *testing.T) {
	q := New[int](4)
	q.TrySend(1)
	q.TrySend(2)
	q.TrySend(3)

	n := q.Drain(func(v int) bool { return v != 2 })
	assert.Equal(t, 2, n)
	v, ok := q.TryRecv()
	require.True(t, ok)
	assert.Equal(t, 3, v, "values after the stop point stay queued")
}

func TestClose(t *testing.T) {
	q := New[int](4)
	q.TrySend(1)
	q.Close()

	assert.True(t, q.Closed())
	assert.False(t, q.TrySend(2))
	v, ok := q.TryRecv()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestDefaultLen(t *testing.T) {
	q := New[int](0)
	for i := 0; i < defaultLen; i++ {
		require.True(t, q.TrySend(i))
	}
	assert.False(t, q.TrySend(99))
}

func TestConcurrentSenders(t *testing.T) {
	q := New[int](64)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				q.TrySend(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 64, q.Len())
	assert.Equal(t, uint32(0), q.Drops())
}
