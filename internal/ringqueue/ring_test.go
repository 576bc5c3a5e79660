package ringqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	var r Ring
	r.Init(Capacity)

	assert.True(t, r.IsEmpty())
	assert.False(t, r.IsFull())

	a := []byte("a")
	b := []byte("b")
	c := []byte("c")

	require.True(t, r.Enqueue(a))
	require.True(t, r.Enqueue(b))
	require.True(t, r.Enqueue(c))
	assert.Equal(t, 3, r.Len())

	got, ok := r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, a, got)

	got, ok = r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, b, got)

	got, ok = r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, c, got)

	assert.True(t, r.IsEmpty())
}

func TestDequeueEmptyIsNoop(t *testing.T) {
	var r Ring
	r.Init(2)

	buf, ok := r.Dequeue()
	assert.False(t, ok)
	assert.Nil(t, buf)
	assert.Equal(t, 0, r.Len())
}

func TestEnqueueFullIsNoop(t *testing.T) {
	var r Ring
	r.Init(2)

	require.True(t, r.Enqueue([]byte("1")))
	require.True(t, r.Enqueue([]byte("2")))
	assert.True(t, r.IsFull())

	ok := r.Enqueue([]byte("3"))
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}

// TestCapacityOverflow is S5: capacity 10, the eleventh put raises queue
// full and does not mutate the queue.
func TestCapacityOverflow(t *testing.T) {
	var r Ring
	r.Init(Capacity)

	for i := 0; i < Capacity; i++ {
		require.True(t, r.Enqueue([]byte{byte(i)}))
	}

	assert.True(t, r.IsFull())
	ok := r.Enqueue([]byte{0xff})
	assert.False(t, ok)
	assert.Equal(t, Capacity, r.Len())
}

// TestSizeInvariant is property 1: for all sequences of enqueue/dequeue
// within capacity, size after N enqueues and M dequeues equals N-M, and
// dequeues return items in enqueue order.
func TestSizeInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(t, "capacity")

		var r Ring
		r.Init(capacity)

		var model [][]byte
		next := 0

		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 0, 200).Draw(t, "ops")

		for _, op := range ops {
			switch op {
			case 0: // enqueue
				item := []byte{byte(next)}
				next++

				ok := r.Enqueue(item)
				if len(model) == capacity {
					assert.False(t, ok)
				} else {
					assert.True(t, ok)
					model = append(model, item)
				}
			case 1: // dequeue
				got, ok := r.Dequeue()
				if len(model) == 0 {
					assert.False(t, ok)
				} else {
					assert.True(t, ok)
					assert.Equal(t, model[0], got)
					model = model[1:]
				}
			}

			assert.Equal(t, len(model), r.Len())
		}
	})
}
