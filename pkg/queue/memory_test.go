package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue(2)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.ErrorIs(t, q.Enqueue(3), ErrQueueFull)
	assert.Equal(t, 2, q.Size())

	item, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, item)

	messages, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{2}, messages)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	messages, err = q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestInMemoryQueue_ClearQueue(t *testing.T) {
	q := NewInMemoryQueue(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	require.NoError(t, q.ClearQueue())
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_concurrentProducer(t *testing.T) {
	q := NewInMemoryQueue(1000)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, q.Enqueue(i))
			}
		}()
	}
	wg.Wait()

	messages, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Len(t, messages, 400)
}
