package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/container"
)

func TestPriorityQueueInit(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	assert.Equal(t, 0, q.Len())
	assert.Panics(t, func() { q.First() })
}

func TestPriorityQueueOrder(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	q.HeapPush("c", 30)
	q.HeapPush("a", 10)
	q.HeapPush("d", 40)
	q.HeapPush("b", 20)
	assert.Equal(t, 4, q.Len())

	v, p := q.First()
	assert.Equal(t, "a", v)
	assert.Equal(t, 10.0, p)
	assert.Equal(t, 4, q.Len())

	got := make([]string, 0, 4)
	for q.Len() > 0 {
		v, _ := q.HeapPop()
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestPriorityQueueStableForEqualPriority(t *testing.T) {
	q := container.NewPriorityQueue[int]()
	for i := 0; i < 50; i++ {
		q.HeapPush(i, 100)
	}
	q.HeapPush(-1, 50)

	v, _ := q.HeapPop()
	assert.Equal(t, -1, v)
	for i := 0; i < 50; i++ {
		v, p := q.HeapPop()
		assert.Equal(t, i, v)
		assert.Equal(t, 100.0, p)
	}
	assert.Equal(t, 0, q.Len())
}
