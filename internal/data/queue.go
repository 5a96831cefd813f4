package data

import (
	"container/heap"
	"sync"
)

// Queue is a bounded first-in-first-out queue backed by a heap of sequence-numbered entries.
type Queue struct {
	store    *sequenceHeap
	capacity int
	seq      uint64
	mutex    sync.Mutex
}

// NewQueue creates a new FIFO queue with the specified capacity.
// The capacity may be any non-positive integer to disable the capacity limit.
func NewQueue(capacity int) *Queue {
	var store sequenceHeap

	if capacity > 0 {
		store = make(sequenceHeap, 0, capacity)
	} else {
		store = make(sequenceHeap, 0)
	}

	heap.Init(&store)

	return &Queue{store: &store, capacity: capacity}
}

// Push inserts a new value at the tail of the queue. It refuses, returning false, to add an item
// beyond the queue's provisioned capacity.
func (q *Queue) Push(value interface{}) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.capacity > 0 && q.store.Len() == q.capacity {
		return false
	}

	q.seq++
	heap.Push(q.store, &entry{value: value, seq: q.seq})

	return true
}

// Pop removes the oldest item from the queue. It returns the item and a boolean indicating
// whether the pop was successful.
func (q *Queue) Pop() (interface{}, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.store.Len() == 0 {
		return nil, false
	}

	return heap.Pop(q.store).(*entry).value, true
}

// Drain removes and returns every queued item in FIFO order.
func (q *Queue) Drain() []interface{} {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	var values []interface{}
	for q.store.Len() > 0 {
		values = append(values, heap.Pop(q.store).(*entry).value)
	}

	return values
}

// Size reads the current size of the queue.
func (q *Queue) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.store.Len()
}

// Empty returns whether the queue holds no items.
func (q *Queue) Empty() bool {
	return q.Size() == 0
}
