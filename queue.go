// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"sync"

	"github.com/eapache/queue"
)

// Bounded is a fixed-capacity multi-producer multi-consumer FIFO queue.
//
// Every operation runs its check-then-act sequence inside one critical
// section guarded by a single mutex, so length and contents are never
// observed out of step. FIFO order holds across all producers combined.
//
// Capacity is exact: unlike ring sizes that round to a power of 2, a queue
// created with capacity 1000 holds at most 1000 elements.
//
// Storage is an eapache ring buffer that grows on demand up to capacity.
type Bounded[T any] struct {
	mu       sync.Mutex
	items    *queue.Queue
	capacity int
}

// NewBounded creates a bounded queue holding at most capacity elements.
// Panics if capacity < 1.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		panic("pcq: capacity must be >= 1")
	}
	return &Bounded[T]{
		items:    queue.New(),
		capacity: capacity,
	}
}

// TryPush appends an element to the tail.
// Returns ErrWouldBlock if the queue is full; the queue is left unchanged.
func (q *Bounded[T]) TryPush(elem *T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() >= q.capacity {
		return ErrWouldBlock
	}
	q.items.Add(*elem)
	return nil
}

// TryPop removes and returns the head element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Bounded[T]) TryPop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		var zero T
		return zero, ErrWouldBlock
	}
	elem := q.items.Peek().(T)
	q.items.Remove()
	return elem, nil
}

// Len returns the number of queued elements.
// The value may be stale by the time the caller looks at it.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return q.capacity
}
