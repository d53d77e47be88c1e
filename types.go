// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import "time"

// Queue is the combined producer-consumer interface for a bounded FIFO queue.
//
// Queue provides non-blocking TryPush and TryPop operations. Both operations
// return ErrWouldBlock when they cannot proceed (queue full or empty).
// Waiting for space or data is the caller's job, see [Backpressure].
//
// Example:
//
//	q := pcq.NewBounded[int](1000)
//
//	// Push
//	val := 42
//	if err := q.TryPush(&val); err != nil {
//	    // Handle full queue
//	}
//
//	// Pop
//	elem, err := q.TryPop()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Pusher[T]
	Popper[T]
	Len() int
	Cap() int
}

// Pusher is the interface for enqueueing elements.
type Pusher[T any] interface {
	// TryPush appends an element to the tail (non-blocking).
	// The element is copied into the queue.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	TryPush(elem *T) error
}

// Popper is the interface for dequeueing elements.
type Popper[T any] interface {
	// TryPop removes and returns the head element (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	TryPop() (T, error)
}

// Progress is the record a consumer emits for every value it claims.
type Progress struct {
	Value    int           // Claimed value in [1, N]
	Order    uint64        // 1-based global claim order
	Latency  time.Duration // Time since the previous successful claim
	Consumer int           // Id of the claiming consumer
}

// Sink receives progress records.
//
// Emit is called from consumer goroutines right after a successful claim,
// concurrently when more than one consumer runs. Implementations must be
// safe for concurrent use.
type Sink interface {
	Emit(p Progress)
}
