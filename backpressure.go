// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"fmt"
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Mode selects a backpressure strategy.
type Mode string

const (
	// ModeSpin retries immediately after yielding the processor.
	ModeSpin Mode = "spin"
	// ModeBlocking parks waiters on condition variables until notified.
	ModeBlocking Mode = "blocking"
	// ModeBackoff retries after an adaptive, growing pause.
	ModeBackoff Mode = "backoff"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeSpin, ModeBlocking, ModeBackoff}

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// Backpressure is the policy producers and consumers consult when the queue
// is full or empty.
//
// A policy is shared by every worker of a run. Per-worker state lives in the
// [Waiter] each worker obtains once before its loop.
//
// Notification contract:
//   - Pushed after every successful TryPush
//   - Popped after every successful TryPop (one slot freed, one producer woken)
//   - Release once at run end, waking every waiter
//
// Policies that do not park goroutines implement the notifications as no-ops.
type Backpressure interface {
	Waiter() Waiter
	Pushed()
	Popped()
	Release()
}

// Waiter is the per-worker side of a [Backpressure] policy.
//
// ready reports whether waiting should stop, e.g. the queue has room again
// or the run has completed. Parking policies evaluate it under their lock;
// polling policies may ignore it.
type Waiter interface {
	// Full is called by a producer after TryPush returned ErrWouldBlock.
	Full(ready func() bool)
	// Empty is called by a consumer after TryPop returned ErrWouldBlock.
	Empty(ready func() bool)
	// Reset is called after a successful operation.
	Reset()
}

// NewBackpressure returns a fresh policy for mode m.
func NewBackpressure(m Mode) (Backpressure, error) {
	switch m {
	case ModeSpin:
		return Spin{}, nil
	case ModeBlocking:
		return NewBlocking(), nil
	case ModeBackoff:
		return Backoff{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, string(m))
	}
}

// =============================================================================
// Spin
// =============================================================================

// Spin is the busy-wait policy: pause, yield the processor, retry.
// Nothing ever parks, so notifications are no-ops.
type Spin struct{}

// Waiter returns a spinning waiter.
func (Spin) Waiter() Waiter { return &spinWaiter{} }

// Pushed is a no-op.
func (Spin) Pushed() {}

// Popped is a no-op.
func (Spin) Popped() {}

// Release is a no-op.
func (Spin) Release() {}

type spinWaiter struct {
	sw spin.Wait
}

func (w *spinWaiter) Full(func() bool)  { w.yield() }
func (w *spinWaiter) Empty(func() bool) { w.yield() }
func (w *spinWaiter) Reset()            { w.sw.Reset() }

func (w *spinWaiter) yield() {
	w.sw.Once()
	runtime.Gosched()
}

// =============================================================================
// Backoff
// =============================================================================

// Backoff retries after an adaptive pause that grows while the queue stays
// full (or empty) and resets after progress.
// Nothing ever parks, so notifications are no-ops.
type Backoff struct{}

// Waiter returns a backoff waiter.
func (Backoff) Waiter() Waiter { return &backoffWaiter{} }

// Pushed is a no-op.
func (Backoff) Pushed() {}

// Popped is a no-op.
func (Backoff) Popped() {}

// Release is a no-op.
func (Backoff) Release() {}

type backoffWaiter struct {
	b iox.Backoff
}

func (w *backoffWaiter) Full(func() bool)  { w.b.Wait() }
func (w *backoffWaiter) Empty(func() bool) { w.b.Wait() }
func (w *backoffWaiter) Reset()            { w.b.Reset() }

// =============================================================================
// Blocking
// =============================================================================

// Blocking is the condition-variable policy.
//
// Producers park on notFull, consumers park on notEmpty. A waiter checks its
// ready predicate while holding mu and only then calls Wait, and notifiers
// take mu before signalling, so a notification sent after the check cannot
// be lost.
//
// Waiter counts let Pushed and Popped skip the lock when nobody is parked:
// a waiter is counted before it evaluates ready, so a notifier that reads
// zero made its change visible to that evaluation.
type Blocking struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	released bool

	fullWaiters  atomix.Int32
	emptyWaiters atomix.Int32
}

// NewBlocking creates a blocking policy.
func NewBlocking() *Blocking {
	b := &Blocking{}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b
}

// Waiter returns a waiter parking on b.
func (b *Blocking) Waiter() Waiter { return blockingWaiter{b: b} }

// Pushed wakes one parked consumer.
func (b *Blocking) Pushed() {
	b.signal(b.notEmpty, &b.emptyWaiters)
}

// Popped wakes one parked producer.
func (b *Blocking) Popped() {
	b.signal(b.notFull, &b.fullWaiters)
}

// Release wakes every parked goroutine. Waiters return immediately from then
// on, regardless of their predicate.
func (b *Blocking) Release() {
	b.mu.Lock()
	b.released = true
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
	b.mu.Unlock()
}

// Waiting returns the number of producers and consumers currently inside
// Full or Empty.
func (b *Blocking) Waiting() (producers, consumers int) {
	return int(b.fullWaiters.Load()), int(b.emptyWaiters.Load())
}

func (b *Blocking) signal(c *sync.Cond, waiters *atomix.Int32) {
	if waiters.Load() == 0 {
		return
	}
	b.mu.Lock()
	c.Signal()
	b.mu.Unlock()
}

func (b *Blocking) park(c *sync.Cond, waiters *atomix.Int32, ready func() bool) {
	waiters.Add(1)
	b.mu.Lock()
	for !b.released && !ready() {
		c.Wait()
	}
	b.mu.Unlock()
	waiters.Add(-1)
}

type blockingWaiter struct {
	b *Blocking
}

func (w blockingWaiter) Full(ready func() bool)  { w.b.park(w.b.notFull, &w.b.fullWaiters, ready) }
func (w blockingWaiter) Empty(ready func() bool) { w.b.park(w.b.notEmpty, &w.b.emptyWaiters, ready) }
func (w blockingWaiter) Reset()                  {}
