// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"time"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// Ledger is a fixed table of claim records, one per value in [1, N].
//
// Each slot moves from unclaimed to a unique 1-based order exactly once.
// The claim is a single CAS on the slot's order field; the winner then draws
// its order from a shared fetch-and-add counter. No lock is taken on the
// claim path.
//
// Slot states:
//
//	0        unclaimed
//	claiming won by a consumer, order not yet published
//	k        claimed with global order k (1 <= k <= N)
//
// The ledger also carries the inter-claim latency timer: latency of a claim
// is the time elapsed since the previous successful claim by any consumer.
// Lap reads and advances the timer atomically.
//
// Memory: 16 bytes per slot
type Ledger struct {
	_     cpu.CacheLinePad
	next  atomix.Uint64 // Next order to hand out (starts at 1)
	_     cpu.CacheLinePad
	mark  atomix.Uint64 // Nanoseconds since epoch of the last lap or restart
	_     cpu.CacheLinePad
	epoch time.Time
	slots []ledgerSlot
}

type ledgerSlot struct {
	order   atomix.Uint64
	latency atomix.Int64 // Nanoseconds
}

// claiming marks a slot whose CAS succeeded but whose order is not stored yet.
const claiming = ^uint64(0)

// NewLedger creates a ledger with n unclaimed slots.
// The latency timer starts now.
// Panics if n < 1.
func NewLedger(n int) *Ledger {
	if n < 1 {
		panic("pcq: ledger size must be >= 1")
	}
	l := &Ledger{
		epoch: time.Now(),
		slots: make([]ledgerSlot, n),
	}
	l.next.StoreRelaxed(1)
	return l
}

// TryClaim claims slot index for the caller.
//
// Returns the assigned order and true if the slot was unclaimed. Returns
// (0, false) with no side effect if another claimer got there first or if
// index is outside [0, N).
func (l *Ledger) TryClaim(index int) (uint64, bool) {
	if index < 0 || index >= len(l.slots) {
		return 0, false
	}
	s := &l.slots[index]
	if !s.order.CompareAndSwapAcqRel(0, claiming) {
		return 0, false
	}
	order := l.next.AddAcqRel(1) - 1
	s.order.StoreRelease(order)
	return order, true
}

// RecordLatency stores d for a freshly claimed slot.
func (l *Ledger) RecordLatency(index int, d time.Duration) {
	l.slots[index].latency.StoreRelease(int64(d))
}

// IsComplete reports whether next, the counter value right after a claim's
// increment, shows that all N slots are claimed.
func (l *Ledger) IsComplete(next uint64) bool {
	return next == uint64(len(l.slots))+1
}

// Elapsed returns the time since the last Lap or Restart (or since
// NewLedger), without moving the mark. Never negative.
func (l *Ledger) Elapsed() time.Duration {
	now := l.now()
	prev := l.mark.LoadAcquire()
	if prev > now {
		return 0
	}
	return time.Duration(now - prev)
}

// Lap returns the time since the previous lap and moves the mark to now in
// one step. Concurrent laps each measure a disjoint interval, so the result
// is never negative.
func (l *Ledger) Lap() time.Duration {
	for {
		prev := l.mark.LoadAcquire()
		now := l.now()
		if prev >= now {
			return 0
		}
		if l.mark.CompareAndSwapAcqRel(prev, now) {
			return time.Duration(now - prev)
		}
	}
}

// Restart moves the mark to now unless a concurrent lap already moved it
// further.
func (l *Ledger) Restart() {
	for {
		prev := l.mark.LoadAcquire()
		now := l.now()
		if prev >= now || l.mark.CompareAndSwapAcqRel(prev, now) {
			return
		}
	}
}

// now returns monotonic nanoseconds since epoch.
func (l *Ledger) now() uint64 {
	return uint64(time.Since(l.epoch))
}

// Len returns the number of slots N.
func (l *Ledger) Len() int {
	return len(l.slots)
}

// Claimed returns the number of orders handed out so far.
func (l *Ledger) Claimed() int {
	return int(l.next.LoadAcquire() - 1)
}

// Order returns the order of slot index, or 0 if it is not claimed yet.
func (l *Ledger) Order(index int) uint64 {
	o := l.slots[index].order.LoadAcquire()
	if o == claiming {
		return 0
	}
	return o
}

// Latency returns the latency recorded for slot index.
func (l *Ledger) Latency(index int) time.Duration {
	return time.Duration(l.slots[index].latency.LoadAcquire())
}

// TotalLatency sums all recorded latencies.
// Meaningful once the run has finished.
func (l *Ledger) TotalLatency() time.Duration {
	var total time.Duration
	for i := range l.slots {
		total += time.Duration(l.slots[i].latency.LoadAcquire())
	}
	return total
}
