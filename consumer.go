// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import "time"

// Consumer pops values, claims their ledger slots and signals completion
// once the last slot is claimed.
//
// Per popped value v:
//  1. Notify the policy that a slot was freed
//  2. Stop if a sibling completed the run meanwhile
//  3. Claim slot v-1; on a miss drop v (a duplicate, not an error)
//  4. Take a lap of the latency timer, record it, emit progress
//  5. On the N-th claim set completion, release waiters and stop
//
// A Consumer is run by exactly one goroutine.
type Consumer struct {
	id     int
	q      Queue[int]
	ledger *Ledger
	bp     Backpressure
	done   *Completion
	sink   Sink
	stats  ConsumerStats
}

// ConsumerStats counts a consumer's queue operations and claims.
type ConsumerStats struct {
	ID         int
	Pops       uint64 // Successful pops
	EmptyWaits uint64 // Pops refused because the queue was empty
	Claims     uint64 // Values this consumer claimed first
	Duplicates uint64 // Values already claimed elsewhere
}

// NewConsumer creates a consumer. A nil sink discards progress records.
func NewConsumer(id int, q Queue[int], ledger *Ledger, bp Backpressure, done *Completion, sink Sink) *Consumer {
	if sink == nil {
		sink = Discard
	}
	return &Consumer{
		id:     id,
		q:      q,
		ledger: ledger,
		bp:     bp,
		done:   done,
		sink:   sink,
		stats:  ConsumerStats{ID: id},
	}
}

// Run consumes until the completion signal is observed or set.
func (c *Consumer) Run() {
	w := c.bp.Waiter()
	ready := func() bool {
		return c.done.Done() || c.q.Len() > 0
	}
	for !c.done.Done() {
		v, err := c.q.TryPop()
		if err != nil {
			c.stats.EmptyWaits++
			w.Empty(ready)
			continue
		}
		c.stats.Pops++
		w.Reset()
		c.bp.Popped()

		if c.done.Done() {
			return
		}
		idx := v - 1
		order, ok := c.ledger.TryClaim(idx)
		if !ok {
			c.stats.Duplicates++
			continue
		}
		c.stats.Claims++
		complete := c.ledger.IsComplete(order + 1)
		// The completing claim leaves the timer where it is.
		var latency time.Duration
		if complete {
			latency = c.ledger.Elapsed()
		} else {
			latency = c.ledger.Lap()
		}
		c.ledger.RecordLatency(idx, latency)
		c.sink.Emit(Progress{Value: v, Order: order, Latency: latency, Consumer: c.id})

		if complete {
			if c.done.Set() {
				c.bp.Release()
			}
			return
		}
	}
}

// Stats returns the consumer's counters. Call after Run has returned.
func (c *Consumer) Stats() ConsumerStats {
	return c.stats
}
