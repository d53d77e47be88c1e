// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"github.com/valyala/fastrand"
)

// Producer pushes uniformly random values in [1, N] into a queue until the
// run completes.
//
// A producer may push far more than N values; duplicates are expected and
// discarded by the ledger. Each producer owns its random generator, so
// producers never contend on shared generator state.
//
// A Producer is run by exactly one goroutine.
type Producer struct {
	id    int
	n     uint32
	q     Queue[int]
	bp    Backpressure
	done  *Completion
	rng   fastrand.RNG
	stats ProducerStats
}

// ProducerStats counts a producer's queue operations.
type ProducerStats struct {
	ID        int
	Pushes    uint64 // Successful pushes
	FullWaits uint64 // Pushes refused because the queue was full
}

// NewProducer creates a producer drawing values from [1, n].
// Panics if n < 1.
func NewProducer(id, n int, q Queue[int], bp Backpressure, done *Completion) *Producer {
	if n < 1 || n > MaxCount {
		panic("pcq: producer value range out of bounds")
	}
	return &Producer{
		id:    id,
		n:     uint32(n),
		q:     q,
		bp:    bp,
		done:  done,
		stats: ProducerStats{ID: id},
	}
}

// Seed makes the producer's value sequence deterministic.
// Must be called before Run.
func (p *Producer) Seed(seed uint32) {
	p.rng.Seed(seed)
}

// Run produces until the completion signal is observed.
func (p *Producer) Run() {
	w := p.bp.Waiter()
	ready := func() bool {
		return p.done.Done() || p.q.Len() < p.q.Cap()
	}
	for !p.done.Done() {
		v := int(p.rng.Uint32n(p.n)) + 1
		if err := p.q.TryPush(&v); err != nil {
			p.stats.FullWaits++
			w.Full(ready)
			continue
		}
		p.stats.Pushes++
		w.Reset()
		p.bp.Pushed()
	}
}

// Stats returns the producer's counters. Call after Run has returned.
func (p *Producer) Stats() ProducerStats {
	return p.stats
}
