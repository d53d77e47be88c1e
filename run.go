// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Summary is the outcome of a run.
type Summary struct {
	RunID    uuid.UUID
	Mode     Mode
	Count    int  // Target value count N
	Complete bool // Completion was set by the N-th claim

	// TotalLatency is the sum of all recorded claim latencies.
	TotalLatency time.Duration
	// Elapsed is the wall-clock time from start until every worker joined.
	Elapsed time.Duration

	Pushes     uint64
	FullWaits  uint64
	Pops       uint64
	EmptyWaits uint64
	Duplicates uint64

	Producers []ProducerStats
	Consumers []ConsumerStats

	// Ledger holds the final claim table. Read-only.
	Ledger *Ledger
}

// Run executes one producer/consumer run and blocks until every worker has
// joined.
//
// The run ends when the N-th distinct value is claimed. If ctx ends first,
// Run sets the completion signal, releases parked workers, waits for them
// and returns the partial summary with ctx.Err().
//
// A nil sink discards progress records.
func Run(ctx context.Context, cfg Config, sink Sink) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	bp, err := NewBackpressure(cfg.Mode)
	if err != nil {
		return Summary{}, err
	}
	if sink == nil {
		sink = Discard
	}

	runID := uuid.New()
	log := cfg.logger().With(slog.String("run", runID.String()))

	q := NewBounded[int](cfg.Capacity)
	done := &Completion{}

	producers := make([]*Producer, cfg.Producers)
	for i := range producers {
		producers[i] = NewProducer(i, cfg.Count, q, bp, done)
	}

	log.Info("pcq: run starting",
		slog.Int("count", cfg.Count),
		slog.Int("capacity", cfg.Capacity),
		slog.Int("producers", cfg.Producers),
		slog.Int("consumers", cfg.Consumers),
		slog.String("mode", string(cfg.Mode)),
	)

	ledger := NewLedger(cfg.Count)
	consumers := make([]*Consumer, cfg.Consumers)
	for i := range consumers {
		consumers[i] = NewConsumer(i, q, ledger, bp, done, sink)
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if done.Set() {
				bp.Release()
			}
		case <-finished:
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for _, p := range producers {
		wg.Go(func() {
			p.Run()
			st := p.Stats()
			log.Debug("pcq: producer finished task",
				slog.Int("producer", st.ID),
				slog.Uint64("pushes", st.Pushes),
				slog.Uint64("full_waits", st.FullWaits),
			)
		})
	}
	for _, c := range consumers {
		wg.Go(func() {
			c.Run()
			st := c.Stats()
			log.Debug("pcq: consumer finished task",
				slog.Int("consumer", st.ID),
				slog.Uint64("claims", st.Claims),
				slog.Uint64("duplicates", st.Duplicates),
			)
		})
	}
	wg.Wait()
	elapsed := time.Since(start)
	close(finished)

	sum := Summary{
		RunID:        runID,
		Mode:         cfg.Mode,
		Count:        cfg.Count,
		Complete:     ledger.Claimed() == cfg.Count,
		TotalLatency: ledger.TotalLatency(),
		Elapsed:      elapsed,
		Ledger:       ledger,
	}
	for _, p := range producers {
		st := p.Stats()
		sum.Pushes += st.Pushes
		sum.FullWaits += st.FullWaits
		sum.Producers = append(sum.Producers, st)
	}
	for _, c := range consumers {
		st := c.Stats()
		sum.Pops += st.Pops
		sum.EmptyWaits += st.EmptyWaits
		sum.Duplicates += st.Duplicates
		sum.Consumers = append(sum.Consumers, st)
	}

	log.Info("pcq: run finished",
		slog.Bool("complete", sum.Complete),
		slog.Int64("total_latency_us", sum.TotalLatency.Microseconds()),
		slog.Int64("elapsed_us", sum.Elapsed.Microseconds()),
		slog.Uint64("pushes", sum.Pushes),
		slog.Uint64("duplicates", sum.Duplicates),
	)

	if !sum.Complete {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
	}
	return sum, nil
}
