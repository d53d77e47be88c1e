// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pcq coordinates producers and consumers over one bounded queue
// and compares backpressure strategies.
//
// Producers push random values in [1, N]. Consumers pop them and claim the
// value's slot in a [Ledger]; the first claim of a value wins and gets the
// next global order, later claims of the same value are dropped. The run
// ends when all N slots are claimed:
//
//	Producer → Bounded → Consumer → Ledger → Completion
//
// # Quick Start
//
//	sum, err := pcq.New(10000).Run(ctx, pcq.Discard)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sum.Elapsed, sum.Duplicates)
//
// Builder options:
//
//	pcq.New(10000).Capacity(64).Producers(4).Consumers(4).Blocking()
//	pcq.New(10000).Mode(pcq.ModeBackoff)
//
// # Backpressure
//
// When TryPush finds the queue full (or TryPop finds it empty) a worker
// hands the [ErrWouldBlock] to its [Waiter]:
//
//	Spin:     pause, yield the processor, retry
//	Backoff:  adaptive pause that grows while blocked, resets on progress
//	Blocking: park on a condition variable until a pop (or push) signals
//
// The blocking policy evaluates the wait predicate under the same lock the
// notifier takes, so a notification can never fall between the failed check
// and the wait. Every successful pop wakes one parked producer; the
// completing consumer broadcasts to all parked workers.
//
// # Exactly-once Claims
//
// A ledger slot is claimed by a single CAS from unclaimed. Only the winner
// draws an order, so orders form exactly the sequence 1..N with no gaps and
// no repeats, whatever the interleaving of consumers:
//
//	l := pcq.NewLedger(3)
//	o, ok := l.TryClaim(1)           // 1, true
//	fmt.Println(l.IsComplete(o + 1)) // false: 2 slots left
//	_, ok = l.TryClaim(1)            // 0, false: duplicate
//
// # Latency
//
// A claim's latency is the time since the previous successful claim by any
// consumer, not the time since the value was produced. [Ledger.Lap] reads
// and advances the shared timer in one step, so concurrent claims measure
// disjoint intervals and no latency is negative. It measures consumer
// throughput, including scheduling luck between consumers.
//
// # Error Handling
//
// Queue full and queue empty are [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox]. They never leave a run. Invalid configuration is
// reported by [Config.Validate] before any goroutine starts, wrapped in
// [ErrInvalidConfig].
//
// # Race Detection
//
// Shared state is reached only through atomix atomics, the queue mutex or
// the blocking policy's lock, and worker counters are read after the
// workers join. The whole test suite runs under -race; [RaceEnabled] only
// shrinks the contended workloads there.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomics with explicit memory
// ordering, [code.hybscloud.com/spin] for CPU pause, eapache/queue for queue
// storage, valyala/fastrand for per-producer generators and
// go-lock-free-ring for the asynchronous progress sink.
package pcq
