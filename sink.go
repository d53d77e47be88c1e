// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"runtime"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// Discard is a Sink that drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Progress) {}

// FormatProgress renders p in the console layout:
//
//	number = 00042, order = 00007, generation_time = 0001234
//
// generation_time is the claim latency in microseconds.
func FormatProgress(p Progress) string {
	return fmt.Sprintf("number = %05d, order = %05d, generation_time = %07d",
		p.Value, p.Order, p.Latency.Microseconds())
}

// TextSink writes one FormatProgress line per record to W.
//
// The first write error stops further output and is kept for Err.
type TextSink struct {
	mu  sync.Mutex
	W   io.Writer
	err error
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{W: w}
}

// Emit writes p. Lines from concurrent consumers never interleave.
func (s *TextSink) Emit(p Progress) {
	line := FormatProgress(p) + "\n"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := io.WriteString(s.W, line); err != nil {
		s.err = fmt.Errorf("pcq: write progress: %w", err)
	}
}

// Err returns the first write error, or nil.
func (s *TextSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LogSink logs every record at debug level.
type LogSink struct {
	Logger *slog.Logger
}

// Emit logs p.
func (s LogSink) Emit(p Progress) {
	s.Logger.LogAttrs(context.Background(), slog.LevelDebug, "pcq: value claimed",
		slog.Int("value", p.Value),
		slog.Uint64("order", p.Order),
		slog.Int64("latency_us", p.Latency.Microseconds()),
		slog.Int("consumer", p.Consumer),
	)
}

// RingSink decouples consumers from a slow sink.
//
// Consumers write records into a sharded lock-free ring, one shard per
// consumer id (modulo the shard count), and a single drain goroutine forwards
// them to the wrapped sink. Records from one consumer keep their order;
// records from different consumers may be reordered.
//
// Close must be called after the last Emit; it flushes the ring and stops the
// drain goroutine.
type RingSink struct {
	ring    *ring.ShardedRing
	shards  uint64
	next    Sink
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewRingSink creates a RingSink forwarding to next.
// capacity is the total ring capacity, shards the number of producer shards.
// Both are rounded up to powers of 2, capacity to at least one slot per
// shard.
func NewRingSink(next Sink, capacity, shards uint64) (*RingSink, error) {
	shards = ceilPow2(max(shards, 1))
	capacity = ceilPow2(max(capacity, shards))
	r, err := ring.NewShardedRing(capacity, shards)
	if err != nil {
		return nil, fmt.Errorf("pcq: progress ring: %w", err)
	}
	s := &RingSink{
		ring:    r,
		shards:  shards,
		next:    next,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.drain()
	return s, nil
}

// Emit enqueues p, spinning and yielding while its shard is full.
func (s *RingSink) Emit(p Progress) {
	shard := uint64(p.Consumer) % s.shards
	sw := spin.Wait{}
	for !s.ring.Write(shard, p) {
		sw.Once()
		runtime.Gosched()
	}
}

// Close flushes pending records and stops the drain goroutine.
// Safe to call more than once.
func (s *RingSink) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}

func (s *RingSink) drain() {
	defer close(s.stopped)
	backoff := iox.Backoff{}
	for {
		if s.forward() {
			backoff.Reset()
			continue
		}
		select {
		case <-s.stop:
			for s.forward() {
			}
			return
		default:
			backoff.Wait()
		}
	}
}

func ceilPow2(n uint64) uint64 {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len64(n)
}

// forward moves one record to the wrapped sink.
// Returns false if the ring was empty.
func (s *RingSink) forward() bool {
	v, ok := s.ring.TryRead()
	if !ok {
		return false
	}
	if p, ok := v.(Progress); ok {
		s.next.Emit(p)
	}
	return true
}
