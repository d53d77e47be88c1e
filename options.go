// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"context"
	"log/slog"
)

// Builder creates run configs with fluent configuration.
//
// Example:
//
//	// Two producers, two consumers, spin backpressure
//	sum, err := pcq.New(10000).Run(ctx, pcq.Discard)
//
//	// Eight producers parking on a condition variable
//	cfg, err := pcq.New(10000).Producers(8).Blocking().Build()
type Builder struct {
	cfg Config
}

// New creates a builder for a run over count values, starting from
// DefaultConfig.
//
// Example:
//
//	b := pcq.New(1000)
//	cfg, err := b.Capacity(64).Consumers(4).Build()
func New(count int) *Builder {
	cfg := DefaultConfig()
	cfg.Count = count
	return &Builder{cfg: cfg}
}

// Capacity sets the queue capacity.
func (b *Builder) Capacity(n int) *Builder {
	b.cfg.Capacity = n
	return b
}

// Producers sets the number of producer goroutines.
func (b *Builder) Producers(n int) *Builder {
	b.cfg.Producers = n
	return b
}

// Consumers sets the number of consumer goroutines.
func (b *Builder) Consumers(n int) *Builder {
	b.cfg.Consumers = n
	return b
}

// Mode selects the backpressure strategy.
func (b *Builder) Mode(m Mode) *Builder {
	b.cfg.Mode = m
	return b
}

// Blocking selects ModeBlocking.
func (b *Builder) Blocking() *Builder {
	return b.Mode(ModeBlocking)
}

// Logger sets the run logger.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.cfg.Logger = l
	return b
}

// Build validates and returns the config.
func (b *Builder) Build() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}

// Run builds the config and runs it, see [Run].
func (b *Builder) Run(ctx context.Context, sink Sink) (Summary, error) {
	cfg, err := b.Build()
	if err != nil {
		return Summary{}, err
	}
	return Run(ctx, cfg, sink)
}
