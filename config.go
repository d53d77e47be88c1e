// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultCapacity is the queue capacity used when none is configured.
	DefaultCapacity = 1000
	// DefaultProducers is the default number of producer goroutines.
	DefaultProducers = 2
	// DefaultConsumers is the default number of consumer goroutines.
	DefaultConsumers = 2
	// MaxCount is the largest supported value count N, the upper bound of
	// the producers' random value range.
	MaxCount = math.MaxInt32
)

// Config describes one run.
type Config struct {
	Count     int  `yaml:"count"`     // Target value count N
	Capacity  int  `yaml:"capacity"`  // Queue capacity C
	Producers int  `yaml:"producers"` // Producer goroutines
	Consumers int  `yaml:"consumers"` // Consumer goroutines
	Mode      Mode `yaml:"mode"`      // Backpressure strategy

	// Logger receives run lifecycle logs. Nil means slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a config with every field but Count set to its
// default.
func DefaultConfig() Config {
	return Config{
		Capacity:  DefaultCapacity,
		Producers: DefaultProducers,
		Consumers: DefaultConsumers,
		Mode:      ModeSpin,
	}
}

// LoadConfig reads a YAML config file. Fields missing from the file keep
// their DefaultConfig values. The result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("pcq: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("pcq: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks c before any goroutine is started.
// Every returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	case c.Count > MaxCount:
		return fmt.Errorf("%w: count must not exceed %d, got %d", ErrInvalidConfig, MaxCount, c.Count)
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.Producers <= 0:
		return fmt.Errorf("%w: producers must be positive, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers <= 0:
		return fmt.Errorf("%w: consumers must be positive, got %d", ErrInvalidConfig, c.Consumers)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
