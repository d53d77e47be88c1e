// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command pcq runs bounded producer/consumer rounds and reports timings.
//
// Usage:
//
//	pcq [flags]
//	pcq -cv -n 10000
//	pcq -config run.yaml -mode backoff
//
// Without -n (and without a count in the config file) pcq prompts for the
// number of values on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"code.hybscloud.com/pcq"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pcq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	count := fs.Int("n", 0, "number of values to generate")
	capacity := fs.Int("capacity", pcq.DefaultCapacity, "queue capacity")
	producers := fs.Int("producers", pcq.DefaultProducers, "producer goroutines")
	consumers := fs.Int("consumers", pcq.DefaultConsumers, "consumer goroutines")
	mode := fs.String("mode", string(pcq.ModeSpin), "backpressure mode: spin, blocking or backoff")
	cv := fs.Bool("cv", false, "use condition-variable blocking (same as -mode blocking)")
	quiet := fs.Bool("quiet", false, "do not print per-value progress")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := pcq.DefaultConfig()
	if *configPath != "" {
		loaded, err := pcq.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		cfg = loaded
	}

	// Flags given explicitly override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Count = *count
		case "capacity":
			cfg.Capacity = *capacity
		case "producers":
			cfg.Producers = *producers
		case "consumers":
			cfg.Consumers = *consumers
		case "mode":
			cfg.Mode = pcq.Mode(*mode)
		}
	})
	if *cv {
		cfg.Mode = pcq.ModeBlocking
	}
	cfg.Logger = logger

	if cfg.Count == 0 {
		n, err := promptCount(stdin, stdout)
		if err != nil {
			fmt.Fprintln(stderr, "Incorrect value. Must be positive integer not larger than", pcq.MaxCount)
			return 1
		}
		cfg.Count = n
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var sink pcq.Sink = pcq.Discard
	var text *pcq.TextSink
	if !*quiet {
		text = pcq.NewTextSink(stdout)
		rs, err := pcq.NewRingSink(text, 4096, uint64(cfg.Consumers))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer rs.Close()
		sink = rs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := pcq.Run(ctx, cfg, sink)
	if rs, ok := sink.(*pcq.RingSink); ok {
		rs.Close()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if text != nil {
		if werr := text.Err(); werr != nil {
			fmt.Fprintln(stderr, werr)
			return 1
		}
	}

	fmt.Fprintf(stdout, "Generation completed. Total generation time: %d microseconds.\n", sum.TotalLatency.Microseconds())
	fmt.Fprintf(stdout, "Total execution time: %d microseconds.\n", sum.Elapsed.Microseconds())
	if err != nil {
		fmt.Fprintf(stderr, "interrupted after %d of %d values\n", sum.Ledger.Claimed(), sum.Count)
		return 130
	}
	return 0
}

func promptCount(stdin io.Reader, stdout io.Writer) (int, error) {
	fmt.Fprint(stdout, "Please enter the number of elements to generate: ")
	var n int
	if _, err := fmt.Fscan(bufio.NewReader(stdin), &n); err != nil {
		return 0, err
	}
	return n, nil
}
