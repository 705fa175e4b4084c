// Command bench generates float storage files and measures chunk reader latency.
//
//	bench -file floats.dat -generate -count 100000000
//	bench -file floats.dat -reader cached -threads 4 -read-size 1000000 -iterations 100
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/ic-timon/floatchunk/bench/metrics"
	"github.com/ic-timon/floatchunk/chunkreader"
	"github.com/ic-timon/floatchunk/generator"
)

// genSeed keeps generated files comparable across runs and appends.
const genSeed = 12345

type benchOpts struct {
	path       string
	count      uint64
	appendMode bool
	genThreads int
	verify     bool
	cfg        chunkreader.Config
	readSize   int
	iterations int
	reportDir  string
	json       bool
}

func main() {
	var opts benchOpts
	var reader, logLevel string
	var generate bool
	flag.StringVar(&opts.path, "file", "floats.dat", "float storage file")
	flag.BoolVar(&generate, "generate", false, "write -count floats before reading")
	flag.Uint64Var(&opts.count, "count", 10_000_000, "floats to generate")
	flag.BoolVar(&opts.appendMode, "append", false, "append to an existing file")
	flag.IntVar(&opts.genThreads, "gen-threads", runtime.NumCPU(), "parallel generator writers")
	flag.BoolVar(&opts.verify, "verify", false, "check every stored float against the generator")
	flag.StringVar(&reader, "reader", "", "reader backend: staging | mapped | cached (empty skips reading)")
	flag.IntVar(&opts.cfg.Threads, "threads", 1, "fan-out threads, > 1 enables the concurrent reader")
	flag.IntVar(&opts.cfg.MinChunkSize, "min-chunk", chunkreader.DefaultMinChunkSize, "minimum floats per fan-out slice")
	flag.IntVar(&opts.cfg.StagingCapacity, "staging", chunkreader.DefaultStagingCapacity, "staging buffer size in floats")
	flag.BoolVar(&opts.cfg.StagingOffheap, "offheap", false, "allocate the staging buffer outside the Go heap")
	flag.Int64Var(&opts.cfg.IOLimitBytesPerSec, "io-limit", 0, "read throughput limit in bytes/s (0 = unlimited)")
	flag.IntVar(&opts.readSize, "read-size", 1_000_000, "floats per Read call")
	flag.IntVar(&opts.iterations, "iterations", 100, "Read calls to time")
	flag.StringVar(&opts.reportDir, "report", metrics.ReportDir, "report directory")
	flag.BoolVar(&opts.json, "json", false, "also write a JSON report")
	flag.StringVar(&logLevel, "log-level", "info", "debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", logLevel)
		os.Exit(2)
	}
	logger := chunkreader.NewTextLogger(level)
	opts.cfg.Backend = chunkreader.Backend(reader)
	opts.cfg.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if generate {
		p := generator.Hashed(genSeed)
		err := generator.Generate(ctx, opts.path, opts.count, generator.Shared(p), generator.Options{
			Append:     opts.appendMode,
			MaxThreads: opts.genThreads,
			Logger:     logger.Logger,
		})
		if err != nil {
			logger.Error("generate failed", "path", opts.path, "error", err)
			os.Exit(1)
		}
		if opts.verify {
			count, err := generator.Verify(opts.path, p)
			if err != nil {
				logger.Error("verify failed", "path", opts.path, "error", err)
				os.Exit(1)
			}
			logger.Info("file verified", "path", opts.path, "count", count)
		}
	}

	if reader == "" {
		return
	}
	if err := runRead(ctx, opts, logger); err != nil {
		logger.Error("read benchmark failed", "path", opts.path, "error", err)
		os.Exit(1)
	}
}
