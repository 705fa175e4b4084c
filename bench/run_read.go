package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ic-timon/floatchunk/bench/metrics"
	"github.com/ic-timon/floatchunk/chunkreader"
)

// runRead times opts.iterations reads of opts.readSize floats, sweeping the
// source offset across the file, and writes a report row.
func runRead(ctx context.Context, opts benchOpts, logger *chunkreader.Logger) error {
	if opts.readSize <= 0 || opts.iterations <= 0 {
		return fmt.Errorf("read-size and iterations must be > 0")
	}
	r, err := chunkreader.Open(opts.path, &opts.cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	length, err := r.Length()
	if err != nil {
		return err
	}
	readSize := min(uint64(opts.readSize), length, math.MaxUint32)
	if readSize == 0 {
		return fmt.Errorf("%s holds no floats", opts.path)
	}
	span := length - readSize + 1
	step := max(span/uint64(opts.iterations), 1)
	dst := make([]float32, readSize)

	metrics.GC()
	before := metrics.Take()
	durations := make([]time.Duration, 0, opts.iterations)
	var total uint64
	for i := 0; i < opts.iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := uint64(i) * step % span
		t0 := time.Now()
		n, err := r.Read(dst, src, 0, uint32(readSize))
		if err != nil {
			return err
		}
		durations = append(durations, time.Since(t0))
		total += uint64(n)
	}
	after := metrics.Take()

	stats := metrics.LatencyStatsFromDurations(durations)
	allocRate, gcs := metrics.Diff(before, after)
	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	row := metrics.ReadRow{
		Reader:       string(opts.cfg.Backend),
		Threads:      opts.cfg.Threads,
		MinChunkSize: opts.cfg.MinChunkSize,
		ReadFloats:   int(readSize),
		Iterations:   opts.iterations,
		P50Ms:        stats.P50Ms,
		P95Ms:        stats.P95Ms,
		P99Ms:        stats.P99Ms,
		AvgMs:        stats.AvgMs,
		MBps:         float64(total*4) / (1 << 20) / sum.Seconds(),
		AllocRateMBs: allocRate / (1 << 20),
		NumGC:        gcs,
	}
	logger.Info("read benchmark done",
		"reader", row.Reader, "threads", row.Threads, "read_floats", row.ReadFloats,
		"p50_ms", row.P50Ms, "p99_ms", row.P99Ms, "mb_per_s", row.MBps)
	fmt.Printf("%s threads=%d size=%d P50=%.2fms P95=%.2fms P99=%.2fms %.0f MB/s\n",
		row.Reader, row.Threads, row.ReadFloats, row.P50Ms, row.P95Ms, row.P99Ms, row.MBps)

	path := metrics.ReportPath(opts.reportDir, "read_", ".csv")
	if err := metrics.WriteReadCSV([]metrics.ReadRow{row}, path); err != nil {
		return err
	}
	if opts.json {
		if err := metrics.WriteJSON(row, metrics.ReportPath(opts.reportDir, "read_", ".json")); err != nil {
			return err
		}
	}
	logger.Info("report written", "path", path)
	return nil
}
