// Package metrics collects runtime and latency figures for the bench CLI.
package metrics

import (
	"runtime"
	"runtime/debug"
	"time"
)

// Snapshot is a point-in-time view of runtime memory counters.
type Snapshot struct {
	TS           time.Time
	HeapAlloc    uint64
	HeapSys      uint64
	HeapReleased uint64
	NumGC        uint32
	NumGoroutine int
}

// Take captures the current runtime counters.
func Take() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Snapshot{
		TS:           time.Now(),
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapReleased: m.HeapReleased,
		NumGC:        m.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
}

// GC forces a collection and returns freed memory to the OS.
func GC() {
	runtime.GC()
	debug.FreeOSMemory()
}

// Diff returns the heap growth rate (bytes/s) and GC count between two snapshots.
func Diff(before, after Snapshot) (allocRateBps float64, gcDelta uint32) {
	elapsed := after.TS.Sub(before.TS).Seconds()
	if elapsed <= 0 {
		return 0, 0
	}
	allocDelta := max(int64(after.HeapAlloc)-int64(before.HeapAlloc), 0)
	allocRateBps = float64(allocDelta) / elapsed
	if after.NumGC >= before.NumGC {
		gcDelta = after.NumGC - before.NumGC
	}
	return allocRateBps, gcDelta
}
