package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyStatsFromDurations(t *testing.T) {
	assert.Equal(t, LatencyStats{}, LatencyStatsFromDurations(nil))

	durations := make([]time.Duration, 0, 101)
	for i := 100; i >= 0; i-- {
		durations = append(durations, time.Duration(i)*time.Millisecond)
	}
	s := LatencyStatsFromDurations(durations)
	assert.Equal(t, 101, s.N)
	assert.InDelta(t, 50, s.P50Ms, 1e-9)
	assert.InDelta(t, 95, s.P95Ms, 1e-9)
	assert.InDelta(t, 99, s.P99Ms, 1e-9)
	assert.InDelta(t, 100, s.MaxMs, 1e-9)
	assert.InDelta(t, 50, s.AvgMs, 1e-9)
}

func TestPercentileBounds(t *testing.T) {
	sorted := []float64{1, 2, 3}
	assert.Equal(t, 1.0, Percentile(sorted, -5))
	assert.Equal(t, 3.0, Percentile(sorted, 150))
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestWriteReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "read.csv")
	require.NoError(t, WriteReadCSV([]ReadRow{{Reader: "cached", Threads: 4, ReadFloats: 1000, Iterations: 3, P50Ms: 1.5}}, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Reader", records[0][0])
	assert.Equal(t, []string{"cached", "4", "0", "1000", "3", "1.500"}, records[1][:6])
}

func TestDiff(t *testing.T) {
	before := Snapshot{TS: time.Unix(0, 0), HeapAlloc: 100, NumGC: 2}
	after := Snapshot{TS: time.Unix(2, 0), HeapAlloc: 300, NumGC: 5}
	rate, gcs := Diff(before, after)
	assert.InDelta(t, 100, rate, 1e-9)
	assert.Equal(t, uint32(3), gcs)

	rate, gcs = Diff(after, before)
	assert.Zero(t, rate)
	assert.Zero(t, gcs)
}
