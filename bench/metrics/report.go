package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LatencyStats summarizes a latency sample in milliseconds.
type LatencyStats struct {
	P50Ms float64
	P95Ms float64
	P99Ms float64
	AvgMs float64
	MaxMs float64
	N     int
}

// ReadRow is one line of a read benchmark report.
type ReadRow struct {
	Reader       string
	Threads      int
	MinChunkSize int
	ReadFloats   int
	Iterations   int
	P50Ms        float64
	P95Ms        float64
	P99Ms        float64
	AvgMs        float64
	MBps         float64
	AllocRateMBs float64
	NumGC        uint32
}

// Percentile returns the p-th percentile (0-100) of an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}

// LatencyStatsFromDurations computes percentiles over durations.
func LatencyStatsFromDurations(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}
	ms := make([]float64, len(durations))
	var sum float64
	for i, d := range durations {
		ms[i] = float64(d.Nanoseconds()) / 1e6
		sum += ms[i]
	}
	sort.Float64s(ms)
	return LatencyStats{
		P50Ms: Percentile(ms, 50),
		P95Ms: Percentile(ms, 95),
		P99Ms: Percentile(ms, 99),
		AvgMs: sum / float64(len(ms)),
		MaxMs: ms[len(ms)-1],
		N:     len(ms),
	}
}

// WriteReadCSV writes rows to path, creating its directory.
func WriteReadCSV(rows []ReadRow, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"Reader", "Threads", "MinChunkSize", "ReadFloats", "Iterations", "P50Ms", "P95Ms", "P99Ms", "AvgMs", "MBps", "AllocRateMBs", "NumGC"})
	for _, r := range rows {
		w.Write([]string{
			r.Reader,
			fmt.Sprintf("%d", r.Threads),
			fmt.Sprintf("%d", r.MinChunkSize),
			fmt.Sprintf("%d", r.ReadFloats),
			fmt.Sprintf("%d", r.Iterations),
			fmt.Sprintf("%.3f", r.P50Ms),
			fmt.Sprintf("%.3f", r.P95Ms),
			fmt.Sprintf("%.3f", r.P99Ms),
			fmt.Sprintf("%.3f", r.AvgMs),
			fmt.Sprintf("%.1f", r.MBps),
			fmt.Sprintf("%.2f", r.AllocRateMBs),
			fmt.Sprintf("%d", r.NumGC),
		})
	}
	w.Flush()
	return w.Error()
}

// ReportDir is the default report directory.
const ReportDir = "report"

// ReportPath returns a dated report path under dir with the given extension.
func ReportPath(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+time.Now().Format("20060102")+ext)
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(v any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
