package chunkreader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ic-timon/floatchunk/generator"
)

// testStride is the region stride used to exercise region and chunk
// boundaries without multi-GiB files.
const testStride = 1000

// generateFile writes count floats of the linear ramp and returns its path
// and producer.
func generateFile(t testing.TB, count uint64) (string, generator.Producer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_floats.dat")
	p := generator.Linear(count)
	require.NoError(t, generator.Generate(context.Background(), path, count, generator.Shared(p),
		generator.Options{MaxThreads: 4}))
	return path, p
}

// checkFloats asserts dst[dstIndex:dstIndex+length] holds the producer values
// from startIndex.
func checkFloats(t testing.TB, p generator.Producer, startIndex uint64, dst []float32, dstIndex, length int) {
	t.Helper()
	for i := 0; i < length; i++ {
		want := p(startIndex + uint64(i))
		if !generator.Equal(want, dst[dstIndex+i]) {
			t.Fatalf("index %d: want %g, got %g", startIndex+uint64(i), want, dst[dstIndex+i])
		}
	}
}

type backendCase struct {
	name    string
	factory Factory
}

// backends returns every single-file backend configuration under test.
func backends(stride int) []backendCase {
	return []backendCase{
		{"staging/heap", StagingFactory(StagingOptions{})},
		{"staging/offheap", StagingFactory(StagingOptions{Offheap: true})},
		{"staging/refill", StagingFactory(StagingOptions{Capacity: 300})},
		{"mapped", MappedFactory(MappedOptions{RegionFloats: stride})},
		{"cached", CachedFactory(CachedOptions{RegionFloats: stride})},
	}
}

// allBackends adds fan-out wrappers around the single-file backends.
func allBackends(stride int) []backendCase {
	cases := backends(stride)
	for _, b := range backends(stride) {
		factory := b.factory
		cases = append(cases, backendCase{
			name: "concurrent/" + b.name,
			factory: func(path string) (ChunkReader, error) {
				return NewConcurrentReader(path, factory, ConcurrentOptions{Threads: 4, MinChunkSize: 100})
			},
		})
	}
	return cases
}
