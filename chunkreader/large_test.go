package chunkreader

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

// TestReaders_MaxRegionBoundary runs every backend on a file straddling the
// real region stride (about 2 GiB). Set FLOATCHUNK_LARGE_TESTS=1 to enable.
func TestReaders_MaxRegionBoundary(t *testing.T) {
	if os.Getenv("FLOATCHUNK_LARGE_TESTS") == "" || testing.Short() {
		t.Skip("set FLOATCHUNK_LARGE_TESTS=1 to run multi-GiB tests")
	}
	const count = store.MaxRegionFloats + 5000
	path, p := generateFile(t, count)
	for _, b := range allBackends(store.MaxRegionFloats) {
		t.Run(b.name, func(t *testing.T) {
			r, err := b.factory(path)
			require.NoError(t, err)
			defer r.Close()

			length, err := r.Length()
			require.NoError(t, err)
			require.Equal(t, uint64(count), length)

			dst := make([]float32, 1000)
			for _, src := range []uint64{0, store.MaxRegionFloats - 500, store.MaxRegionFloats, count - 1000} {
				n, err := ReadInto(r, dst, src)
				require.NoError(t, err)
				require.Equal(t, 1000, n)
				checkFloats(t, p, src, dst, 0, 1000)
			}
		})
	}
}
