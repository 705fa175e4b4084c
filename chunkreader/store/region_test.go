package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFloats(t *testing.T) {
	const count = 40000 // spans several MapAlign boundaries
	floats := make([]float32, count)
	for i := range floats {
		floats[i] = float32(i) * 1.5
	}
	path := writeStorage(t, count, floats)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	// 16382 is the first float at a MapAlign offset.
	for _, start := range []uint64{0, 1, 16381, 16382, 16383, 20000, count - 100} {
		region, err := MapFloats(f, start, 100)
		require.NoError(t, err, "start %d", start)
		assert.Equal(t, start, region.Start())
		assert.Equal(t, 100, region.Len())
		assert.Equal(t, floats[start:start+100], region.Floats(), "start %d", start)
		require.NoError(t, region.Advise(AdviceSequential))
		require.NoError(t, region.Unmap())
		require.NoError(t, region.Unmap())
		assert.Nil(t, region.Floats())
	}
}

func TestMapFloats_InvalidSize(t *testing.T) {
	path := writeStorage(t, 1, []float32{1})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = MapFloats(f, 0, 0)
	assert.ErrorIs(t, err, ErrRegionSize)
	_, err = MapFloats(f, 0, MaxRegionFloats+1)
	assert.ErrorIs(t, err, ErrRegionSize)
}
