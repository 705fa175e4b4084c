package chunkreader

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Staging buffer smaller than the read: refilled several times.
func TestStagingReader_RefillStagingBuffer(t *testing.T) {
	const count = 2000
	path, p := generateFile(t, count)
	for _, offheap := range []bool{false, true} {
		r, err := NewStagingReader(path, StagingOptions{Capacity: 300, Offheap: offheap})
		require.NoError(t, err)

		length, err := r.Length()
		require.NoError(t, err)
		assert.Equal(t, uint64(count), length)

		dst := make([]float32, 700)
		n, err := ReadInto(r, dst, 0)
		require.NoError(t, err)
		require.Equal(t, 700, n)
		checkFloats(t, p, 0, dst, 0, 700)

		n, err = ReadInto(r, dst, 1299)
		require.NoError(t, err)
		require.Equal(t, 700, n)
		checkFloats(t, p, 1299, dst, 0, 700)
		require.NoError(t, r.Close())
	}
}

func TestStagingBuffers(t *testing.T) {
	heap := newHeapStaging(1000)
	assert.Len(t, heap.Bytes(), 4000)
	assert.Len(t, heap.Floats(), 1000)
	assert.Zero(t, uintptr(unsafe.Pointer(&heap.Bytes()[0]))%heapAlign)
	heap.Floats()[999] = 1.5
	assert.Equal(t, math.Float32bits(1.5), binary.NativeEndian.Uint32(heap.Bytes()[3996:]))
	require.NoError(t, heap.Release())

	off, err := newOffheapStaging(1000)
	require.NoError(t, err)
	assert.Len(t, off.Bytes(), 4000)
	assert.Len(t, off.Floats(), 1000)
	off.Floats()[0] = 2
	assert.Equal(t, float32(2), off.Floats()[0])
	require.NoError(t, off.Release())
	require.NoError(t, off.Release())
}

func TestStagingReader_InvalidCapacity(t *testing.T) {
	path, _ := generateFile(t, 10)
	_, err := NewStagingReader(path, StagingOptions{Capacity: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
