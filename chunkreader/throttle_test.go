package chunkreader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottledReader(t *testing.T) {
	path, p := generateFile(t, 2000)
	inner, err := NewStagingReader(path, StagingOptions{})
	require.NoError(t, err)
	// 8000 bytes/s with an 8000 byte burst: the first 2000 floats pass
	// immediately, the next 1000 wait about half a second.
	r := NewThrottledReader(inner, 8000)
	defer r.Close()

	length, err := r.Length()
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), length)

	dst := make([]float32, 2000)
	n, err := ReadInto(r, dst, 0)
	require.NoError(t, err)
	require.Equal(t, 2000, n)
	checkFloats(t, p, 0, dst, 0, 2000)

	start := time.Now()
	n, err = r.Read(dst, 1000, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, 1000, n)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)

	_, err = r.Read(dst, 0, 1500, 1000)
	assert.ErrorIs(t, err, ErrDestinationBounds)

	require.NoError(t, r.Close())
	_, err = r.Length()
	assert.ErrorIs(t, err, ErrClosed)
}
