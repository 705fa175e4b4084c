package store

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStorage writes a header holding count followed by floats.
func writeStorage(t *testing.T, count uint64, floats []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "floats.dat")
	b := make([]byte, HeaderSize+len(floats)*FloatSize)
	binary.NativeEndian.PutUint64(b, count)
	for i, v := range floats {
		binary.NativeEndian.PutUint32(b[HeaderSize+i*FloatSize:], math.Float32bits(v))
	}
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

func TestHeader_EncodeDecode(t *testing.T) {
	b, err := EncodeHeader(&Header{Count: 123456789012})
	require.NoError(t, err)
	require.Len(t, b, HeaderSize)
	assert.Equal(t, uint64(123456789012), binary.NativeEndian.Uint64(b))

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789012), h.Count)

	_, err = DecodeHeader(b[:4])
	assert.Error(t, err)
	_, err = EncodeHeader(nil)
	assert.Error(t, err)
}

func TestAddressing(t *testing.T) {
	assert.Equal(t, int64(8), ByteOffset(0))
	assert.Equal(t, int64(48), ByteOffset(10))
	assert.Equal(t, int64(8)+int64(1<<31)*4, ByteOffset(1<<31))

	assert.Equal(t, uint64(0), FloatCount(0))
	assert.Equal(t, uint64(0), FloatCount(HeaderSize))
	assert.Equal(t, uint64(5), FloatCount(HeaderSize+5*FloatSize+3))

	assert.LessOrEqual(t, int64(MaxRegionFloats)*FloatSize+MapAlign, int64(MaxRegionBytes))
	assert.Greater(t, int64(MaxRegionFloats+1)*FloatSize+MapAlign, int64(MaxRegionBytes))
}

func TestStat_Readable(t *testing.T) {
	tests := []struct {
		name   string
		count  uint64
		floats int
		want   uint64
	}{
		{"finalized", 4, 4, 4},
		{"preallocated", 2, 4, 2},
		{"header ahead of data", 10, 4, 4},
		{"empty", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStorage(t, tt.count, make([]float32, tt.floats))
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			info, err := Stat(f)
			require.NoError(t, err)
			assert.Equal(t, tt.count, info.Count)
			assert.Equal(t, uint64(tt.floats), info.FileFloats)
			assert.Equal(t, tt.want, info.Readable())
		})
	}
}

func TestStat_ShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.dat")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = Stat(f)
	assert.ErrorIs(t, err, ErrShortFile)
}
