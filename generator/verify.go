package generator

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

// MismatchError reports the first stored float differing from the producer.
type MismatchError struct {
	Index uint64
	Want  float32
	Got   float32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("generator: invalid value at index %d: want %g, got %g", e.Index, e.Want, e.Got)
}

// Verify reads path sequentially and checks every stored float against p.
// It returns the header count, or an error for a size/header mismatch or the
// first differing value.
func Verify(path string, p Producer) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	info, err := store.Stat(f)
	if err != nil {
		return 0, err
	}
	if want := store.ByteOffset(info.Count); info.Size != want {
		return info.Count, fmt.Errorf("generator: file size %d, want %d for %d floats", info.Size, want, info.Count)
	}

	r := bufio.NewReaderSize(io.NewSectionReader(f, store.HeaderSize, info.Size-store.HeaderSize), 1<<20)
	var b [store.FloatSize]byte
	for i := uint64(0); i < info.Count; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return info.Count, err
		}
		got := math.Float32frombits(binary.NativeEndian.Uint32(b[:]))
		if want := p(i); !Equal(want, got) {
			return info.Count, &MismatchError{Index: i, Want: want, Got: got}
		}
	}
	return info.Count, nil
}
