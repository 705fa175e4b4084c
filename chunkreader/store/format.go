package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
)

const (
	// HeaderSize is the size of the float count header.
	HeaderSize = 8

	// FloatSize is the size of one stored float32.
	FloatSize = 4

	// MapAlign is the alignment of every mapping offset. It is a multiple of
	// the page size (and of the Windows allocation granularity) on all
	// supported platforms.
	MapAlign = 64 << 10

	// MaxRegionBytes is the largest mapping length accepted, bounded by a
	// signed 32-bit byte length.
	MaxRegionBytes = math.MaxInt32

	// MaxRegionFloats is the largest float count a single region may hold,
	// leaving room for the alignment slack in front of the first float.
	MaxRegionFloats = (MaxRegionBytes - MapAlign) / FloatSize
)

var (
	// ErrShortFile is returned when a file is smaller than the header.
	ErrShortFile = errors.New("store: file smaller than header")
	// ErrRegionSize is returned when a region length is zero or exceeds MaxRegionFloats.
	ErrRegionSize = errors.New("store: invalid region size")
)

// Header holds the persisted float count.
type Header struct {
	Count uint64
}

// EncodeHeader writes the header to a HeaderSize byte slice.
func EncodeHeader(h *Header) ([]byte, error) {
	if h == nil {
		return nil, errors.New("header is nil")
	}
	var w bytes.Buffer
	if err := binary.Write(&w, binary.NativeEndian, h); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeHeader reads the header from src.
func DecodeHeader(src []byte) (*Header, error) {
	if len(src) < HeaderSize {
		return nil, errors.New("header too short")
	}
	var h Header
	if err := binary.Read(bytes.NewReader(src[:HeaderSize]), binary.NativeEndian, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ReadHeader reads the header at offset 0 of r.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrShortFile
		}
		return nil, err
	}
	return DecodeHeader(buf)
}

// WriteHeader writes the header at offset 0 of w.
func WriteHeader(w io.WriterAt, h *Header) error {
	b, err := EncodeHeader(h)
	if err != nil {
		return err
	}
	_, err = w.WriteAt(b, 0)
	return err
}

// ByteOffset returns the file offset of the float at floatIndex.
func ByteOffset(floatIndex uint64) int64 {
	return HeaderSize + int64(floatIndex)*FloatSize
}

// FloatCount returns the number of whole floats a file of fileSize bytes holds.
func FloatCount(fileSize int64) uint64 {
	if fileSize < HeaderSize {
		return 0
	}
	return uint64(fileSize-HeaderSize) / FloatSize
}

// Info describes the current state of a storage file.
type Info struct {
	Size       int64  // file size in bytes
	Count      uint64 // float count from the header
	FileFloats uint64 // floats physically present in the file
}

// Readable returns the number of floats a reader may address: the header count,
// bounded by what the file physically holds.
func (i Info) Readable() uint64 {
	return min(i.Count, i.FileFloats)
}

// Stat reads size and header of an open storage file.
func Stat(f *os.File) (Info, error) {
	fi, err := f.Stat()
	if err != nil {
		return Info{}, err
	}
	if fi.Size() < HeaderSize {
		return Info{}, ErrShortFile
	}
	h, err := ReadHeader(f)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Size:       fi.Size(),
		Count:      h.Count,
		FileFloats: FloatCount(fi.Size()),
	}, nil
}
