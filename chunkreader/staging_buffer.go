package chunkreader

import (
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

// heapAlign is the byte alignment of heap staging buffers.
const heapAlign = 64

// stagingBuffer is the intermediate buffer between file bytes and the
// destination floats, supporting both heap and off-heap implementations.
type stagingBuffer interface {
	Bytes() []byte
	Floats() []float32
	Release() error // no-op for heap buffers, unmap for off-heap
}

// heapStaging is a staging buffer in Go heap memory, 64-byte aligned.
type heapStaging struct {
	b  []byte
	fl []float32
}

func newHeapStaging(floats int) *heapStaging {
	size := floats * store.FloatSize
	raw := make([]byte, size+heapAlign)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := (heapAlign - addr&(heapAlign-1)) & (heapAlign - 1)
	b := raw[off : off+uintptr(size)]
	return &heapStaging{
		b:  b,
		fl: unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), floats),
	}
}

func (s *heapStaging) Bytes() []byte     { return s.b }
func (s *heapStaging) Floats() []float32 { return s.fl }
func (s *heapStaging) Release() error {
	s.b, s.fl = nil, nil
	return nil
}

// offheapStaging is a page-aligned staging buffer in an anonymous mapping,
// outside the Go heap.
type offheapStaging struct {
	m  mmap.MMap
	fl []float32
}

func newOffheapStaging(floats int) (*offheapStaging, error) {
	m, err := mmap.MapRegion(nil, floats*store.FloatSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, err
	}
	return &offheapStaging{
		m:  m,
		fl: unsafe.Slice((*float32)(unsafe.Pointer(&m[0])), floats),
	}, nil
}

func (s *offheapStaging) Bytes() []byte     { return s.m }
func (s *offheapStaging) Floats() []float32 { return s.fl }

// Release unmaps the buffer.
func (s *offheapStaging) Release() error {
	if s.m == nil {
		return nil
	}
	s.fl = nil
	err := s.m.Unmap()
	s.m = nil
	return err
}

// allocStaging allocates a staging buffer, falling back to the heap when the
// off-heap mapping is unavailable.
func allocStaging(floats int, offheap bool, log *Logger) stagingBuffer {
	if offheap {
		b, err := newOffheapStaging(floats)
		if err == nil {
			return b
		}
		log.Warn("off-heap staging unavailable, using heap", "floats", floats, "error", err)
	}
	return newHeapStaging(floats)
}
