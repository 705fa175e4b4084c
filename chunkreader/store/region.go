package store

import (
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// Advice is an access pattern hint passed to the kernel for a mapped region.
type Advice int

const (
	// AdviceDefault selects the backend's default hint.
	AdviceDefault Advice = iota
	// AdviceNormal requests no special treatment.
	AdviceNormal
	// AdviceSequential expects the region to be read front to back once.
	AdviceSequential
	// AdviceRandom expects scattered reads.
	AdviceRandom
	// AdviceWillNeed asks the kernel to read the region ahead.
	AdviceWillNeed
)

// Region is a read-only mapping of a contiguous float range of a storage file.
type Region struct {
	data   mmap.MMap
	floats []float32
	start  uint64
}

// MapFloats maps count floats starting at floatIndex. The mapping starts at the
// MapAlign boundary below the first float; Floats hides the slack.
func MapFloats(f *os.File, floatIndex uint64, count int) (*Region, error) {
	if count <= 0 || count > MaxRegionFloats {
		return nil, ErrRegionSize
	}
	off := ByteOffset(floatIndex)
	base := off &^ (MapAlign - 1)
	delta := int(off - base)
	m, err := mmap.MapRegion(f, delta+count*FloatSize, mmap.RDONLY, 0, base)
	if err != nil {
		return nil, err
	}
	ptr := unsafe.Pointer(&m[delta])
	return &Region{
		data:   m,
		floats: unsafe.Slice((*float32)(ptr), count),
		start:  floatIndex,
	}, nil
}

// Floats returns the mapped floats. The slice is valid until Unmap.
// Caller must not modify it.
func (r *Region) Floats() []float32 {
	return r.floats
}

// Start returns the float index of the first mapped float.
func (r *Region) Start() uint64 {
	return r.start
}

// Len returns the number of mapped floats.
func (r *Region) Len() int {
	return len(r.floats)
}

// Unmap releases the mapping. It is idempotent.
func (r *Region) Unmap() error {
	if r.data == nil {
		return nil
	}
	r.floats = nil
	err := r.data.Unmap()
	r.data = nil
	return err
}

// Advise passes an access hint for the region to the kernel. Hints are
// advisory; AdviceDefault is a no-op.
func (r *Region) Advise(a Advice) error {
	if r.data == nil || a == AdviceDefault {
		return nil
	}
	return osAdvise(r.data, a)
}
