package chunkreader

import "github.com/ic-timon/floatchunk/chunkreader/store"

// MappedReader maps the requested range fresh on every Read and unmaps it
// before returning. Ranges longer than the region stride are split into
// consecutive regions.
//
// Not safe for concurrent use.
type MappedReader struct {
	fileBase
	stride int
	advice store.Advice
}

// NewMappedReader opens path for on-demand mapping.
func NewMappedReader(path string, opts MappedOptions) (*MappedReader, error) {
	opts = opts.OrDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	base, err := openBase("mapped", path, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &MappedReader{fileBase: base, stride: opts.RegionFloats, advice: opts.Advice}, nil
}

// Read maps ceil(n/stride) regions in order, copying each into dst.
func (r *MappedReader) Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	n, err := r.prepare(dst, srcIndex, dstIndex, length)
	if err != nil || n == 0 {
		return 0, err
	}
	out := dst[dstIndex : int(dstIndex)+n]
	src := srcIndex
	for regions := ceilDiv(n, r.stride); regions > 0; regions-- {
		count := min(r.stride, len(out))
		if err := r.copyRegion(out[:count], src); err != nil {
			return n - len(out), err
		}
		out = out[count:]
		src += uint64(count)
	}
	return n, nil
}

func (r *MappedReader) copyRegion(out []float32, src uint64) (err error) {
	region, err := store.MapFloats(r.f, src, len(out))
	if err != nil {
		return ioErr("mmap", r.path, err)
	}
	r.log.LogMap(r.path, src, len(out))
	defer func() {
		uerr := region.Unmap()
		r.log.LogUnmap(r.path, src, len(out), uerr)
		if uerr != nil && err == nil {
			err = ioErr("munmap", r.path, uerr)
		}
	}()
	if err := region.Advise(r.advice); err != nil {
		r.log.Debug("madvise failed", "path", r.path, "error", err)
	}
	copy(out, region.Floats())
	return nil
}

// Close closes the file. No region outlives a Read.
func (r *MappedReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.closeFile()
	r.log.LogClose(r.backend, r.path, err)
	return err
}
