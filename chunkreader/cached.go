package chunkreader

import "github.com/ic-timon/floatchunk/chunkreader/store"

// CachedMappedReader maps the file lazily in fixed chunks of the region stride
// and keeps every mapped chunk until Close. Chunk c covers float indices
// [c*stride, (c+1)*stride). A Read may span any number of chunks.
//
// Not safe for concurrent use. Chunks are written once on first access and
// only read afterwards.
type CachedMappedReader struct {
	fileBase
	stride int
	advice store.Advice
	chunks []*store.Region // fixed capacity, indexed by chunk index
}

// NewCachedMappedReader opens path for cached mapping. It fails with
// ErrInvalidConfig when the file already needs more than opts.MaxChunks chunks.
func NewCachedMappedReader(path string, opts CachedOptions) (*CachedMappedReader, error) {
	opts = opts.OrDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	base, err := openBase("cached", path, opts.Logger)
	if err != nil {
		return nil, err
	}
	info, err := base.stat()
	if err != nil {
		base.closeFile()
		return nil, err
	}
	if need := ceilDiv64(info.FileFloats, uint64(opts.RegionFloats)); need > uint64(opts.MaxChunks) {
		base.closeFile()
		return nil, &ConfigError{
			Field:  "MaxChunks",
			Value:  opts.MaxChunks,
			Reason: "file needs more chunks",
		}
	}
	return &CachedMappedReader{
		fileBase: base,
		stride:   opts.RegionFloats,
		advice:   opts.Advice,
		chunks:   make([]*store.Region, opts.MaxChunks),
	}, nil
}

// Read copies from consecutive cached chunks, mapping missing ones.
func (r *CachedMappedReader) Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	n, err := r.prepare(dst, srcIndex, dstIndex, length)
	if err != nil || n == 0 {
		return 0, err
	}
	out := dst[dstIndex : int(dstIndex)+n]
	src := srcIndex
	stride := uint64(r.stride)
	for len(out) > 0 {
		chunkIndex := src / stride
		if chunkIndex >= uint64(len(r.chunks)) {
			return n - len(out), &AddressingError{FloatIndex: src, ChunkIndex: chunkIndex, Limit: len(r.chunks)}
		}
		inChunk := int(src - chunkIndex*stride)
		end := inChunk + min(len(out), r.stride-inChunk)
		region, err := r.chunk(int(chunkIndex), end)
		if err != nil {
			return n - len(out), err
		}
		k := copy(out, region.Floats()[inChunk:end])
		out = out[k:]
		src += uint64(k)
	}
	return n, nil
}

// chunk returns the cached region of chunkIndex holding at least need floats.
// A tail chunk mapped before the file grew is remapped.
func (r *CachedMappedReader) chunk(chunkIndex, need int) (*store.Region, error) {
	region := r.chunks[chunkIndex]
	if region != nil && region.Len() >= need {
		return region, nil
	}
	if region != nil {
		start, floats := region.Start(), region.Len()
		uerr := region.Unmap()
		r.log.LogUnmap(r.path, start, floats, uerr)
		r.chunks[chunkIndex] = nil
		if uerr != nil {
			return nil, ioErr("munmap", r.path, uerr)
		}
	}
	info, err := r.stat()
	if err != nil {
		return nil, err
	}
	start := uint64(chunkIndex) * uint64(r.stride)
	if start >= info.FileFloats {
		return nil, ioErr("mmap", r.path, store.ErrShortFile)
	}
	count := int(min(uint64(r.stride), info.FileFloats-start))
	region, err = store.MapFloats(r.f, start, count)
	if err != nil {
		return nil, ioErr("mmap", r.path, err)
	}
	r.log.LogMap(r.path, start, count)
	if err := region.Advise(r.advice); err != nil {
		r.log.Debug("madvise failed", "path", r.path, "error", err)
	}
	r.chunks[chunkIndex] = region
	return region, nil
}

// Close unmaps every cached chunk and closes the file. Unmapping is
// immediate, so the file may be removed right after Close returns.
func (r *CachedMappedReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	for i, region := range r.chunks {
		if region == nil {
			continue
		}
		start, floats := region.Start(), region.Len()
		err := region.Unmap()
		r.log.LogUnmap(r.path, start, floats, err)
		if err != nil && firstErr == nil {
			firstErr = ioErr("munmap", r.path, err)
		}
		r.chunks[i] = nil
	}
	if err := r.closeFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	r.log.LogClose(r.backend, r.path, firstErr)
	return firstErr
}

func ceilDiv64(a, b uint64) uint64 {
	return (a + b - 1) / b
}
