package chunkreader

import "github.com/ic-timon/floatchunk/chunkreader/store"

// StagingReader reads through positioned file reads into a reusable staging
// buffer. It does not map the file, so the file may be extended concurrently.
//
// Not safe for concurrent use.
type StagingReader struct {
	fileBase
	buf stagingBuffer
}

// NewStagingReader opens path with a staging buffer of opts.Capacity floats.
func NewStagingReader(path string, opts StagingOptions) (*StagingReader, error) {
	opts = opts.OrDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	base, err := openBase("staging", path, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &StagingReader{
		fileBase: base,
		buf:      allocStaging(opts.Capacity, opts.Offheap, base.log),
	}, nil
}

// Read copies floats through the staging buffer, refilling it as many times
// as needed. On error dst may hold a partial result.
func (r *StagingReader) Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	n, err := r.prepare(dst, srcIndex, dstIndex, length)
	if err != nil || n == 0 {
		return 0, err
	}
	out := dst[dstIndex : int(dstIndex)+n]
	staging, raw := r.buf.Floats(), r.buf.Bytes()
	off := store.ByteOffset(srcIndex)
	for len(out) > 0 {
		chunk := min(len(staging), len(out))
		nb := chunk * store.FloatSize
		if err := readFull(r.f, raw[:nb], off); err != nil {
			return n - len(out), ioErr("read", r.path, err)
		}
		copy(out[:chunk], staging[:chunk])
		out = out[chunk:]
		off += int64(nb)
	}
	return n, nil
}

// Close releases the staging buffer and closes the file.
func (r *StagingReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	if err := r.buf.Release(); err != nil {
		firstErr = ioErr("release staging", r.path, err)
	}
	if err := r.closeFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	r.log.LogClose(r.backend, r.path, firstErr)
	return firstErr
}
