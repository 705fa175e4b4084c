package chunkreader

import (
	"errors"
	"io"
	"math"
	"os"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

// ChunkReader reads chunks of floats from a huge storage file.
//
// Reads extending past the readable float count are clamped: Read copies the
// floats that exist and returns their count with a nil error. A read starting
// at or after the end copies nothing.
type ChunkReader interface {
	// Length returns the number of floats in the storage file.
	Length() (uint64, error)
	// Read copies up to length floats starting at float index srcIndex into
	// dst[dstIndex:]. dstIndex+length must not exceed len(dst).
	Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error)
	// Close releases all resources. It is idempotent.
	Close() error
}

// Factory creates a backend for the storage file at path.
type Factory func(path string) (ChunkReader, error)

// ReadInto fills dst from srcIndex, clamped at the end of the file.
func ReadInto(r ChunkReader, dst []float32, srcIndex uint64) (int, error) {
	if uint64(len(dst)) > math.MaxUint32 {
		return 0, ErrDestinationBounds
	}
	return r.Read(dst, srcIndex, 0, uint32(len(dst)))
}

func checkDestination(dst []float32, dstIndex, length uint32) error {
	if uint64(dstIndex)+uint64(length) > uint64(len(dst)) {
		return ErrDestinationBounds
	}
	return nil
}

// clampLength bounds length to the floats readable from srcIndex.
func clampLength(readable, srcIndex uint64, length uint32) int {
	if srcIndex >= readable {
		return 0
	}
	return int(min(uint64(length), readable-srcIndex))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// fileBase is the shared state of the single-file backends: one open handle,
// the readable-length query and the read preamble.
type fileBase struct {
	backend string
	path    string
	f       *os.File
	closed  bool
	log     *Logger
}

func openBase(backend, path string, log *Logger) (fileBase, error) {
	log = orNoop(log)
	f, err := os.Open(path)
	if err != nil {
		err = ioErr("open", path, err)
		log.LogOpen(backend, path, err)
		return fileBase{}, err
	}
	b := fileBase{backend: backend, path: path, f: f, log: log}
	if _, err := b.stat(); err != nil {
		f.Close()
		log.LogOpen(backend, path, err)
		return fileBase{}, err
	}
	log.LogOpen(backend, path, nil)
	return b, nil
}

func (b *fileBase) stat() (store.Info, error) {
	info, err := store.Stat(b.f)
	if err != nil {
		return store.Info{}, ioErr("stat", b.path, err)
	}
	return info, nil
}

// Length returns the number of readable floats.
func (b *fileBase) Length() (uint64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	info, err := b.stat()
	if err != nil {
		return 0, err
	}
	return info.Readable(), nil
}

// prepare validates a read and returns the clamped float count.
func (b *fileBase) prepare(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if err := checkDestination(dst, dstIndex, length); err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	readable, err := b.Length()
	if err != nil {
		return 0, err
	}
	return clampLength(readable, srcIndex, length), nil
}

func (b *fileBase) closeFile() error {
	err := b.f.Close()
	b.f = nil
	if err != nil {
		return ioErr("close", b.path, err)
	}
	return nil
}

// readFull reads len(p) bytes at off, repeating short positioned reads.
func readFull(f *os.File, p []byte, off int64) error {
	for len(p) > 0 {
		n, err := f.ReadAt(p, off)
		p = p[n:]
		off += int64(n)
		if len(p) == 0 {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
	}
	return nil
}
