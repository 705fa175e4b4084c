package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

const (
	// minThreadChunk is the minimum floats per writer.
	minThreadChunk = 1000
	// stagingFloats is the per-writer staging size (1 MiB).
	stagingFloats = (1 << 20) / store.FloatSize
)

// ErrInvalidThreads is returned when Options.MaxThreads is not positive.
var ErrInvalidThreads = errors.New("generator: max threads must be > 0")

// Options controls Generate.
type Options struct {
	// Append extends an existing file starting at its header count. A missing
	// file, or one holding no float, is created from index 0.
	Append bool
	// MaxThreads is the number of parallel writers, each writing at least
	// 1000 floats. Producers must be safe for concurrent use when > 1.
	MaxThreads int
	Logger     *slog.Logger
}

// GenerateSingle writes count floats from p with one writer.
func GenerateSingle(ctx context.Context, path string, count uint64, p Producer, appendMode bool) error {
	return Generate(ctx, path, count, Shared(p), Options{Append: appendMode, MaxThreads: 1})
}

// Generate writes count floats to path. Values come from the producer of the
// writer chunk holding each index; indices start at the current count when
// appending. count == 0 leaves the file untouched.
func Generate(ctx context.Context, path string, count uint64, factory ProducerFactory, opts Options) error {
	if count == 0 {
		return nil
	}
	if opts.MaxThreads <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreads, opts.MaxThreads)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start, err := allocate(path, count, opts.Append)
	if err != nil {
		return err
	}

	chunkSize := max(minThreadChunk, ceilDiv(count, uint64(opts.MaxThreads)))
	chunks := int(ceilDiv(count, chunkSize))
	log.Debug("generating floats", "path", path, "start", start, "count", count, "writers", chunks)
	if chunks > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < chunks; i++ {
			producer := factory(i)
			from := start + uint64(i)*chunkSize
			n := min(chunkSize, count-uint64(i)*chunkSize)
			g.Go(func() error {
				return writeChunk(gctx, path, producer, from, n)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else if err := writeChunk(ctx, path, factory(0), start, count); err != nil {
		return err
	}

	if err := commit(path, start+count); err != nil {
		return err
	}
	log.Info("floats generated", "path", path, "count", start+count)
	return nil
}

// allocate reserves space for count more floats and returns the first index
// to write.
func allocate(path string, count uint64, appendMode bool) (uint64, error) {
	var start uint64
	var f *os.File
	var err error
	if fi, serr := os.Stat(path); appendMode && serr == nil && fi.Size() > store.HeaderSize {
		f, err = os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return 0, err
		}
		h, err := store.ReadHeader(f)
		if err != nil {
			f.Close()
			return 0, err
		}
		start = h.Count
	} else {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return 0, err
		}
	}
	defer f.Close()
	end := store.ByteOffset(start + count)
	if err := f.Truncate(end); err != nil {
		return 0, err
	}
	return start, nil
}

// writeChunk writes count floats starting at index from with its own handle,
// staging them in native byte order.
func writeChunk(ctx context.Context, path string, p Producer, from, count uint64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	staging := make([]float32, stagingFloats)
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&staging[0])), len(staging)*store.FloatSize)
	off := store.ByteOffset(from)
	for index, remaining := from, count; remaining > 0; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := int(min(remaining, uint64(len(staging))))
		for i := 0; i < n; i++ {
			staging[i] = p(index + uint64(i))
		}
		if _, err := f.WriteAt(raw[:n*store.FloatSize], off); err != nil {
			return err
		}
		off += int64(n * store.FloatSize)
		index += uint64(n)
		remaining -= uint64(n)
	}
	return f.Sync()
}

// commit writes the cumulative count once the data is durable.
func commit(path string, total uint64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := store.WriteHeader(f, &store.Header{Count: total}); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}
