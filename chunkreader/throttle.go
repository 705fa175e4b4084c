package chunkreader

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

// maxThrottleBurst caps the limiter burst so large reads wait in steps.
const maxThrottleBurst = 4 << 20

// ThrottledReader limits the byte throughput of another reader.
// It is as safe for concurrent use as the reader it wraps.
type ThrottledReader struct {
	inner   ChunkReader
	limiter *rate.Limiter
}

// NewThrottledReader wraps inner with a bytesPerSec limit.
func NewThrottledReader(inner ChunkReader, bytesPerSec int64) *ThrottledReader {
	burst := int(min(bytesPerSec, maxThrottleBurst))
	return &ThrottledReader{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// Length delegates to the wrapped reader.
func (t *ThrottledReader) Length() (uint64, error) {
	return t.inner.Length()
}

// Read waits for length*4 bytes of budget, then delegates.
func (t *ThrottledReader) Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	if err := checkDestination(dst, dstIndex, length); err != nil {
		return 0, err
	}
	burst := t.limiter.Burst()
	for remaining := int64(length) * store.FloatSize; remaining > 0; {
		step := int(min(remaining, int64(burst)))
		if err := t.limiter.WaitN(context.Background(), step); err != nil {
			return 0, err
		}
		remaining -= int64(step)
	}
	return t.inner.Read(dst, srcIndex, dstIndex, length)
}

// Close closes the wrapped reader.
func (t *ThrottledReader) Close() error {
	return t.inner.Close()
}
