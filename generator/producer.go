package generator

import "math"

// Producer returns the float stored at an absolute float index.
type Producer func(index uint64) float32

// ProducerFactory returns the Producer for one writer chunk. Producers of
// different chunks may run concurrently.
type ProducerFactory func(chunk int) Producer

// Shared returns a factory handing p to every chunk. p must be safe for
// concurrent use.
func Shared(p Producer) ProducerFactory {
	return func(int) Producer { return p }
}

// Linear produces index/(count-1), a ramp from 0 to 1 (0 when count is 1).
func Linear(count uint64) Producer {
	return func(index uint64) float32 {
		if count == 1 {
			return 0
		}
		return float32(index) / float32(count-1)
	}
}

// Hashed produces deterministic pseudo-random values in [0, 1) derived from
// seed and index, so any index can be recomputed without replaying a stream.
func Hashed(seed int64) Producer {
	return func(index uint64) float32 {
		x := uint64(seed) ^ (index * 0x9e3779b97f4a7c15)
		x ^= x >> 30
		x *= 0xbf58476d1ce4e5b9
		x ^= x >> 27
		x *= 0x94d049bb133111eb
		x ^= x >> 31
		return float32(x>>40) / float32(1<<24)
	}
}

// Equal reports whether two floats have the same bits. NaN equals NaN.
func Equal(a, b float32) bool {
	return math.Float32bits(a) == math.Float32bits(b)
}
