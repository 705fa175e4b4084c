package chunkreader

import (
	"runtime"

	"github.com/ic-timon/floatchunk/chunkreader/store"
)

const (
	// DefaultStagingCapacity is the default staging buffer size in floats (4 MiB).
	DefaultStagingCapacity = 1 << 20
	// DefaultMaxChunks bounds the cached backend to 100 chunks (about 200 GiB).
	DefaultMaxChunks = 100
	// DefaultMinChunkSize is the default minimum floats per fan-out slice.
	DefaultMinChunkSize = 1000
)

// StagingOptions configures a StagingReader.
type StagingOptions struct {
	Capacity int  // staging buffer size in floats, default DefaultStagingCapacity
	Offheap  bool // page-aligned anonymous mapping instead of Go heap
	Logger   *Logger
}

// OrDefault fills zero fields with defaults.
func (o StagingOptions) OrDefault() StagingOptions {
	if o.Capacity == 0 {
		o.Capacity = DefaultStagingCapacity
	}
	return o
}

// Validate reports invalid explicit values.
func (o StagingOptions) Validate() error {
	if o.Capacity <= 0 || o.Capacity > store.MaxRegionFloats {
		return &ConfigError{Field: "Capacity", Value: o.Capacity, Reason: "must be in [1, MaxRegionFloats]"}
	}
	return nil
}

// MappedOptions configures a MappedReader.
type MappedOptions struct {
	RegionFloats int          // region stride, default store.MaxRegionFloats
	Advice       store.Advice // default store.AdviceSequential
	Logger       *Logger
}

// OrDefault fills zero fields with defaults.
func (o MappedOptions) OrDefault() MappedOptions {
	if o.RegionFloats == 0 {
		o.RegionFloats = store.MaxRegionFloats
	}
	if o.Advice == store.AdviceDefault {
		o.Advice = store.AdviceSequential
	}
	return o
}

// Validate reports invalid explicit values.
func (o MappedOptions) Validate() error {
	return validateStride(o.RegionFloats)
}

// CachedOptions configures a CachedMappedReader.
type CachedOptions struct {
	RegionFloats int          // chunk stride, default store.MaxRegionFloats
	MaxChunks    int          // cache capacity, default DefaultMaxChunks
	Advice       store.Advice // default store.AdviceRandom
	Logger       *Logger
}

// OrDefault fills zero fields with defaults.
func (o CachedOptions) OrDefault() CachedOptions {
	if o.RegionFloats == 0 {
		o.RegionFloats = store.MaxRegionFloats
	}
	if o.MaxChunks == 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	if o.Advice == store.AdviceDefault {
		o.Advice = store.AdviceRandom
	}
	return o
}

// Validate reports invalid explicit values.
func (o CachedOptions) Validate() error {
	if err := validateStride(o.RegionFloats); err != nil {
		return err
	}
	if o.MaxChunks <= 0 {
		return &ConfigError{Field: "MaxChunks", Value: o.MaxChunks, Reason: "must be > 0"}
	}
	return nil
}

func validateStride(stride int) error {
	if stride <= 0 || stride > store.MaxRegionFloats {
		return &ConfigError{Field: "RegionFloats", Value: stride, Reason: "must be in [1, MaxRegionFloats]"}
	}
	return nil
}

// ConcurrentOptions configures a ConcurrentReader.
type ConcurrentOptions struct {
	Threads      int // > 1, default runtime.NumCPU() (at least 2)
	MinChunkSize int // minimum floats per slice, default DefaultMinChunkSize
	Logger       *Logger
}

// OrDefault fills zero fields with defaults.
func (o ConcurrentOptions) OrDefault() ConcurrentOptions {
	if o.Threads == 0 {
		o.Threads = max(2, runtime.NumCPU())
	}
	if o.MinChunkSize == 0 {
		o.MinChunkSize = DefaultMinChunkSize
	}
	return o
}

// Validate reports invalid explicit values.
func (o ConcurrentOptions) Validate() error {
	if o.Threads <= 1 {
		return &ConfigError{Field: "Threads", Value: o.Threads, Reason: "must be > 1"}
	}
	if o.MinChunkSize <= 0 {
		return &ConfigError{Field: "MinChunkSize", Value: o.MinChunkSize, Reason: "must be > 0"}
	}
	return nil
}

// StagingFactory returns a Factory of StagingReaders.
func StagingFactory(opts StagingOptions) Factory {
	return func(path string) (ChunkReader, error) {
		return NewStagingReader(path, opts)
	}
}

// MappedFactory returns a Factory of MappedReaders.
func MappedFactory(opts MappedOptions) Factory {
	return func(path string) (ChunkReader, error) {
		return NewMappedReader(path, opts)
	}
}

// CachedFactory returns a Factory of CachedMappedReaders.
func CachedFactory(opts CachedOptions) Factory {
	return func(path string) (ChunkReader, error) {
		return NewCachedMappedReader(path, opts)
	}
}

// Backend names a single-file reader implementation.
type Backend string

const (
	BackendStaging Backend = "staging"
	BackendMapped  Backend = "mapped"
	BackendCached  Backend = "cached"
)

// Config describes a complete reader stack for Open.
type Config struct {
	Backend            Backend // default BackendCached
	StagingCapacity    int     // staging backend buffer, in floats
	StagingOffheap     bool    // staging backend off-heap buffer
	RegionFloats       int     // mapping backends region stride
	MaxChunks          int     // cached backend capacity
	Advice             store.Advice
	Threads            int   // > 1 wraps the backend in a ConcurrentReader
	MinChunkSize       int   // fan-out minimum slice
	IOLimitBytesPerSec int64 // > 0 wraps the stack in a ThrottledReader
	Logger             *Logger
}

// DefaultConfig returns the default configuration: one cached mapping backend.
func DefaultConfig() *Config {
	return &Config{
		Backend:         BackendCached,
		StagingCapacity: DefaultStagingCapacity,
		MaxChunks:       DefaultMaxChunks,
		MinChunkSize:    DefaultMinChunkSize,
	}
}

// OrDefault returns DefaultConfig if c is nil, otherwise normalizes c.
func (c *Config) OrDefault() *Config {
	if c == nil {
		return DefaultConfig()
	}
	if c.Backend == "" {
		c.Backend = BackendCached
	}
	if c.StagingCapacity == 0 {
		c.StagingCapacity = DefaultStagingCapacity
	}
	if c.MaxChunks == 0 {
		c.MaxChunks = DefaultMaxChunks
	}
	if c.MinChunkSize == 0 {
		c.MinChunkSize = DefaultMinChunkSize
	}
	return c
}

// Factory returns the backend factory described by c.
func (c *Config) Factory() (Factory, error) {
	c = c.OrDefault()
	switch c.Backend {
	case BackendStaging:
		return StagingFactory(StagingOptions{Capacity: c.StagingCapacity, Offheap: c.StagingOffheap, Logger: c.Logger}), nil
	case BackendMapped:
		return MappedFactory(MappedOptions{RegionFloats: c.RegionFloats, Advice: c.Advice, Logger: c.Logger}), nil
	case BackendCached:
		return CachedFactory(CachedOptions{RegionFloats: c.RegionFloats, MaxChunks: c.MaxChunks, Advice: c.Advice, Logger: c.Logger}), nil
	default:
		return nil, &ConfigError{Field: "Backend", Value: c.Backend, Reason: "unknown backend"}
	}
}

// Open builds the reader stack described by cfg for path. cfg may be nil to
// use DefaultConfig().
func Open(path string, cfg *Config) (ChunkReader, error) {
	cfg = cfg.OrDefault()
	if cfg.Threads < 0 {
		return nil, &ConfigError{Field: "Threads", Value: cfg.Threads, Reason: "must not be negative"}
	}
	factory, err := cfg.Factory()
	if err != nil {
		return nil, err
	}
	var r ChunkReader
	if cfg.Threads > 1 {
		r, err = NewConcurrentReader(path, factory, ConcurrentOptions{
			Threads:      cfg.Threads,
			MinChunkSize: cfg.MinChunkSize,
			Logger:       cfg.Logger,
		})
	} else {
		r, err = factory(path)
	}
	if err != nil {
		return nil, err
	}
	if cfg.IOLimitBytesPerSec > 0 {
		r = NewThrottledReader(r, cfg.IOLimitBytesPerSec)
	}
	return r, nil
}
