package chunkreader

import (
	"io"
	"sync"
)

// subRead is one slice of a fanned-out Read.
type subRead struct {
	dst  []float32
	src  uint64
	done func(error)
}

// ConcurrentReader splits one Read into up to Threads slices of at least
// MinChunkSize floats. Threads-1 slices run on a fixed pool of worker
// goroutines; the calling goroutine reads the last slice itself.
//
// Every worker owns a private backend created by the factory on its first
// job. The calling side borrows a private backend from an idle list, so
// ConcurrentReader is safe for concurrent use while no backend is ever shared
// between goroutines.
type ConcurrentReader struct {
	path    string
	factory Factory
	threads int
	minSize int
	log     *Logger

	mu     sync.RWMutex // Read and Length hold it shared, Close exclusive
	closed bool

	jobs    chan *subRead
	wg      sync.WaitGroup
	workers []ChunkReader // workers[i] is only touched by worker goroutine i until Close

	idleMu  sync.Mutex
	idle    []ChunkReader
	callers []ChunkReader
}

// NewConcurrentReader creates the worker pool and one calling-side backend.
func NewConcurrentReader(path string, factory Factory, opts ConcurrentOptions) (*ConcurrentReader, error) {
	opts = opts.OrDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, &ConfigError{Field: "factory", Value: nil, Reason: "must not be nil"}
	}
	log := orNoop(opts.Logger)
	primary, err := factory(path)
	if err != nil {
		log.LogOpen("concurrent", path, err)
		return nil, err
	}
	c := &ConcurrentReader{
		path:    path,
		factory: factory,
		threads: opts.Threads,
		minSize: opts.MinChunkSize,
		log:     log,
		jobs:    make(chan *subRead, opts.Threads-1),
		workers: make([]ChunkReader, opts.Threads-1),
		idle:    []ChunkReader{primary},
		callers: []ChunkReader{primary},
	}
	for i := range c.workers {
		c.wg.Add(1)
		go c.worker(i)
	}
	log.LogOpen("concurrent", path, nil)
	return c, nil
}

func (c *ConcurrentReader) worker(id int) {
	defer c.wg.Done()
	for job := range c.jobs {
		job.done(c.runJob(id, job))
	}
}

func (c *ConcurrentReader) runJob(id int, job *subRead) error {
	r := c.workers[id]
	if r == nil {
		var err error
		r, err = c.factory(c.path)
		c.log.LogWorkerReader(id, c.path, err)
		if err != nil {
			return err
		}
		c.workers[id] = r
	}
	return c.readSlice(r, job.dst, job.src)
}

// readSlice reads exactly len(out) floats with r.
func (c *ConcurrentReader) readSlice(r ChunkReader, out []float32, src uint64) error {
	n, err := r.Read(out, src, 0, uint32(len(out)))
	if err != nil {
		return err
	}
	if n != len(out) {
		return &IOError{Op: "read", Path: c.path, Err: io.ErrUnexpectedEOF}
	}
	return nil
}

func (c *ConcurrentReader) acquire() (ChunkReader, error) {
	c.idleMu.Lock()
	if n := len(c.idle); n > 0 {
		r := c.idle[n-1]
		c.idle = c.idle[:n-1]
		c.idleMu.Unlock()
		return r, nil
	}
	c.idleMu.Unlock()
	r, err := c.factory(c.path)
	if err != nil {
		return nil, err
	}
	c.idleMu.Lock()
	c.callers = append(c.callers, r)
	c.idleMu.Unlock()
	return r, nil
}

func (c *ConcurrentReader) release(r ChunkReader) {
	c.idleMu.Lock()
	c.idle = append(c.idle, r)
	c.idleMu.Unlock()
}

// Length delegates to a calling-side backend.
func (c *ConcurrentReader) Length() (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, ErrClosed
	}
	r, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.release(r)
	return r.Length()
}

// Read fans the clamped range out over the pool and waits for every slice.
// The first slice failure is returned once all slices have finished.
func (c *ConcurrentReader) Read(dst []float32, srcIndex uint64, dstIndex, length uint32) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, ErrClosed
	}
	if err := checkDestination(dst, dstIndex, length); err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	inline, err := c.acquire()
	if err != nil {
		return 0, err
	}
	defer c.release(inline)
	readable, err := inline.Length()
	if err != nil {
		return 0, err
	}
	n := clampLength(readable, srcIndex, length)
	if n == 0 {
		return 0, nil
	}

	chunkSize := ceilDiv(n, min(c.threads, ceilDiv(n, c.minSize)))
	chunks := ceilDiv(n, chunkSize)
	out := dst[dstIndex : int(dstIndex)+n]

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}
	wg.Add(chunks - 1)
	for i := 0; i < chunks-1; i++ {
		lo := i * chunkSize
		c.jobs <- &subRead{
			dst: out[lo : lo+chunkSize],
			src: srcIndex + uint64(lo),
			done: func(err error) {
				record(err)
				wg.Done()
			},
		}
	}
	lo := (chunks - 1) * chunkSize
	record(c.readSlice(inline, out[lo:], srcIndex+uint64(lo)))
	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}
	return n, nil
}

// Close waits for in-flight reads, stops the pool and closes every backend.
// The first close error is returned after all backends were closed.
func (c *ConcurrentReader) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.jobs)
	c.wg.Wait()

	var firstErr error
	for i, r := range c.workers {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.workers[i] = nil
	}
	c.idleMu.Lock()
	for _, r := range c.callers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.callers, c.idle = nil, nil
	c.idleMu.Unlock()
	c.log.LogClose("concurrent", c.path, firstErr)
	return firstErr
}
