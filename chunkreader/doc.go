// Package chunkreader provides random-access readers of float32 chunks from
// very large storage files (see package store for the layout).
//
// Quick start:
//
//	r, err := chunkreader.Open("floats.dat", &chunkreader.Config{
//		Backend: chunkreader.BackendCached,
//		Threads: 4,
//	})
//	if err != nil { ... }
//	defer r.Close()
//	dst := make([]float32, 1_000_000)
//	n, err := chunkreader.ReadInto(r, dst, 3_000_000_000)
//
// Backends: StagingReader (positioned reads through a staging buffer),
// MappedReader (maps every request), CachedMappedReader (keeps mapped chunks)
// and ConcurrentReader (fans one read out over a worker pool of any backend).
// All of them return identical floats for the same file and index.
package chunkreader
