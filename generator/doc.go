// Package generator writes storage files for package chunkreader from a
// value-producing callback, optionally with several writers in parallel.
//
// The header count is updated only after all floats are written and synced,
// so readers never observe unwritten floats.
package generator
