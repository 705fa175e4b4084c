// Package store provides the float storage file format and the read-only
// region mapping used by the mapping backends of package chunkreader.
//
// The file format consists of:
//   - Header (8 bytes): number of floats stored, native byte order
//   - Float data: packed IEEE-754 float32 values, native byte order, sequential by index
//
// A float index i lives at byte offset HeaderSize + i*FloatSize. Mapped regions
// never hold more than MaxRegionFloats floats.
package store
