package chunkreader

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any call on a closed reader.
	ErrClosed = errors.New("chunkreader: reader is closed")
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("chunkreader: invalid configuration")
	// ErrAddressing is matched by every *AddressingError.
	ErrAddressing = errors.New("chunkreader: index out of supported range")
	// ErrDestinationBounds is returned when dstIndex+length exceeds len(dst).
	ErrDestinationBounds = errors.New("chunkreader: destination range exceeds buffer")
)

// ConfigError reports an invalid construction parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("chunkreader: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// IOError wraps a failed file, map or unmap operation.
//
// The underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("chunkreader: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// AddressingError reports a float index whose chunk lies beyond a backend's
// fixed chunk capacity.
type AddressingError struct {
	FloatIndex uint64
	ChunkIndex uint64
	Limit      int
}

func (e *AddressingError) Error() string {
	return fmt.Sprintf("chunkreader: chunk %d for float index %d overflows max chunks count %d",
		e.ChunkIndex, e.FloatIndex, e.Limit)
}

func (e *AddressingError) Is(target error) bool { return target == ErrAddressing }

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IOError
	if errors.As(err, &ie) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
