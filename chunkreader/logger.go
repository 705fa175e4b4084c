package chunkreader

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with reader-specific event helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

func orNoop(l *Logger) *Logger {
	if l == nil {
		return NoopLogger()
	}
	return l
}

// LogOpen logs the construction of a backend.
func (l *Logger) LogOpen(backend, path string, err error) {
	if err != nil {
		l.Error("open reader failed", "backend", backend, "path", path, "error", err)
		return
	}
	l.Debug("reader opened", "backend", backend, "path", path)
}

// LogMap logs a new mapped region.
func (l *Logger) LogMap(path string, floatIndex uint64, floats int) {
	l.Debug("region mapped", "path", path, "float_index", floatIndex, "floats", floats)
}

// LogUnmap logs a released region.
func (l *Logger) LogUnmap(path string, floatIndex uint64, floats int, err error) {
	if err != nil {
		l.Error("unmap failed", "path", path, "float_index", floatIndex, "floats", floats, "error", err)
		return
	}
	l.Debug("region unmapped", "path", path, "float_index", floatIndex, "floats", floats)
}

// LogWorkerReader logs the lazy creation of a worker's private backend.
func (l *Logger) LogWorkerReader(worker int, path string, err error) {
	if err != nil {
		l.Error("worker reader failed", "worker", worker, "path", path, "error", err)
		return
	}
	l.Debug("worker reader created", "worker", worker, "path", path)
}

// LogClose logs the release of a reader.
func (l *Logger) LogClose(backend, path string, err error) {
	if err != nil {
		l.Error("close reader failed", "backend", backend, "path", path, "error", err)
		return
	}
	l.Debug("reader closed", "backend", backend, "path", path)
}
