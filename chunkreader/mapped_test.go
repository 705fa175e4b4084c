package chunkreader

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordHandler collects log messages.
type recordHandler struct {
	mu       sync.Mutex
	messages []string
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.messages = append(h.messages, r.Message)
	h.mu.Unlock()
	return nil
}
func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordHandler) count(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.messages {
		if m == msg {
			n++
		}
	}
	return n
}

func TestMappedReader_SplitsRegions(t *testing.T) {
	path, p := generateFile(t, 5000)
	h := &recordHandler{}
	r, err := NewMappedReader(path, MappedOptions{RegionFloats: testStride, Logger: NewLogger(h)})
	require.NoError(t, err)

	dst := make([]float32, 2500)
	n, err := ReadInto(r, dst, 700)
	require.NoError(t, err)
	require.Equal(t, 2500, n)
	checkFloats(t, p, 700, dst, 0, 2500)

	assert.Equal(t, 3, h.count("region mapped"))
	assert.Equal(t, 3, h.count("region unmapped"))

	require.NoError(t, r.Close())
	assert.Equal(t, 1, h.count("reader opened"))
	assert.Equal(t, 1, h.count("reader closed"))
}

func TestCachedMappedReader_LogsChunkLifetime(t *testing.T) {
	path, _ := generateFile(t, 5000)
	h := &recordHandler{}
	r, err := NewCachedMappedReader(path, CachedOptions{RegionFloats: testStride, Logger: NewLogger(h)})
	require.NoError(t, err)

	dst := make([]float32, 1500)
	for i := 0; i < 3; i++ {
		_, err = ReadInto(r, dst, 100)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, h.count("region mapped"))
	assert.Zero(t, h.count("region unmapped"))

	require.NoError(t, r.Close())
	assert.Equal(t, 2, h.count("region unmapped"))
}
