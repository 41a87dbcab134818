package imaging

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// BufferStore keeps buffers produced by one request so later requests can
// refer to them by handle. Stored buffers are read-only views; a buffer is
// never handed out mutable once stored.
//
// BufferStore is safe for concurrent use.
type BufferStore struct {
	mu      sync.RWMutex
	buffers map[string]*raster.Buffer
}

// NewBufferStore creates an empty store.
func NewBufferStore() *BufferStore {
	return &BufferStore{
		buffers: make(map[string]*raster.Buffer),
	}
}

// Put stores b and returns its new handle. A nil buffer yields "".
func (s *BufferStore) Put(b *raster.Buffer) string {
	if b == nil {
		return ""
	}
	handle := "buf-" + uuid.NewString()
	s.mu.Lock()
	s.buffers[handle] = b.View()
	s.mu.Unlock()
	return handle
}

// Get returns the buffer stored under handle. An empty handle yields nil
// without error; an unknown handle yields InvalidArgument.
func (s *BufferStore) Get(handle string) (*raster.Buffer, error) {
	if handle == "" {
		return nil, nil
	}
	s.mu.RLock()
	b, ok := s.buffers[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, imgerr.New(imgerr.InvalidArgument, "imaging.BufferStore", "unknown buffer handle %q", handle)
	}
	return b, nil
}

// Release drops the given handles and reports how many were present.
func (s *BufferStore) Release(handles ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range handles {
		if _, ok := s.buffers[h]; ok {
			delete(s.buffers, h)
			n++
		}
	}
	return n
}

// Clear drops every stored buffer and reports how many there were.
func (s *BufferStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.buffers)
	s.buffers = make(map[string]*raster.Buffer)
	return n
}

// Handles returns the live handles in sorted order.
func (s *BufferStore) Handles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.buffers))
	for h := range s.buffers {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
