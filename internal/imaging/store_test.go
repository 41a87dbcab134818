package imaging

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

func TestBufferStore(t *testing.T) {
	store := NewBufferStore()
	b, _ := raster.FromValues(2, 2, 1, raster.Float32, []float64{1, 2, 3, 4})

	h := store.Put(b)
	if !strings.HasPrefix(h, "buf-") {
		t.Fatalf("unexpected handle %q", h)
	}
	if store.Put(nil) != "" {
		t.Error("Put(nil) should return an empty handle")
	}

	got, err := store.Get(h)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !raster.Equal(got, b, 0) {
		t.Error("stored buffer differs from the original")
	}
	if !got.ReadOnly() {
		t.Error("stored buffer should be read-only")
	}

	if got, err := store.Get(""); got != nil || err != nil {
		t.Errorf("Get(\"\"): got %v, %v", got, err)
	}
	if _, err := store.Get("buf-missing"); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("Get(unknown): got %v, want InvalidArgument", err)
	}

	if n := store.Release(h, h, "buf-missing"); n != 1 {
		t.Errorf("Release: got %d, want 1", n)
	}
	if _, err := store.Get(h); err == nil {
		t.Error("released handle should be gone")
	}
}

func TestBufferStore_ConcurrentPut(t *testing.T) {
	store := NewBufferStore()
	b, _ := raster.New(1, 1, 1, raster.Uint8)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Put(b)
		}()
	}
	wg.Wait()

	handles := store.Handles()
	if len(handles) != 64 {
		t.Fatalf("got %d handles, want 64", len(handles))
	}
	if n := store.Clear(); n != 64 {
		t.Errorf("Clear: got %d, want 64", n)
	}
	if len(store.Handles()) != 0 {
		t.Error("store should be empty after Clear")
	}
}
