package raster

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 5},
		{"zero cols", 5, 0},
		{"negative rows", -1, 5},
		{"negative cols", 5, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols, 1, Uint8)
			if !errors.Is(err, imgerr.ErrInvalidDimensions) {
				t.Errorf("New(%d, %d): got %v, want InvalidDimensions", tt.rows, tt.cols, err)
			}
		})
	}
}

func TestNewWithStride(t *testing.T) {
	b, err := NewWithStride(2, 3, 2, Float32, 64)
	if err != nil {
		t.Fatalf("NewWithStride failed: %v", err)
	}
	if b.Stride() != 64 {
		t.Errorf("Stride: got %d, want 64", b.Stride())
	}

	if _, err := NewWithStride(2, 3, 2, Float32, 8); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("short stride: got %v, want InvalidArgument", err)
	}
	if _, err := New(2, 2, 1, ElemType(99)); !errors.Is(err, imgerr.ErrUnsupportedMode) {
		t.Errorf("bad type: got %v, want UnsupportedMode", err)
	}
}

func TestAtSet_BoundsChecked(t *testing.T) {
	b, _ := New(3, 4, 2, Int16)

	if err := b.Set(2, 3, 1, -7); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := b.At(2, 3, 1)
	if err != nil || v != -7 {
		t.Errorf("At: got %v, %v, want -7", v, err)
	}

	outside := [][3]int{{3, 0, 0}, {0, 4, 0}, {0, 0, 2}, {-1, 0, 0}}
	for _, p := range outside {
		if _, err := b.At(p[0], p[1], p[2]); !errors.Is(err, imgerr.ErrOutOfRange) {
			t.Errorf("At%v: got %v, want OutOfRange", p, err)
		}
		if err := b.Set(p[0], p[1], p[2], 1); !errors.Is(err, imgerr.ErrOutOfRange) {
			t.Errorf("Set%v: got %v, want OutOfRange", p, err)
		}
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		typ  ElemType
		in   float64
		want float64
	}{
		{Uint8, 300, 255},
		{Uint8, -4, 0},
		{Uint8, 2.5, 2},
		{Uint8, 3.5, 4},
		{Int8, -200, -128},
		{Uint16, 70000, 65535},
		{Int16, -40000.2, -32768},
		{Int32, 1.4, 1},
		{Float64, 1.25, 1.25},
	}

	for _, tt := range tests {
		if got := tt.typ.Saturate(tt.in); got != tt.want {
			t.Errorf("%v.Saturate(%v): got %v, want %v", tt.typ, tt.in, got, tt.want)
		}
	}
}

func TestValuesRoundTrip_WithPadding(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	b, err := NewWithStride(2, 3, 1, Float64, 40)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			if err := b.Set(r, c, 0, vals[r*3+c]); err != nil {
				t.Fatal(err)
			}
		}
	}
	if diff := cmp.Diff(vals, b.Values()); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}

	c := b.Clone()
	if c.Stride() != 24 {
		t.Errorf("Clone stride: got %d, want 24", c.Stride())
	}
	if !Equal(b, c, 0) {
		t.Error("Clone should equal original")
	}
}

func TestView_IsReadOnlyAndShared(t *testing.T) {
	b, _ := New(2, 2, 1, Uint8)
	v := b.View()

	if err := v.Set(0, 0, 0, 9); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("Set on view: got %v, want InvalidArgument", err)
	}

	_ = b.Set(1, 1, 0, 42)
	got, _ := v.At(1, 1, 0)
	if got != 42 {
		t.Errorf("view should observe owner writes: got %v", got)
	}
	if !v.ReadOnly() || b.ReadOnly() {
		t.Error("ReadOnly flags wrong")
	}
	if c := v.Clone(); c.ReadOnly() {
		t.Error("Clone of a view should be writable")
	}
}

func TestEqual(t *testing.T) {
	a, _ := FromValues(1, 3, 1, Float32, []float64{1, 2, 3})
	b, _ := FromValues(1, 3, 1, Float32, []float64{1, 2, 3.00001})
	c, _ := FromValues(1, 3, 1, Float64, []float64{1, 2, 3})

	if !Equal(a, b, 1e-4) {
		t.Error("buffers within epsilon should be equal")
	}
	if Equal(a, b, 1e-7) {
		t.Error("buffers outside epsilon should differ")
	}
	if Equal(a, c, 1) {
		t.Error("buffers of different types should differ")
	}

	i1, _ := FromValues(1, 2, 1, Uint8, []float64{1, 2})
	i2, _ := FromValues(1, 2, 1, Uint8, []float64{1, 3})
	if Equal(i1, i2, 10) {
		t.Error("integer buffers compare exactly")
	}
}

func TestFromValues_LengthMismatch(t *testing.T) {
	_, err := FromValues(2, 2, 1, Uint8, []float64{1, 2, 3})
	if !errors.Is(err, imgerr.ErrDimensionMismatch) {
		t.Errorf("got %v, want DimensionMismatch", err)
	}
}

func TestFromValues_ChecksBeforeAllocating(t *testing.T) {
	// Allocating this buffer would need 32 TiB.
	_, err := FromValues(1<<20, 1<<20, 4, Float64, []float64{1})
	if !errors.Is(err, imgerr.ErrDimensionMismatch) {
		t.Errorf("got %v, want DimensionMismatch", err)
	}

	_, err = FromValues(-1, 2, 1, Uint8, []float64{1, 2})
	if !errors.Is(err, imgerr.ErrInvalidDimensions) {
		t.Errorf("got %v, want InvalidDimensions", err)
	}
}

func TestParallelRows_CoversAllRows(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		const rows = 101
		var seen [rows]int32
		err := ParallelRows(rows, func(start, end int) error {
			for r := start; r < end; r++ {
				atomic.AddInt32(&seen[r], 1)
			}
			return nil
		}, WithWorkers(workers))
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for r, n := range seen {
			if n != 1 {
				t.Fatalf("workers=%d: row %d visited %d times", workers, r, n)
			}
		}
	}
}

func TestParallelRows_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := ParallelRows(200, func(start, end int) error {
		if start == 0 {
			return want
		}
		return nil
	}, WithWorkers(4))
	if !errors.Is(err, want) {
		t.Errorf("got %v, want %v", err, want)
	}
}

func TestImageConversion(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 3))
	gray.SetGray(2, 1, color.Gray{Y: 200})
	b := FromImage(gray)
	if b.Channels() != 1 || b.Type() != Uint8 || b.Rows() != 3 || b.Cols() != 4 {
		t.Fatalf("unexpected buffer %dx%dx%d %v", b.Rows(), b.Cols(), b.Channels(), b.Type())
	}
	if v, _ := b.At(1, 2, 0); v != 200 {
		t.Errorf("At(1,2): got %v, want 200", v)
	}

	img, err := ToImage(b)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.(*image.Gray).GrayAt(2, 1).Y; got != 200 {
		t.Errorf("round trip: got %d, want 200", got)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			rgba.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	if c := FromImage(rgba); c.Channels() != 3 {
		t.Errorf("opaque RGBA: got %d channels, want 3", c.Channels())
	}
}

func TestNormalize(t *testing.T) {
	b, _ := FromValues(1, 4, 1, Float32, []float64{0, 1, 2, Unreachable})
	n := Normalize(b)
	want := []float64{0, 128, 255, 255}
	if diff := cmp.Diff(want, n.Values()); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}
