package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

func TestEncodeBuffer(t *testing.T) {
	b, _ := raster.FromValues(2, 3, 1, raster.Uint8, []float64{0, 50, 100, 150, 200, 250})

	res, err := EncodeBuffer(b, "")
	if err != nil {
		t.Fatalf("EncodeBuffer failed: %v", err)
	}
	if res.Width != 3 || res.Height != 2 || res.Channels != 1 || res.ElemType != "uint8" {
		t.Errorf("metadata: got %+v", res)
	}
	if res.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", res.MimeType)
	}
	if res.Stats != nil {
		t.Error("integer buffers should not carry stats")
	}

	decoded, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if got := color.GrayModel.Convert(img.At(1, 1)).(color.Gray).Y; got != 200 {
		t.Errorf("pixel (1,1): got %d, want 200", got)
	}
}

func TestEncodeBuffer_FloatStatsAndSave(t *testing.T) {
	b, _ := raster.FromValues(1, 4, 1, raster.Float32, []float64{0, 1.5, 3, raster.Unreachable})
	out := filepath.Join(t.TempDir(), "dist.png")

	res, err := EncodeBuffer(b, out)
	if err != nil {
		t.Fatalf("EncodeBuffer failed: %v", err)
	}
	want := &Stats{Min: 0, Max: 3, Unreachable: 1}
	if diff := cmp.Diff(want, res.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if res.OutputPath != out {
		t.Errorf("OutputPath: got %q, want %q", res.OutputPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file not written: %v", err)
	}
}

func TestEncodeBuffer_TwoChannelFails(t *testing.T) {
	b, _ := raster.New(2, 2, 2, raster.Float32)
	if _, err := EncodeBuffer(b, ""); err == nil {
		t.Error("two-channel buffers have no image form")
	}
}

func TestSummarize_AllUnreachable(t *testing.T) {
	b, _ := raster.FromValues(1, 2, 1, raster.Float32, []float64{raster.Unreachable, raster.Unreachable})
	if diff := cmp.Diff(&Stats{Unreachable: 2}, Summarize(b)); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestBinarize(t *testing.T) {
	img := createSquareImage(8, 8, image.Rect(2, 2, 4, 4))
	mask := Binarize(img, 128)
	if mask.Channels() != 1 || mask.Type() != raster.Uint8 {
		t.Fatalf("mask: got %d channels of %v", mask.Channels(), mask.Type())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := 255.0
			if (image.Point{X: x, Y: y}).In(image.Rect(2, 2, 4, 4)) {
				want = 0
			}
			if got, _ := mask.At(y, x, 0); got != want {
				t.Errorf("(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGrayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	g := Grayscale(img)
	if g.Channels() != 1 || g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("got %dx%dx%d", g.Rows(), g.Cols(), g.Channels())
	}
	for _, v := range g.Values() {
		if v < 254 {
			t.Fatalf("white should stay white, got %v", v)
		}
	}
}
