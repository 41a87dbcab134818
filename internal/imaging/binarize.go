package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// Grayscale returns img as a single-channel Uint8 luminance buffer.
func Grayscale(img image.Image) *raster.Buffer {
	if _, ok := img.(*image.Gray); ok {
		return raster.FromImage(img)
	}
	return raster.FromImage(toGray(effect.Grayscale(img)))
}

// Binarize thresholds the luminance of img. Pixels darker than threshold
// become 0 and all others 255, so dark structures are the features a
// distance transform measures to.
func Binarize(img image.Image, threshold uint8) *raster.Buffer {
	return raster.FromImage(segment.Threshold(img, threshold))
}

// toGray copies one channel of an already gray RGBA image.
func toGray(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := out.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			out.Pix[di+x] = src.Pix[si+4*x]
		}
	}
	return out
}
