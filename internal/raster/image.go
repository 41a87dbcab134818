package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

// FromImage copies img into a new buffer.
//
// Gray and Gray16 images become single-channel Uint8 and Uint16 buffers.
// Opaque color images become 3-channel (RGB) Uint8 buffers, all others
// 4-channel non-premultiplied RGBA.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	if rows == 0 || cols == 0 {
		return nil
	}

	switch src := img.(type) {
	case *image.Gray:
		b, _ := New(rows, cols, 1, Uint8)
		for y := 0; y < rows; y++ {
			i := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.data[y*b.stride:], src.Pix[i:i+cols])
		}
		return b
	case *image.Gray16:
		b, _ := New(rows, cols, 1, Uint16)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				b.store(b.offset(y, x, 0), float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
		return b
	}

	channels := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}
	b, _ := New(rows, cols, channels, Uint8)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := b.offset(y, x, 0)
			b.data[off] = c.R
			b.data[off+1] = c.G
			b.data[off+2] = c.B
			if channels == 4 {
				b.data[off+3] = c.A
			}
		}
	}
	return b
}

// ToImage converts b into an image.Image.
//
// Single-channel Uint8 and Uint16 buffers map to Gray and Gray16. Floating
// point buffers are first min-max normalized to 8 bits. Three- and
// four-channel buffers map to NRGBA. Two-channel buffers have no image
// representation and yield InvalidArgument.
func ToImage(b *Buffer) (image.Image, error) {
	const op = "raster.ToImage"
	if b == nil {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "nil buffer")
	}
	if b.channels == 2 || b.channels > 4 {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "cannot render %d-channel buffer", b.channels)
	}
	if b.typ.IsFloat() {
		b = Normalize(b)
	}
	rect := image.Rect(0, 0, b.cols, b.rows)

	if b.channels == 1 {
		if b.typ == Uint16 {
			img := image.NewGray16(rect)
			for y := 0; y < b.rows; y++ {
				for x := 0; x < b.cols; x++ {
					img.SetGray16(x, y, color.Gray16{Y: uint16(b.load(b.offset(y, x, 0)))})
				}
			}
			return img, nil
		}
		img := image.NewGray(rect)
		for y := 0; y < b.rows; y++ {
			for x := 0; x < b.cols; x++ {
				img.Pix[img.PixOffset(x, y)] = uint8(Uint8.Saturate(b.load(b.offset(y, x, 0))))
			}
		}
		return img, nil
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < b.rows; y++ {
		for x := 0; x < b.cols; x++ {
			i := img.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				img.Pix[i+ch] = uint8(Uint8.Saturate(b.load(b.offset(y, x, ch))))
			}
			img.Pix[i+3] = 255
			if b.channels == 4 {
				img.Pix[i+3] = uint8(Uint8.Saturate(b.load(b.offset(y, x, 3))))
			}
		}
	}
	return img, nil
}

// Normalize returns a Uint8 copy of b linearly rescaled so that the smallest
// finite element maps to 0 and the largest to 255. Elements at or above
// Unreachable map to 255. A constant buffer maps to all zeros.
func Normalize(b *Buffer) *Buffer {
	vals := b.Values()
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v >= Unreachable || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}
	for i, v := range vals {
		switch {
		case v >= Unreachable:
			vals[i] = 255
		case math.IsNaN(v) || math.IsInf(v, 0):
			vals[i] = 0
		default:
			vals[i] = (v - lo) * scale
		}
	}
	out, _ := FromValues(b.rows, b.cols, b.channels, Uint8, vals)
	return out
}

// Unreachable is the distance assigned to pixels with no background pixel
// anywhere in the buffer. It is the largest finite float32.
const Unreachable = math.MaxFloat32
