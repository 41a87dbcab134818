package imaging

import (
	"image"
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// EdgeMask runs Canny edge detection on img and returns a single-channel
// Uint8 buffer in which edge pixels are 0 and everything else is 255. Feeding
// the mask to a distance transform yields the distance to the nearest edge.
//
// Thresholds are gradient magnitudes on the 0-255 luminance scale. Pixels
// above high are strong edges; pixels between low and high are kept only
// when one of their 8 neighbors is strong.
//
// # Algorithm
//
//  1. Luminance via bild (ITU-R BT.601 weights).
//  2. 5x5 Gaussian blur, sigma ≈ 1.4, replicated borders.
//  3. Sobel gradients; magnitude and direction.
//  4. Non-maximum suppression along the direction quantized to 45°.
//  5. Double threshold with single-step hysteresis.
//
// Steps 2 to 4 run over row bands in parallel.
func EdgeMask(img image.Image, low, high int, opts ...raster.ExecOption) (*raster.Buffer, error) {
	const op = "imaging.EdgeMask"
	if low < 0 || high < low {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "thresholds must satisfy 0 <= low <= high, got %d, %d", low, high)
	}
	gray := Grayscale(img)
	if gray == nil {
		return nil, imgerr.New(imgerr.InvalidDimensions, op, "image is empty")
	}
	rows, cols := gray.Rows(), gray.Cols()
	lum := gray.Values()

	blurred := make([]float64, rows*cols)
	if err := raster.ParallelRows(rows, func(start, end int) error {
		gaussianBlur(lum, blurred, rows, cols, start, end)
		return nil
	}, opts...); err != nil {
		return nil, imgerr.Wrap(imgerr.Unknown, op, err)
	}

	magnitude := make([]float64, rows*cols)
	direction := make([]float64, rows*cols)
	if err := raster.ParallelRows(rows, func(start, end int) error {
		sobel(blurred, magnitude, direction, rows, cols, start, end)
		return nil
	}, opts...); err != nil {
		return nil, imgerr.Wrap(imgerr.Unknown, op, err)
	}

	suppressed := make([]float64, rows*cols)
	if err := raster.ParallelRows(rows, func(start, end int) error {
		suppress(magnitude, direction, suppressed, rows, cols, start, end)
		return nil
	}, opts...); err != nil {
		return nil, imgerr.Wrap(imgerr.Unknown, op, err)
	}

	lo, hi := float64(low), float64(high)
	mask := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mask[y*cols+x] = 255
			v := suppressed[y*cols+x]
			switch {
			case v >= hi:
				mask[y*cols+x] = 0
			case v >= lo && strongNeighbor(suppressed, rows, cols, y, x, hi):
				mask[y*cols+x] = 0
			}
		}
	}
	return raster.FromValues(rows, cols, 1, raster.Uint8, mask)
}

var gaussKernel = [5][5]float64{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

const gaussKernelSum = 273.0

func gaussianBlur(src, dst []float64, rows, cols, start, end int) {
	for y := start; y < end; y++ {
		for x := 0; x < cols; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				py := clamp(y+ky, 0, rows-1)
				for kx := -2; kx <= 2; kx++ {
					px := clamp(x+kx, 0, cols-1)
					sum += src[py*cols+px] * gaussKernel[ky+2][kx+2]
				}
			}
			dst[y*cols+x] = sum / gaussKernelSum
		}
	}
}

var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

func sobel(src, mag, dir []float64, rows, cols, start, end int) {
	for y := start; y < end; y++ {
		for x := 0; x < cols; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				py := clamp(y+ky, 0, rows-1)
				for kx := -1; kx <= 1; kx++ {
					v := src[py*cols+clamp(x+kx, 0, cols-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			mag[y*cols+x] = math.Hypot(gx, gy)
			dir[y*cols+x] = math.Atan2(gy, gx)
		}
	}
}

// suppress keeps local maxima along the gradient direction. y grows
// downward, so an angle near π/4 points toward (x+1, y+1). The outermost ring
// of pixels is never an edge.
func suppress(mag, dir, dst []float64, rows, cols, start, end int) {
	at := func(y, x int) float64 { return mag[y*cols+x] }
	for y := start; y < end; y++ {
		if y == 0 || y == rows-1 {
			continue
		}
		for x := 1; x < cols-1; x++ {
			angle := dir[y*cols+x]
			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = at(y, x-1), at(y, x+1)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = at(y-1, x-1), at(y+1, x+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = at(y-1, x), at(y+1, x)
			default:
				n1, n2 = at(y-1, x+1), at(y+1, x-1)
			}
			if m := at(y, x); m >= n1 && m >= n2 {
				dst[y*cols+x] = m
			}
		}
	}
}

func strongNeighbor(s []float64, rows, cols, y, x int, hi float64) bool {
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			if s[clamp(y+ky, 0, rows-1)*cols+clamp(x+kx, 0, cols-1)] >= hi {
				return true
			}
		}
	}
	return false
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
