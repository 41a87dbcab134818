package morphology

import (
	"image"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// Shape is the geometry of a structuring element.
type Shape int

const (
	// Rect is a filled rectangle.
	Rect Shape = iota
	// Cross is the anchor row plus the anchor column.
	Cross
	// Ellipse is the filled ellipse inscribed in the element's bounding box.
	Ellipse
)

func (s Shape) String() string {
	switch s {
	case Rect:
		return "rect"
	case Cross:
		return "cross"
	case Ellipse:
		return "ellipse"
	}
	return "invalid"
}

// ParseShape maps "rect", "cross" or "ellipse" to a Shape.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "rect", "RECT", "MORPH_RECT":
		return Rect, nil
	case "cross", "CROSS", "MORPH_CROSS":
		return Cross, nil
	case "ellipse", "ELLIPSE", "MORPH_ELLIPSE":
		return Ellipse, nil
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "morphology", "unknown structuring element shape %q", name)
}

// DefaultAnchor asks GetStructuringElement to place the anchor at the centre,
// (cols/2, rows/2).
var DefaultAnchor = image.Point{X: -1, Y: -1}

// StructuringElement is a binary mask together with its anchor. Anchor.X is a
// column and Anchor.Y a row.
type StructuringElement struct {
	// Mask is a read-only single-channel Uint8 buffer of 0s and 1s.
	Mask   *raster.Buffer
	Anchor image.Point
}

// Rows returns the mask as a row-major grid, for serialization.
func (e StructuringElement) Rows() [][]int {
	vals := e.Mask.Values()
	cols := e.Mask.Cols()
	grid := make([][]int, e.Mask.Rows())
	for r := range grid {
		grid[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = int(vals[r*cols+c])
		}
	}
	return grid
}

// GetStructuringElement builds a rows x cols element of the given shape. Pass
// DefaultAnchor to centre the anchor; a single coordinate of -1 centres just
// that coordinate. The anchor only affects Cross; Rect and
// Ellipse are symmetric in their bounding box.
//
// Ellipse sets (r, c) iff ((r-cy)/b)² + ((c-cx)/a)² <= 1, with the centre at
// ((rows-1)/2, (cols-1)/2) and semi-axes b = rows/2, a = cols/2. The mask of a
// transposed size is the transposed mask. A 1x1 element of any shape is a
// single set pixel.
func GetStructuringElement(shape Shape, size raster.Size, anchor image.Point) (StructuringElement, error) {
	const op = "morphology.GetStructuringElement"
	if shape != Rect && shape != Cross && shape != Ellipse {
		return StructuringElement{}, imgerr.New(imgerr.UnsupportedMode, op, "unsupported shape %d", int(shape))
	}
	if !size.Valid() {
		return StructuringElement{}, imgerr.New(imgerr.InvalidDimensions, op,
			"invalid element size %dx%d", size.Rows, size.Cols)
	}
	if anchor.X == DefaultAnchor.X {
		anchor.X = size.Cols / 2
	}
	if anchor.Y == DefaultAnchor.Y {
		anchor.Y = size.Rows / 2
	}
	if anchor.X < 0 || anchor.X >= size.Cols || anchor.Y < 0 || anchor.Y >= size.Rows {
		return StructuringElement{}, imgerr.New(imgerr.InvalidArgument, op,
			"anchor (%d,%d) outside %dx%d element", anchor.X, anchor.Y, size.Rows, size.Cols)
	}
	if size.Rows == 1 && size.Cols == 1 {
		shape = Rect
	}

	rows, cols := size.Rows, size.Cols
	vals := make([]float64, rows*cols)
	setSpan := func(r, from, to int) {
		for c := from; c < to; c++ {
			vals[r*cols+c] = 1
		}
	}

	switch shape {
	case Rect:
		for r := 0; r < rows; r++ {
			setSpan(r, 0, cols)
		}
	case Cross:
		for r := 0; r < rows; r++ {
			if r == anchor.Y {
				setSpan(r, 0, cols)
			} else {
				setSpan(r, anchor.X, anchor.X+1)
			}
		}
	case Ellipse:
		cy, cx := float64(rows-1)/2, float64(cols-1)/2
		b, a := float64(rows)/2, float64(cols)/2
		for r := 0; r < rows; r++ {
			dy := (float64(r) - cy) / b
			for c := 0; c < cols; c++ {
				dx := (float64(c) - cx) / a
				if dy*dy+dx*dx <= 1 {
					vals[r*cols+c] = 1
				}
			}
		}
	}

	mask, err := raster.FromValues(rows, cols, 1, raster.Uint8, vals)
	if err != nil {
		return StructuringElement{}, imgerr.Wrap(imgerr.Unknown, op, err)
	}
	return StructuringElement{Mask: mask.View(), Anchor: anchor}, nil
}
