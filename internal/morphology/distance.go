package morphology

import (
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// Unreachable is the distance reported for pixels when the input contains no
// zero pixel at all.
const Unreachable = raster.Unreachable

// DistanceType selects the metric of the distance transform.
type DistanceType int

const (
	// DistL1 is the Manhattan (city block) distance, computed exactly.
	DistL1 DistanceType = iota + 1
	// DistL2 is the Euclidean distance, approximated by a chamfer mask
	// unless MaskPrecise is requested.
	DistL2
	// DistChebyshev is the chessboard distance, computed exactly.
	DistChebyshev
)

func (d DistanceType) String() string {
	switch d {
	case DistL1:
		return "L1"
	case DistL2:
		return "L2"
	case DistChebyshev:
		return "C"
	}
	return "invalid"
}

// ParseDistanceType maps "L1", "L2" or "C" ("CHEBYSHEV") to a DistanceType.
func ParseDistanceType(name string) (DistanceType, error) {
	switch name {
	case "L1":
		return DistL1, nil
	case "L2":
		return DistL2, nil
	case "C", "CHEBYSHEV":
		return DistChebyshev, nil
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "morphology", "unknown distance type %q", name)
}

// MaskSize selects the propagation mask.
type MaskSize int

const (
	// MaskPrecise computes exact Euclidean distances for DistL2 with the
	// separable lower-envelope algorithm. L1 and Chebyshev are exact with
	// Mask3 and use it.
	MaskPrecise MaskSize = 0
	// Mask3 is the two-pass 3x3 chamfer propagation.
	Mask3 MaskSize = 3
)

func (m MaskSize) String() string {
	switch m {
	case MaskPrecise:
		return "precise"
	case Mask3:
		return "3"
	}
	return "invalid"
}

// ParseMaskSize maps "3" or "precise" to a MaskSize.
func ParseMaskSize(name string) (MaskSize, error) {
	switch name {
	case "3":
		return Mask3, nil
	case "precise", "0":
		return MaskPrecise, nil
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "morphology", "unknown mask size %q", name)
}

// step is a neighbor offset and the cost of moving across it.
type step struct {
	dr, dc int
	w      float64
}

// chamferSteps returns the already-visited neighbors of the forward pass.
// The backward pass uses the same steps negated.
func chamferSteps(dt DistanceType) []step {
	switch dt {
	case DistL1:
		return []step{{-1, 0, 1}, {0, -1, 1}}
	case DistChebyshev:
		return []step{{-1, -1, 1}, {-1, 0, 1}, {-1, 1, 1}, {0, -1, 1}}
	}
	return []step{{-1, -1, math.Sqrt2}, {-1, 0, 1}, {-1, 1, math.Sqrt2}, {0, -1, 1}}
}

// DistanceTransform returns, for every pixel of the single-channel src, its
// distance to the nearest zero-valued pixel as a Float32 buffer of the same
// size. Zero pixels get 0. If src has no zero pixel every element is
// Unreachable.
//
// With Mask3 two raster passes are made. The forward pass (top-left to
// bottom-right) relaxes each pixel against its up-left, up, up-right and left
// neighbors; the backward pass (bottom-right to top-left) against down-right,
// down, down-left and right. Axis steps cost 1. Diagonal steps cost √2 for L2
// and 1 for Chebyshev; L1 uses axis steps only.
func DistanceTransform(src *raster.Buffer, dt DistanceType, mask MaskSize, opts ...raster.ExecOption) (*raster.Buffer, error) {
	const op = "morphology.DistanceTransform"
	if src == nil {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "source buffer is required")
	}
	if src.Channels() != 1 {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "source must be single-channel, got %d channels", src.Channels())
	}
	if dt != DistL1 && dt != DistL2 && dt != DistChebyshev {
		return nil, imgerr.New(imgerr.UnsupportedMode, op, "unsupported distance type %d", int(dt))
	}
	if mask != Mask3 && mask != MaskPrecise {
		return nil, imgerr.New(imgerr.UnsupportedMode, op, "unsupported mask size %d", int(mask))
	}

	rows, cols := src.Rows(), src.Cols()
	d := src.Values()
	for i, v := range d {
		if v == 0 {
			d[i] = 0
		} else {
			d[i] = Unreachable
		}
	}

	if dt == DistL2 && mask == MaskPrecise {
		if err := exactEuclidean(d, rows, cols, opts...); err != nil {
			return nil, imgerr.Wrap(imgerr.Unknown, op, err)
		}
	} else {
		chamfer(d, rows, cols, chamferSteps(dt))
	}
	return raster.FromValues(rows, cols, 1, raster.Float32, d)
}

func chamfer(d []float64, rows, cols int, steps []step) {
	relax := func(r, c, sign int) {
		i := r*cols + c
		best := d[i]
		if best == 0 {
			return
		}
		for _, s := range steps {
			nr, nc := r+sign*s.dr, c+sign*s.dc
			if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
				continue
			}
			n := d[nr*cols+nc]
			if n >= Unreachable {
				continue
			}
			if cand := n + s.w; cand < best {
				best = cand
			}
		}
		d[i] = best
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			relax(r, c, 1)
		}
	}
	for r := rows - 1; r >= 0; r-- {
		for c := cols - 1; c >= 0; c-- {
			relax(r, c, -1)
		}
	}
}

// envelopeInf stands in for infinity in squared distances; it stays finite so
// the parabola intersections never produce NaN.
const envelopeInf = 1e20

// exactEuclidean replaces d (0 or Unreachable) with exact Euclidean distances
// using one 1-D squared distance transform per column, then per row. Columns
// and rows are independent within each pass.
func exactEuclidean(d []float64, rows, cols int, opts ...raster.ExecOption) error {
	for i, v := range d {
		if v != 0 {
			d[i] = envelopeInf
		}
	}

	n := max(rows, cols)
	colPass := func(start, end int) error {
		s := newEnvelope(n)
		for c := start; c < end; c++ {
			for r := 0; r < rows; r++ {
				s.f[r] = d[r*cols+c]
			}
			s.transform(rows)
			for r := 0; r < rows; r++ {
				d[r*cols+c] = s.out[r]
			}
		}
		return nil
	}
	if err := raster.ParallelRows(cols, colPass, opts...); err != nil {
		return err
	}

	rowPass := func(start, end int) error {
		s := newEnvelope(n)
		for r := start; r < end; r++ {
			row := d[r*cols : (r+1)*cols]
			copy(s.f, row)
			s.transform(cols)
			copy(row, s.out[:cols])
		}
		return nil
	}
	if err := raster.ParallelRows(rows, rowPass, opts...); err != nil {
		return err
	}

	for i, v := range d {
		if v >= envelopeInf/2 {
			d[i] = Unreachable
		} else {
			d[i] = math.Sqrt(v)
		}
	}
	return nil
}

// envelope is scratch space for the 1-D lower envelope of parabolas.
type envelope struct {
	f, out []float64
	z      []float64
	v      []int
}

func newEnvelope(n int) *envelope {
	return &envelope{
		f:   make([]float64, n),
		out: make([]float64, n),
		z:   make([]float64, n+1),
		v:   make([]int, n),
	}
}

// transform computes out[q] = min_p (q-p)² + f[p] for q in [0, n).
func (e *envelope) transform(n int) {
	f, v, z := e.f, e.v, e.z
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	intersect := func(q, p int) float64 {
		return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
	}
	for q := 1; q < n; q++ {
		s := intersect(q, v[k])
		// z[0] is -Inf, so k never drops below zero.
		for s <= z[k] {
			k--
			s = intersect(q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		e.out[q] = dq*dq + f[v[k]]
	}
}
