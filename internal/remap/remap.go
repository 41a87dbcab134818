package remap

import (
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// Interpolation selects the sampling kernel.
type Interpolation int

const (
	// Nearest rounds the source coordinate to the closest pixel.
	Nearest Interpolation = iota
	// Linear blends the four surrounding pixels with bilinear weights.
	Linear
)

func (i Interpolation) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	}
	return "invalid"
}

// ParseInterpolation maps "nearest" or "linear" to an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "nearest":
		return Nearest, nil
	case "linear":
		return Linear, nil
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "remap", "unknown interpolation %q", name)
}

// BorderMode selects how coordinates outside the source are resolved.
type BorderMode int

// Border modes.
const (
	// BorderConstant fills with Border.Value.
	BorderConstant BorderMode = iota
	// BorderReplicate clamps to the nearest edge pixel: aaa|abcd|ddd.
	BorderReplicate
	// BorderReflect mirrors across the edge, repeating it: cba|abcd|dcb.
	BorderReflect
	// BorderSkip leaves the destination pixel untouched (zero).
	BorderSkip
)

var borderNames = map[BorderMode]string{
	BorderConstant:  "constant",
	BorderReplicate: "replicate",
	BorderReflect:   "reflect",
	BorderSkip:      "skip",
}

func (b BorderMode) String() string {
	if s, ok := borderNames[b]; ok {
		return s
	}
	return "invalid"
}

// ParseBorderMode maps "constant", "replicate", "reflect" or "skip"
// ("transparent" is accepted as an alias of "skip").
func ParseBorderMode(name string) (BorderMode, error) {
	if name == "transparent" {
		return BorderSkip, nil
	}
	for m, s := range borderNames {
		if s == name {
			return m, nil
		}
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "remap", "unknown border mode %q", name)
}

// Border is a border policy. Value is only used by BorderConstant and holds
// one entry per channel; missing entries are zero.
type Border struct {
	Mode  BorderMode
	Value []float64
}

// Constant returns a BorderConstant policy filling with the given per-channel values.
func Constant(value ...float64) Border { return Border{Mode: BorderConstant, Value: value} }

// Replicate returns a BorderReplicate policy.
func Replicate() Border { return Border{Mode: BorderReplicate} }

// Reflect returns a BorderReflect policy.
func Reflect() Border { return Border{Mode: BorderReflect} }

// Skip returns a BorderSkip policy.
func Skip() Border { return Border{Mode: BorderSkip} }

// resolve maps index i into [0, n) according to the border mode. The bool is
// false when the mode has no in-range equivalent (constant, skip).
func (b Border) resolve(i, n int) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch b.Mode {
	case BorderReplicate:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	case BorderReflect:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	}
	return 0, false
}

// coordLimit keeps float-to-int conversions defined for wild coordinates.
const coordLimit = 1 << 30

func floorIndex(v float64) int {
	switch {
	case math.IsNaN(v), v < -coordLimit:
		return -coordLimit
	case v > coordLimit:
		return coordLimit
	}
	return int(math.Floor(v))
}

func roundIndex(v float64) int {
	switch {
	case math.IsNaN(v), v < -coordLimit:
		return -coordLimit
	case v > coordLimit:
		return coordLimit
	}
	return int(math.RoundToEven(v))
}

// Remap samples src at the coordinates given by m and returns a new buffer of
// m's size with src's channel count and element type.
//
// Destination pixels are independent, so rows are processed in parallel
// bands (see raster.WithWorkers).
func Remap(src *raster.Buffer, m CoordinateMap, interp Interpolation, border Border, opts ...raster.ExecOption) (*raster.Buffer, error) {
	const op = "remap"
	if src == nil {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "source buffer is required")
	}
	if m.IsZero() {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "coordinate map is required")
	}
	if interp != Nearest && interp != Linear {
		return nil, imgerr.New(imgerr.UnsupportedMode, op, "unsupported interpolation %d", int(interp))
	}
	if _, ok := borderNames[border.Mode]; !ok {
		return nil, imgerr.New(imgerr.UnsupportedMode, op, "unsupported border mode %d", int(border.Mode))
	}

	size := m.Size()
	s := sampler{
		src:      src.Values(),
		rows:     src.Rows(),
		cols:     src.Cols(),
		channels: src.Channels(),
		border:   border,
		fill:     make([]float64, src.Channels()),
	}
	copy(s.fill, border.Value)

	xs, ys := m.Coords()
	out := make([]float64, size.Rows*size.Cols*s.channels)
	sample := s.nearest
	if interp == Linear {
		sample = s.linear
	}

	err := raster.ParallelRows(size.Rows, func(start, end int) error {
		for i := start * size.Cols; i < end*size.Cols; i++ {
			sample(xs[i], ys[i], out[i*s.channels:(i+1)*s.channels])
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, imgerr.Wrap(imgerr.Unknown, op, err)
	}
	return raster.FromValues(size.Rows, size.Cols, s.channels, src.Type(), out)
}

type sampler struct {
	src                  []float64
	rows, cols, channels int
	border               Border
	fill                 []float64
}

func (s *sampler) pixel(r, c int) []float64 {
	i := (r*s.cols + c) * s.channels
	return s.src[i : i+s.channels]
}

func (s *sampler) nearest(x, y float64, dst []float64) {
	c, okc := s.border.resolve(roundIndex(x), s.cols)
	r, okr := s.border.resolve(roundIndex(y), s.rows)
	switch {
	case okc && okr:
		copy(dst, s.pixel(r, c))
	case s.border.Mode == BorderConstant:
		copy(dst, s.fill)
	}
}

func (s *sampler) linear(x, y float64, dst []float64) {
	x0, y0 := floorIndex(x), floorIndex(y)
	ax, ay := x-float64(x0), y-float64(y0)
	if math.IsNaN(ax) || math.IsInf(x, 0) {
		ax = 0
	}
	if math.IsNaN(ay) || math.IsInf(y, 0) {
		ay = 0
	}

	if s.border.Mode == BorderSkip {
		if x < 0 || y < 0 || x > float64(s.cols-1) || y > float64(s.rows-1) || math.IsNaN(x) || math.IsNaN(y) {
			return
		}
	}

	weights := [4]float64{(1 - ax) * (1 - ay), ax * (1 - ay), (1 - ax) * ay, ax * ay}
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for ch := range dst {
		dst[ch] = 0
	}
	for k, w := range weights {
		if w == 0 {
			continue
		}
		c, okc := s.resolveSkip(x0+offsets[k][0], s.cols)
		r, okr := s.resolveSkip(y0+offsets[k][1], s.rows)
		var px []float64
		if okc && okr {
			px = s.pixel(r, c)
		} else {
			px = s.fill
		}
		for ch := range dst {
			dst[ch] += w * px[ch]
		}
	}
}

// resolveSkip behaves like Border.resolve but replicates for BorderSkip,
// whose out-of-range coordinates were already rejected.
func (s *sampler) resolveSkip(i, n int) (int, bool) {
	if s.border.Mode == BorderSkip {
		return Replicate().resolve(i, n)
	}
	return s.border.resolve(i, n)
}
