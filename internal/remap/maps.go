package remap

import (
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// Fixed-point map layout: 5 fractional bits per axis, giving a 32x32
// sub-pixel table indexed by map2 = fy*32 + fx.
const (
	interBits    = 5
	interTabSize = 1 << interBits
	interTabMask = interTabSize - 1
)

// MapType selects the storage form of a CoordinateMap.
type MapType int

const (
	// MapFloat32 stores x and y in two single-channel Float32 buffers.
	MapFloat32 MapType = iota + 1
	// MapFloat32Interleaved stores (x, y) pairs in one two-channel Float32
	// buffer; map2 is absent.
	MapFloat32Interleaved
	// MapFixed16 stores integer (x, y) in a two-channel Int16 buffer and the
	// sub-pixel table index in a single-channel Uint16 buffer.
	MapFixed16
)

var mapTypeNames = map[MapType]string{
	MapFloat32:            "float32",
	MapFloat32Interleaved: "float32c2",
	MapFixed16:            "fixed16",
}

func (t MapType) String() string {
	if s, ok := mapTypeNames[t]; ok {
		return s
	}
	return "invalid"
}

// Valid reports whether t is a known map type.
func (t MapType) Valid() bool {
	_, ok := mapTypeNames[t]
	return ok
}

// ParseMapType maps "float32", "float32c2" or "fixed16" to a MapType.
func ParseMapType(name string) (MapType, error) {
	for t, s := range mapTypeNames {
		if s == name {
			return t, nil
		}
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "remap", "unknown map type %q", name)
}

// CoordinateMap gives, for every destination pixel, the source coordinate to
// sample. Coordinates need not lie inside the source. A CoordinateMap is
// immutable: its buffers are only handed out as read-only views.
type CoordinateMap struct {
	typ        MapType
	map1, map2 *raster.Buffer
}

// NewCoordinateMap wraps a pair of map buffers, inferring the map type:
//
//   - map1 Float32 1-channel, map2 Float32 1-channel: MapFloat32
//   - map1 Float32 2-channel, map2 nil: MapFloat32Interleaved
//   - map1 Int16 2-channel, map2 Uint16 1-channel or nil: MapFixed16
//
// Buffers whose row/column dimensions differ yield DimensionMismatch.
func NewCoordinateMap(map1, map2 *raster.Buffer) (CoordinateMap, error) {
	const op = "remap.NewCoordinateMap"
	if map1 == nil {
		return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op, "map1 is required")
	}
	if map2 != nil && map1.Size() != map2.Size() {
		return CoordinateMap{}, imgerr.New(imgerr.DimensionMismatch, op,
			"map1 is %dx%d but map2 is %dx%d", map1.Rows(), map1.Cols(), map2.Rows(), map2.Cols())
	}

	var typ MapType
	switch {
	case map1.Type() == raster.Float32 && map1.Channels() == 1:
		if map2 == nil || map2.Type() != raster.Float32 || map2.Channels() != 1 {
			return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op,
				"single-channel float32 map1 needs a single-channel float32 map2")
		}
		typ = MapFloat32
	case map1.Type() == raster.Float32 && map1.Channels() == 2:
		if map2 != nil {
			return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op,
				"two-channel float32 map1 takes no map2")
		}
		typ = MapFloat32Interleaved
	case map1.Type() == raster.Int16 && map1.Channels() == 2:
		if map2 != nil && (map2.Type() != raster.Uint16 || map2.Channels() != 1) {
			return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op,
				"fixed-point map2 must be single-channel uint16")
		}
		typ = MapFixed16
	default:
		return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op,
			"unsupported map1 layout: %d-channel %v", map1.Channels(), map1.Type())
	}

	m := CoordinateMap{typ: typ, map1: map1.View()}
	if map2 != nil {
		m.map2 = map2.View()
	}
	return m, nil
}

// Type returns the storage form.
func (m CoordinateMap) Type() MapType { return m.typ }

// Map1 returns a read-only view of the first map buffer.
func (m CoordinateMap) Map1() *raster.Buffer { return view(m.map1) }

// Map2 returns a read-only view of the second map buffer, or nil.
func (m CoordinateMap) Map2() *raster.Buffer { return view(m.map2) }

// Size returns the destination size described by the map.
func (m CoordinateMap) Size() raster.Size {
	if m.map1 == nil {
		return raster.Size{}
	}
	return m.map1.Size()
}

// IsZero reports whether m is the zero CoordinateMap.
func (m CoordinateMap) IsZero() bool { return m.map1 == nil }

func view(b *raster.Buffer) *raster.Buffer {
	if b == nil {
		return nil
	}
	return b.View()
}

// Coords decodes the map into row-major x and y coordinate planes.
func (m CoordinateMap) Coords() (xs, ys []float64) {
	if m.map1 == nil {
		return nil, nil
	}
	n := m.map1.Rows() * m.map1.Cols()
	v1 := m.map1.Values()

	switch m.typ {
	case MapFloat32:
		return v1, m.map2.Values()
	case MapFloat32Interleaved:
		xs, ys = make([]float64, n), make([]float64, n)
		for i := 0; i < n; i++ {
			xs[i], ys[i] = v1[2*i], v1[2*i+1]
		}
		return xs, ys
	}

	xs, ys = make([]float64, n), make([]float64, n)
	var frac []float64
	if m.map2 != nil {
		frac = m.map2.Values()
	}
	for i := 0; i < n; i++ {
		xs[i], ys[i] = v1[2*i], v1[2*i+1]
		if frac != nil {
			f := int(frac[i]) & (interTabSize*interTabSize - 1)
			xs[i] += float64(f&interTabMask) / interTabSize
			ys[i] += float64(f>>interBits) / interTabSize
		}
	}
	return xs, ys
}

// EncodeMap builds a CoordinateMap of the given type from row-major x and y
// coordinate planes of the given size.
func EncodeMap(xs, ys []float64, size raster.Size, typ MapType) (CoordinateMap, error) {
	const op = "remap.EncodeMap"
	if !size.Valid() {
		return CoordinateMap{}, imgerr.New(imgerr.DimensionMismatch, op, "invalid map size %dx%d", size.Rows, size.Cols)
	}
	n := size.Rows * size.Cols
	if len(xs) != n || len(ys) != n {
		return CoordinateMap{}, imgerr.New(imgerr.DimensionMismatch, op,
			"coordinate planes of length %d/%d for %dx%d map", len(xs), len(ys), size.Rows, size.Cols)
	}

	switch typ {
	case MapFloat32:
		m1, err := raster.FromValues(size.Rows, size.Cols, 1, raster.Float32, xs)
		if err != nil {
			return CoordinateMap{}, err
		}
		m2, err := raster.FromValues(size.Rows, size.Cols, 1, raster.Float32, ys)
		if err != nil {
			return CoordinateMap{}, err
		}
		return CoordinateMap{typ: typ, map1: m1, map2: m2}, nil

	case MapFloat32Interleaved:
		xy := make([]float64, 2*n)
		for i := 0; i < n; i++ {
			xy[2*i], xy[2*i+1] = xs[i], ys[i]
		}
		m1, err := raster.FromValues(size.Rows, size.Cols, 2, raster.Float32, xy)
		if err != nil {
			return CoordinateMap{}, err
		}
		return CoordinateMap{typ: typ, map1: m1}, nil

	case MapFixed16:
		base := make([]float64, 2*n)
		frac := make([]float64, n)
		for i := 0; i < n; i++ {
			ix, iy := quantize(xs[i]), quantize(ys[i])
			base[2*i] = float64(ix >> interBits)
			base[2*i+1] = float64(iy >> interBits)
			frac[i] = float64((iy&interTabMask)*interTabSize + ix&interTabMask)
		}
		m1, err := raster.FromValues(size.Rows, size.Cols, 2, raster.Int16, base)
		if err != nil {
			return CoordinateMap{}, err
		}
		m2, err := raster.FromValues(size.Rows, size.Cols, 1, raster.Uint16, frac)
		if err != nil {
			return CoordinateMap{}, err
		}
		return CoordinateMap{typ: typ, map1: m1, map2: m2}, nil
	}
	return CoordinateMap{}, imgerr.New(imgerr.UnsupportedMode, op, "unsupported map type %d", int(typ))
}

// quantize converts a coordinate to 1/32-pixel units, clamped so the integer
// part fits in an int16. Non-finite coordinates land far outside any image.
func quantize(v float64) int {
	const limit = math.MaxInt16 * interTabSize
	q := v * interTabSize
	switch {
	case math.IsNaN(q), q <= -limit:
		return -limit
	case q >= limit:
		return limit
	}
	return int(math.RoundToEven(q))
}

// ConvertMaps re-encodes m as a map of type typ. Converting to MapFixed16
// quantizes coordinates to 1/32 pixel.
func ConvertMaps(m CoordinateMap, typ MapType) (CoordinateMap, error) {
	if m.IsZero() {
		return CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, "remap.ConvertMaps", "empty map")
	}
	if typ == m.typ {
		return m, nil
	}
	xs, ys := m.Coords()
	return EncodeMap(xs, ys, m.Size(), typ)
}
