package raster

import (
	"encoding/binary"
	"math"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

// ElemType is the numeric type of a single buffer element.
type ElemType int

// Supported element types.
const (
	Uint8 ElemType = iota + 1
	Int8
	Uint16
	Int16
	Int32
	Float32
	Float64
)

var elemNames = map[ElemType]string{
	Uint8:   "uint8",
	Int8:    "int8",
	Uint16:  "uint16",
	Int16:   "int16",
	Int32:   "int32",
	Float32: "float32",
	Float64: "float64",
}

func (t ElemType) String() string {
	if s, ok := elemNames[t]; ok {
		return s
	}
	return "invalid"
}

// ParseElemType returns the element type with the given name ("uint8", "float32", ...).
func ParseElemType(name string) (ElemType, error) {
	for t, s := range elemNames {
		if s == name {
			return t, nil
		}
	}
	return 0, imgerr.New(imgerr.UnsupportedMode, "raster", "unknown element type %q", name)
}

// Valid reports whether t is one of the supported element types.
func (t ElemType) Valid() bool {
	_, ok := elemNames[t]
	return ok
}

// Size returns the element size in bytes.
func (t ElemType) Size() int {
	switch t {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// IsFloat reports whether t is a floating-point type.
func (t ElemType) IsFloat() bool { return t == Float32 || t == Float64 }

// Saturate converts v to a value representable by t: integer types round to
// nearest (half to even) and clamp to their range, Float32 rounds to single
// precision.
func (t ElemType) Saturate(v float64) float64 {
	switch t {
	case Float64:
		return v
	case Float32:
		return float64(float32(v))
	}
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := t.bounds()
	v = math.RoundToEven(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t ElemType) bounds() (float64, float64) {
	switch t {
	case Uint8:
		return 0, math.MaxUint8
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Uint16:
		return 0, math.MaxUint16
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	}
	return -math.MaxFloat64, math.MaxFloat64
}

// Size is a two-dimensional extent in rows and columns.
type Size struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Rows > 0 && s.Cols > 0 }

// Buffer is a dense two-dimensional, optionally multi-channel grid of numbers.
//
// Elements are stored little-endian in a contiguous byte slice; row r starts
// at offset r*Stride(). A Buffer returned by View shares its storage with the
// original and rejects writes.
type Buffer struct {
	rows, cols, channels int
	typ                  ElemType
	stride               int
	data                 []byte
	readOnly             bool
}

// New allocates a zero-filled buffer with a tightly packed stride.
func New(rows, cols, channels int, typ ElemType) (*Buffer, error) {
	return NewWithStride(rows, cols, channels, typ, 0)
}

// NewWithStride allocates a zero-filled buffer whose rows are stride bytes
// apart. A stride of 0 selects cols*channels*typ.Size().
func NewWithStride(rows, cols, channels int, typ ElemType, stride int) (*Buffer, error) {
	const op = "raster.New"
	if err := checkLayout(op, rows, cols, channels, typ); err != nil {
		return nil, err
	}
	packed := cols * channels * typ.Size()
	if stride == 0 {
		stride = packed
	}
	if stride < packed {
		return nil, imgerr.New(imgerr.InvalidArgument, op, "stride %d smaller than row size %d", stride, packed)
	}
	return &Buffer{
		rows:     rows,
		cols:     cols,
		channels: channels,
		typ:      typ,
		stride:   stride,
		data:     make([]byte, rows*stride),
	}, nil
}

func checkLayout(op string, rows, cols, channels int, typ ElemType) error {
	if rows <= 0 || cols <= 0 {
		return imgerr.New(imgerr.InvalidDimensions, op, "invalid size %dx%d", rows, cols)
	}
	if channels <= 0 {
		return imgerr.New(imgerr.InvalidDimensions, op, "invalid channel count %d", channels)
	}
	if !typ.Valid() {
		return imgerr.New(imgerr.UnsupportedMode, op, "unsupported element type %d", int(typ))
	}
	return nil
}

// FromValues allocates a buffer and fills it from row-major interleaved
// values, saturating each one to typ. The layout and the value count are
// checked before anything is allocated.
func FromValues(rows, cols, channels int, typ ElemType, values []float64) (*Buffer, error) {
	const op = "raster.FromValues"
	if err := checkLayout(op, rows, cols, channels, typ); err != nil {
		return nil, err
	}
	if len(values) != rows*cols*channels {
		return nil, imgerr.New(imgerr.DimensionMismatch, op,
			"got %d values for %dx%dx%d buffer", len(values), rows, cols, channels)
	}
	b, err := New(rows, cols, channels, typ)
	if err != nil {
		return nil, err
	}
	b.fill(values)
	return b, nil
}

// Rows returns the number of rows.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns the number of columns.
func (b *Buffer) Cols() int { return b.cols }

// Channels returns the number of channels per pixel.
func (b *Buffer) Channels() int { return b.channels }

// Type returns the element type.
func (b *Buffer) Type() ElemType { return b.typ }

// Stride returns the distance in bytes between the starts of adjacent rows.
func (b *Buffer) Stride() int { return b.stride }

// Size returns the row and column counts.
func (b *Buffer) Size() Size { return Size{Rows: b.rows, Cols: b.cols} }

// Len returns the number of elements (rows*cols*channels).
func (b *Buffer) Len() int { return b.rows * b.cols * b.channels }

// ReadOnly reports whether b is an immutable view.
func (b *Buffer) ReadOnly() bool { return b.readOnly }

// SameShape reports whether b and o have equal rows, columns and channels.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.rows == o.rows && b.cols == o.cols && b.channels == o.channels
}

func (b *Buffer) offset(r, c, ch int) int {
	return r*b.stride + (c*b.channels+ch)*b.typ.Size()
}

func (b *Buffer) inBounds(r, c, ch int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols && ch >= 0 && ch < b.channels
}

// At returns the element at row r, column c, channel ch.
func (b *Buffer) At(r, c, ch int) (float64, error) {
	if !b.inBounds(r, c, ch) {
		return 0, imgerr.New(imgerr.OutOfRange, "raster.At",
			"(%d,%d,%d) outside %dx%dx%d", r, c, ch, b.rows, b.cols, b.channels)
	}
	return b.load(b.offset(r, c, ch)), nil
}

// Set stores v, saturated to the element type, at row r, column c, channel ch.
func (b *Buffer) Set(r, c, ch int, v float64) error {
	const op = "raster.Set"
	if b.readOnly {
		return imgerr.New(imgerr.InvalidArgument, op, "buffer is a read-only view")
	}
	if !b.inBounds(r, c, ch) {
		return imgerr.New(imgerr.OutOfRange, op,
			"(%d,%d,%d) outside %dx%dx%d", r, c, ch, b.rows, b.cols, b.channels)
	}
	b.store(b.offset(r, c, ch), b.typ.Saturate(v))
	return nil
}

// Values returns a fresh row-major, channel-interleaved copy of every element.
func (b *Buffer) Values() []float64 {
	out := make([]float64, 0, b.Len())
	size := b.typ.Size()
	n := b.cols * b.channels
	for r := 0; r < b.rows; r++ {
		off := r * b.stride
		for i := 0; i < n; i++ {
			out = append(out, b.load(off+i*size))
		}
	}
	return out
}

// fill writes row-major values into b, saturating each.
func (b *Buffer) fill(values []float64) {
	size := b.typ.Size()
	n := b.cols * b.channels
	for r := 0; r < b.rows; r++ {
		off := r * b.stride
		row := values[r*n : (r+1)*n]
		for i, v := range row {
			b.store(off+i*size, b.typ.Saturate(v))
		}
	}
}

// View returns an immutable buffer sharing b's storage.
func (b *Buffer) View() *Buffer {
	v := *b
	v.readOnly = true
	return &v
}

// Clone returns a writable, tightly packed deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		rows:     b.rows,
		cols:     b.cols,
		channels: b.channels,
		typ:      b.typ,
		stride:   b.cols * b.channels * b.typ.Size(),
	}
	c.data = make([]byte, c.rows*c.stride)
	for r := 0; r < b.rows; r++ {
		copy(c.data[r*c.stride:(r+1)*c.stride], b.data[r*b.stride:r*b.stride+c.stride])
	}
	return c
}

// Equal reports whether a and b have the same shape and element type and
// every pair of elements differs by at most eps. Integer buffers compare
// exactly regardless of eps.
func Equal(a, b *Buffer, eps float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !a.SameShape(b) || a.typ != b.typ {
		return false
	}
	if !a.typ.IsFloat() {
		eps = 0
	}
	av, bv := a.Values(), b.Values()
	for i := range av {
		if math.Abs(av[i]-bv[i]) > eps {
			return false
		}
	}
	return true
}

func (b *Buffer) load(off int) float64 {
	d := b.data[off:]
	switch b.typ {
	case Uint8:
		return float64(d[0])
	case Int8:
		return float64(int8(d[0]))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(d))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(d)))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(d)))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(d)))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(d))
	}
	return 0
}

// store writes an already saturated value.
func (b *Buffer) store(off int, v float64) {
	d := b.data[off:]
	switch b.typ {
	case Uint8:
		d[0] = uint8(v)
	case Int8:
		d[0] = uint8(int8(v))
	case Uint16:
		binary.LittleEndian.PutUint16(d, uint16(v))
	case Int16:
		binary.LittleEndian.PutUint16(d, uint16(int16(v)))
	case Int32:
		binary.LittleEndian.PutUint32(d, uint32(int32(v)))
	case Float32:
		binary.LittleEndian.PutUint32(d, math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(d, math.Float64bits(v))
	}
}
