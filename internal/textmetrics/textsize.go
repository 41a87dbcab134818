package textmetrics

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

// Result is the bounding box of a measured string in pixels.
type Result struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Baseline is the distance from the bottom of the box up to the baseline.
	Baseline float64 `json:"baseline"`
}

// Metrics returns the vertical metrics of family in font units.
func Metrics(family FontFamily) font.Metrics {
	if !family.Valid() {
		family = DefaultFamily
	}
	fm := metricsTable[family]
	return font.Metrics{
		Height:     fixed.I(fm.cap + fm.descent),
		Ascent:     fixed.I(fm.cap),
		Descent:    fixed.I(fm.descent),
		XHeight:    fixed.I(fm.xHeight),
		CapHeight:  fixed.I(fm.cap),
		CaretSlope: fm.caretSlope(),
	}
}

// Face exposes a family's metric table as a font.Face at unit scale. It
// carries no glyph images.
type Face struct {
	family FontFamily
}

var _ font.Face = (*Face)(nil)

// NewFace returns the face for family, or for DefaultFamily if family is
// invalid.
func NewFace(family FontFamily) *Face {
	if !family.Valid() {
		family = DefaultFamily
	}
	return &Face{family: family}
}

func (f *Face) Close() error { return nil }

// Glyph always reports ok == false.
func (f *Face) Glyph(fixed.Point26_6, rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return image.Rectangle{}, nil, image.Point{}, 0, false
}

// GlyphBounds returns the advance box from cap line to descent line.
func (f *Face) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	adv, _ := f.GlyphAdvance(r)
	fm := metricsTable[f.family]
	return fixed.Rectangle26_6{
		Min: fixed.Point26_6{Y: -fixed.I(fm.cap)},
		Max: fixed.Point26_6{X: adv, Y: fixed.I(fm.descent)},
	}, adv, true
}

// GlyphAdvance returns the advance of r. Runes missing from the table
// advance like a space.
func (f *Face) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	t := advanceTables[f.family]
	if a, ok := t[r]; ok {
		return a, true
	}
	return t[' '], true
}

// Kern is always zero; advances are purely additive.
func (f *Face) Kern(_, _ rune) fixed.Int26_6 { return 0 }

func (f *Face) Metrics() font.Metrics { return Metrics(f.family) }

// GetTextSize measures text set in family at the given scale and stroke
// thickness.
//
//	Width    = scale · Σ advance
//	Height   = scale · (cap + descent) + ⌊(thickness+1)/2⌋
//	Baseline = scale · descent + thickness/2
//
// Thickness only pads the box vertically, so width is exactly linear in
// scale.
func GetTextSize(text string, family FontFamily, scale float64, thickness int) (Result, error) {
	const op = "textmetrics.GetTextSize"
	if !family.Valid() {
		return Result{}, imgerr.New(imgerr.UnsupportedMode, op, "unknown font family %d", int(family))
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 0 {
		return Result{}, imgerr.New(imgerr.InvalidArgument, op, "scale must be a non-negative number, got %v", scale)
	}
	if thickness < 0 {
		return Result{}, imgerr.New(imgerr.InvalidArgument, op, "thickness must be non-negative, got %d", thickness)
	}

	fm := metricsTable[family]
	advance := font.MeasureString(NewFace(family), text)
	return Result{
		Width:    float64(advance) / 64 * scale,
		Height:   float64(fm.cap+fm.descent)*scale + float64((thickness+1)/2),
		Baseline: float64(fm.descent)*scale + float64(thickness)/2,
	}, nil
}
