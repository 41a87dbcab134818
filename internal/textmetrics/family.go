package textmetrics

import (
	"image"
	"math"

	"golang.org/x/image/math/fixed"
)

// FontFamily is one of the stroke font families text can be measured in.
type FontFamily int

const (
	Simplex FontFamily = iota
	Plain
	Duplex
	Complex
	Triplex
	ComplexSmall
	ScriptSimplex
	ScriptComplex
)

// DefaultFamily is used when a font name is not recognized.
const DefaultFamily = Simplex

var familyNames = [...]string{
	Simplex:       "SIMPLEX",
	Plain:         "PLAIN",
	Duplex:        "DUPLEX",
	Complex:       "COMPLEX",
	Triplex:       "TRIPLEX",
	ComplexSmall:  "COMPLEX_SMALL",
	ScriptSimplex: "SCRIPT_SIMPLEX",
	ScriptComplex: "SCRIPT_COMPLEX",
}

// Families returns every supported family in declaration order.
func Families() []FontFamily {
	out := make([]FontFamily, len(familyNames))
	for i := range out {
		out[i] = FontFamily(i)
	}
	return out
}

// Valid reports whether f is a known family.
func (f FontFamily) Valid() bool { return f >= 0 && int(f) < len(familyNames) }

func (f FontFamily) String() string {
	if !f.Valid() {
		return "HERSHEY_INVALID"
	}
	return "HERSHEY_" + familyNames[f]
}

var familiesByName = func() map[string]FontFamily {
	m := make(map[string]FontFamily, 2*len(familyNames))
	for i, n := range familyNames {
		m["HERSHEY_"+n] = FontFamily(i)
		// Misspelt alias, kept for existing callers.
		m["HERSEY_"+n] = FontFamily(i)
	}
	return m
}()

// ParseFontFamily looks name up case-sensitively. Both HERSHEY_SIMPLEX and
// HERSEY_SIMPLEX style names are accepted. An unknown name yields
// DefaultFamily and ok == false; it is not an error.
func ParseFontFamily(name string) (family FontFamily, ok bool) {
	if f, found := familiesByName[name]; found {
		return f, true
	}
	return DefaultFamily, false
}

// familyMetrics describes a family in font units.
type familyMetrics struct {
	// width scales the reference advance table.
	width   float64
	cap     int
	descent int
	xHeight int
	italic  bool
}

var metricsTable = [...]familyMetrics{
	Simplex:       {width: 1, cap: 12, descent: 9, xHeight: 7},
	Plain:         {width: 0.5, cap: 8, descent: 4, xHeight: 4},
	Duplex:        {width: 1.05, cap: 12, descent: 9, xHeight: 7},
	Complex:       {width: 1, cap: 12, descent: 9, xHeight: 7},
	Triplex:       {width: 1.1, cap: 12, descent: 9, xHeight: 7},
	ComplexSmall:  {width: 0.65, cap: 8, descent: 6, xHeight: 5},
	ScriptSimplex: {width: 0.95, cap: 12, descent: 9, xHeight: 7, italic: true},
	ScriptComplex: {width: 0.95, cap: 12, descent: 9, xHeight: 7, italic: true},
}

// advanceTables holds per-family glyph advances in 26.6 font units.
var advanceTables = func() [len(familyNames)]map[rune]fixed.Int26_6 {
	var out [len(familyNames)]map[rune]fixed.Int26_6
	for i, fm := range metricsTable {
		t := make(map[rune]fixed.Int26_6, len(simplexAdvances))
		for r, adv := range simplexAdvances {
			t[r] = fixed.Int26_6(math.Round(float64(adv) * fm.width * 64))
		}
		out[i] = t
	}
	return out
}()

func (fm familyMetrics) caretSlope() image.Point {
	if fm.italic {
		return image.Point{X: 1, Y: 4}
	}
	return image.Point{X: 0, Y: 1}
}
