package textmetrics

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

func TestGetTextSize_Simplex(t *testing.T) {
	got, err := GetTextSize("AA", Simplex, 1, 1)
	if err != nil {
		t.Fatalf("GetTextSize failed: %v", err)
	}
	want := Result{Width: 36, Height: 22, Baseline: 9.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTextSize_WidthScalesLinearly(t *testing.T) {
	for _, family := range Families() {
		for _, text := range []string{"AA", "Hello, World!", "x"} {
			one, err := GetTextSize(text, family, 1, 1)
			if err != nil {
				t.Fatal(err)
			}
			two, err := GetTextSize(text, family, 2, 1)
			if err != nil {
				t.Fatal(err)
			}
			if two.Width != 2*one.Width {
				t.Errorf("%v %q: width at scale 2 = %v, want exactly %v", family, text, two.Width, 2*one.Width)
			}
		}
	}
}

func TestGetTextSize_ThicknessOnlyPads(t *testing.T) {
	thin, _ := GetTextSize("Pad", Complex, 1.5, 1)
	thick, _ := GetTextSize("Pad", Complex, 1.5, 5)
	if thin.Width != thick.Width {
		t.Errorf("width changed with thickness: %v vs %v", thin.Width, thick.Width)
	}
	if got := thick.Height - thin.Height; got != 2 {
		t.Errorf("height padding difference: got %v, want 2", got)
	}
	if got := thick.Baseline - thin.Baseline; got != 2 {
		t.Errorf("baseline padding difference: got %v, want 2", got)
	}
}

func TestGetTextSize_UnknownRuneUsesSpace(t *testing.T) {
	space, _ := GetTextSize(" ", Simplex, 1, 1)
	other, _ := GetTextSize("é", Simplex, 1, 1)
	if space.Width != 16 || other.Width != space.Width {
		t.Errorf("got %v for unknown rune, %v for space", other.Width, space.Width)
	}
}

func TestGetTextSize_EmptyString(t *testing.T) {
	got, err := GetTextSize("", Duplex, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 0 || got.Height != 63 || got.Baseline != 27 {
		t.Errorf("got %+v", got)
	}
}

func TestGetTextSize_FamiliesDiffer(t *testing.T) {
	simplex, _ := GetTextSize("Metrics", Simplex, 1, 1)
	plain, _ := GetTextSize("Metrics", Plain, 1, 1)
	if plain.Width >= simplex.Width || plain.Height >= simplex.Height {
		t.Errorf("plain should be smaller than simplex: %+v vs %+v", plain, simplex)
	}
}

func TestGetTextSize_Errors(t *testing.T) {
	tests := []struct {
		name      string
		family    FontFamily
		scale     float64
		thickness int
		want      error
	}{
		{"negative scale", Simplex, -1, 1, imgerr.ErrInvalidArgument},
		{"NaN scale", Simplex, math.NaN(), 1, imgerr.ErrInvalidArgument},
		{"infinite scale", Simplex, math.Inf(1), 1, imgerr.ErrInvalidArgument},
		{"negative thickness", Simplex, 1, -2, imgerr.ErrInvalidArgument},
		{"unknown family", FontFamily(99), 1, 1, imgerr.ErrUnsupportedMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetTextSize("x", tt.family, tt.scale, tt.thickness)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseFontFamily(t *testing.T) {
	tests := []struct {
		name   string
		want   FontFamily
		wantOK bool
	}{
		{"HERSHEY_SIMPLEX", Simplex, true},
		{"HERSHEY_COMPLEX_SMALL", ComplexSmall, true},
		{"HERSEY_PLAIN", Plain, true},
		{"HERSEY_SCRIPT_COMPLEX", ScriptComplex, true},
		{"hershey_plain", DefaultFamily, false},
		{"Arial", DefaultFamily, false},
		{"", DefaultFamily, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFontFamily(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseFontFamily(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	for _, f := range Families() {
		if got, ok := ParseFontFamily(f.String()); !ok || got != f {
			t.Errorf("round trip of %v gave %v, %v", f, got, ok)
		}
	}
}

func TestFace(t *testing.T) {
	face := NewFace(Simplex)
	defer face.Close()

	if got, want := font.MeasureString(face, "Hi"), fixed.I(22+8); got != want {
		t.Errorf("MeasureString: got %v, want %v", got, want)
	}
	if _, _, _, _, ok := face.Glyph(fixed.Point26_6{}, 'A'); ok {
		t.Error("Glyph should not render")
	}
	bounds, adv, ok := face.GlyphBounds('A')
	if !ok || adv != fixed.I(18) || bounds.Max.X != adv || bounds.Min.Y != -fixed.I(12) {
		t.Errorf("GlyphBounds: got %v, %v, %v", bounds, adv, ok)
	}
}

func TestMetrics(t *testing.T) {
	for _, f := range Families() {
		m := Metrics(f)
		if m.Ascent+m.Descent != m.Height {
			t.Errorf("%v: ascent %v + descent %v != height %v", f, m.Ascent, m.Descent, m.Height)
		}
		res, _ := GetTextSize("", f, 1, 0)
		if float64(m.Height)/64 != res.Height {
			t.Errorf("%v: metrics height %v disagrees with GetTextSize height %v", f, m.Height, res.Height)
		}
	}
	if Metrics(ScriptSimplex).CaretSlope.X == 0 {
		t.Error("script families should be slanted")
	}
}
