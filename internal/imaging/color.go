package imaging

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

// BorderValue converts a hex colour ("#RRGGBB" or "#RGB") into the
// per-channel fill value of a constant border for a buffer with the given
// channel count.
//
//   - 1 channel: BT.601 luminance, rounded
//   - 3 channels: R, G, B
//   - 4 channels: R, G, B, 255
func BorderValue(hex string, channels int) ([]float64, error) {
	const op = "imaging.BorderValue"
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, imgerr.Wrap(imgerr.InvalidArgument, op, err)
	}
	r, g, b := c.RGB255()

	switch channels {
	case 1:
		y := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		return []float64{math.Round(y)}, nil
	case 3:
		return []float64{float64(r), float64(g), float64(b)}, nil
	case 4:
		return []float64{float64(r), float64(g), float64(b), 255}, nil
	}
	return nil, imgerr.New(imgerr.InvalidArgument, op, "colour border needs 1, 3 or 4 channels, got %d", channels)
}

// HexColor formats per-channel 8-bit values as "#RRGGBB". Single-channel
// values are repeated across R, G and B; alpha is dropped.
func HexColor(values []float64) string {
	if len(values) == 0 {
		return "#000000"
	}
	ch := func(i int) float64 {
		if i >= len(values) {
			i = 0
		}
		return math.Max(0, math.Min(255, values[i])) / 255
	}
	return colorful.Color{R: ch(0), G: ch(1), B: ch(2)}.Clamped().Hex()
}
