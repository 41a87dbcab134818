package imaging

import (
	"bytes"
	"encoding/base64"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// BufferResult describes a buffer returned to a client, rendered as a
// base64 PNG.
type BufferResult struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	ElemType string `json:"elem_type"`

	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// OutputPath is set when the image was also written to disk.
	OutputPath string `json:"output_path,omitempty"`

	// Stats summarizes floating point buffers, whose PNG rendering is
	// normalized and so loses the actual values.
	Stats *Stats `json:"stats,omitempty"`
}

// Stats summarizes the values of a buffer.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Unreachable counts elements equal to raster.Unreachable; they are
	// excluded from Min and Max.
	Unreachable int `json:"unreachable"`
}

// EncodeBuffer renders b as a PNG. If outputPath is non-empty the image is
// also saved there, in the format implied by its extension.
func EncodeBuffer(b *raster.Buffer, outputPath string) (*BufferResult, error) {
	img, err := raster.ToImage(b)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	res := &BufferResult{
		Width:       b.Cols(),
		Height:      b.Rows(),
		Channels:    b.Channels(),
		ElemType:    b.Type().String(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}
	if b.Type().IsFloat() {
		res.Stats = Summarize(b)
	}

	if outputPath != "" {
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, errors.Wrapf(err, "failed to save image to %s", outputPath)
		}
		res.OutputPath = outputPath
	}
	return res, nil
}

// Summarize returns the range of b's reachable values and the number of
// unreachable ones. Min and Max are zero when every value is unreachable.
func Summarize(b *raster.Buffer) *Stats {
	s := &Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range b.Values() {
		if v >= raster.Unreachable {
			s.Unreachable++
			continue
		}
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if math.IsInf(s.Min, 1) {
		s.Min, s.Max = 0, 0
	}
	return s
}
