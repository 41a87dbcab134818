package server

import (
	"encoding/json"
	"image"

	"github.com/ironsheep/imgproc-mcp/internal/imaging"
	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/morphology"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
	"github.com/ironsheep/imgproc-mcp/internal/textmetrics"
)

// Feature sources for image_distance_transform.
const (
	sourceThreshold = "threshold"
	sourceEdges     = "edges"
)

// === Morphology Handlers ===

type distanceTransformArgs struct {
	Path         string `json:"path"`
	DistanceType string `json:"distance_type"`
	MaskSize     string `json:"mask_size"`

	// Source picks how the image becomes a binary mask: "threshold" marks
	// pixels darker than Threshold, "edges" marks Canny edges.
	Source        string `json:"source"`
	Threshold     *int   `json:"threshold"`
	LowThreshold  *int   `json:"low_threshold"`
	HighThreshold *int   `json:"high_threshold"`

	OutputPath string `json:"output_path"`
	// Keep stores the distance buffer and returns its handle.
	Keep bool `json:"keep"`
}

type distanceTransformResult struct {
	*imaging.BufferResult
	DistanceType string `json:"distance_type"`
	MaskSize     string `json:"mask_size"`
	Handle       string `json:"handle,omitempty"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func (s *Server) handleDistanceTransform(args json.RawMessage) (interface{}, error) {
	var a distanceTransformArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if a.DistanceType == "" {
		a.DistanceType = morphology.DistL2.String()
	}
	dt, err := morphology.ParseDistanceType(a.DistanceType)
	if err != nil {
		return nil, err
	}
	if a.MaskSize == "" {
		a.MaskSize = "3"
	}
	mask, err := morphology.ParseMaskSize(a.MaskSize)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	var src *raster.Buffer
	switch a.Source {
	case "", sourceThreshold:
		t := intOr(a.Threshold, 128)
		if t < 0 || t > 255 {
			return nil, imgerr.New(imgerr.InvalidArgument, "server", "threshold must be within [0, 255], got %d", t)
		}
		src = imaging.Binarize(img, uint8(t))
	case sourceEdges:
		src, err = imaging.EdgeMask(img, intOr(a.LowThreshold, 50), intOr(a.HighThreshold, 150), s.exec())
		if err != nil {
			return nil, err
		}
	default:
		return nil, imgerr.New(imgerr.UnsupportedMode, "server", "unknown source %q", a.Source)
	}

	dist, err := morphology.DistanceTransform(src, dt, mask, s.exec())
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeBuffer(dist, a.OutputPath)
	if err != nil {
		return nil, err
	}
	res := &distanceTransformResult{
		BufferResult: enc,
		DistanceType: dt.String(),
		MaskSize:     mask.String(),
	}
	if a.Keep {
		res.Handle = s.store.Put(dist)
	}
	return res, nil
}

type structuringElementArgs struct {
	Shape   string `json:"shape"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	AnchorX *int   `json:"anchor_x"`
	AnchorY *int   `json:"anchor_y"`
}

type structuringElementResult struct {
	Shape  string  `json:"shape"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	Anchor [2]int  `json:"anchor"`
	Mask   [][]int `json:"mask"`
}

func (s *Server) handleStructuringElement(args json.RawMessage) (interface{}, error) {
	var a structuringElementArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	shape, err := morphology.ParseShape(a.Shape)
	if err != nil {
		return nil, err
	}
	anchor := image.Point{X: intOr(a.AnchorX, -1), Y: intOr(a.AnchorY, -1)}

	el, err := morphology.GetStructuringElement(shape, raster.Size{Rows: a.Rows, Cols: a.Cols}, anchor)
	if err != nil {
		return nil, err
	}
	return &structuringElementResult{
		Shape:  shape.String(),
		Rows:   a.Rows,
		Cols:   a.Cols,
		Anchor: [2]int{el.Anchor.X, el.Anchor.Y},
		Mask:   el.Rows(),
	}, nil
}

// === Text Handlers ===

type textSizeArgs struct {
	Text      string   `json:"text"`
	Font      string   `json:"font"`
	Scale     *float64 `json:"scale"`
	Thickness *int     `json:"thickness"`
}

type textSizeResult struct {
	textmetrics.Result
	Font string `json:"font"`
	// FontRecognized is false when Font was unknown and the default
	// family was measured instead.
	FontRecognized bool `json:"font_recognized"`
}

func (s *Server) handleTextSize(args json.RawMessage) (interface{}, error) {
	var a textSizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	family, ok := textmetrics.DefaultFamily, true
	if a.Font != "" {
		if family, ok = textmetrics.ParseFontFamily(a.Font); !ok {
			s.logger.Debugw("unknown font, using default", "font", a.Font, "default", family.String())
		}
	}
	scale := 1.0
	if a.Scale != nil {
		scale = *a.Scale
	}

	r, err := textmetrics.GetTextSize(a.Text, family, scale, intOr(a.Thickness, 1))
	if err != nil {
		return nil, err
	}
	return &textSizeResult{Result: r, Font: family.String(), FontRecognized: ok}, nil
}
