package server

import (
	"encoding/json"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/imgproc-mcp/internal/imaging"
	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/lens"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
	"github.com/ironsheep/imgproc-mcp/internal/remap"
)

// matrix3x3 converts a row-major [[...],[...],[...]] argument. An absent
// argument yields a nil interface.
func matrix3x3(name string, rows [][]float64) (mat.Matrix, error) {
	if rows == nil {
		return nil, nil
	}
	if len(rows) != 3 {
		return nil, imgerr.New(imgerr.InvalidArgument, "server", "%s must have 3 rows, got %d", name, len(rows))
	}
	data := make([]float64, 0, 9)
	for i, r := range rows {
		if len(r) != 3 {
			return nil, imgerr.New(imgerr.InvalidArgument, "server", "%s row %d must have 3 entries, got %d", name, i, len(r))
		}
		data = append(data, r...)
	}
	return mat.NewDense(3, 3, data), nil
}

// cameraArgs are the calibration arguments shared by the lens tools.
type cameraArgs struct {
	CameraMatrix [][]float64 `json:"camera_matrix"`
	DistCoeffs   []float64   `json:"dist_coeffs"`
}

func (a cameraArgs) model() (*lens.DistortionModel, error) {
	if a.CameraMatrix == nil {
		return nil, imgerr.New(imgerr.InvalidArgument, "server", "camera_matrix is required")
	}
	k, err := matrix3x3("camera_matrix", a.CameraMatrix)
	if err != nil {
		return nil, err
	}
	return lens.NewDistortionModel(k, a.DistCoeffs)
}

// === Lens Correction Handlers ===

type imageUndistortArgs struct {
	Path string `json:"path"`
	cameraArgs
	OutputPath string `json:"output_path"`
}

func (s *Server) handleImageUndistort(args json.RawMessage) (interface{}, error) {
	var a imageUndistortArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	model, err := a.model()
	if err != nil {
		return nil, err
	}
	src, err := s.cache.LoadBuffer(a.Path, false)
	if err != nil {
		return nil, err
	}
	out, err := lens.Undistort(src, model, s.exec())
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out, a.OutputPath)
}

type rectifyMapArgs struct {
	cameraArgs
	Rotation        [][]float64 `json:"rotation"`
	NewCameraMatrix [][]float64 `json:"new_camera_matrix"`
	// Size is [rows, cols].
	Size    []int  `json:"size"`
	MapType string `json:"map_type"`
}

// mapResult describes a coordinate map kept in the buffer store.
type mapResult struct {
	Map1    string `json:"map1"`
	Map2    string `json:"map2,omitempty"`
	MapType string `json:"map_type"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
}

func (s *Server) storeMap(m remap.CoordinateMap) *mapResult {
	size := m.Size()
	return &mapResult{
		Map1:    s.store.Put(m.Map1()),
		Map2:    s.store.Put(m.Map2()),
		MapType: m.Type().String(),
		Rows:    size.Rows,
		Cols:    size.Cols,
	}
}

func (s *Server) handleInitUndistortRectifyMap(args json.RawMessage) (interface{}, error) {
	var a rectifyMapArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Size) != 2 {
		return nil, imgerr.New(imgerr.InvalidArgument, "server", "size must be [rows, cols], got %v", a.Size)
	}
	if a.MapType == "" {
		a.MapType = remap.MapFloat32.String()
	}
	mapType, err := remap.ParseMapType(a.MapType)
	if err != nil {
		return nil, err
	}
	model, err := a.model()
	if err != nil {
		return nil, err
	}
	rot, err := matrix3x3("rotation", a.Rotation)
	if err != nil {
		return nil, err
	}
	newK, err := matrix3x3("new_camera_matrix", a.NewCameraMatrix)
	if err != nil {
		return nil, err
	}

	size := raster.Size{Rows: a.Size[0], Cols: a.Size[1]}
	m, err := lens.InitUndistortRectifyMap(model, rot, newK, size, mapType, s.exec())
	if err != nil {
		return nil, err
	}
	res := s.storeMap(m)
	s.logger.Debugw("stored rectification map", "map1", res.Map1, "map2", res.Map2, "type", res.MapType)
	return res, nil
}

type undistortPointsArgs struct {
	cameraArgs
	// Points are [x, y] pixel coordinates.
	Points [][]float64 `json:"points"`
}

type undistortPointsResult struct {
	Points [][]float64 `json:"points"`
}

func (s *Server) handleUndistortPoints(args json.RawMessage) (interface{}, error) {
	var a undistortPointsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	model, err := a.model()
	if err != nil {
		return nil, err
	}
	pts := make([]r2.Point, len(a.Points))
	for i, p := range a.Points {
		if len(p) != 2 {
			return nil, imgerr.New(imgerr.InvalidArgument, "server", "point %d must be [x, y], got %v", i, p)
		}
		pts[i] = r2.Point{X: p[0], Y: p[1]}
	}

	out := model.UndistortPoints(pts)
	res := &undistortPointsResult{Points: make([][]float64, len(out))}
	for i, p := range out {
		res.Points[i] = []float64{p.X, p.Y}
	}
	return res, nil
}

// === Remapping Handlers ===

type imageRemapArgs struct {
	Path          string    `json:"path"`
	Map1          string    `json:"map1"`
	Map2          string    `json:"map2"`
	Interpolation string    `json:"interpolation"`
	BorderMode    string    `json:"border_mode"`
	BorderValue   []float64 `json:"border_value"`
	BorderColor   string    `json:"border_color"`
	OutputPath    string    `json:"output_path"`
}

type remapResult struct {
	*imaging.BufferResult
	BorderColor string `json:"border_color,omitempty"`
}

// loadMap rebuilds a coordinate map from stored handles.
func (s *Server) loadMap(h1, h2 string) (remap.CoordinateMap, error) {
	if h1 == "" {
		return remap.CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, "server", "map1 is required")
	}
	map1, err := s.store.Get(h1)
	if err != nil {
		return remap.CoordinateMap{}, err
	}
	map2, err := s.store.Get(h2)
	if err != nil {
		return remap.CoordinateMap{}, err
	}
	return remap.NewCoordinateMap(map1, map2)
}

func (s *Server) handleImageRemap(args json.RawMessage) (interface{}, error) {
	var a imageRemapArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath(a.Path); err != nil {
		return nil, err
	}
	if a.Interpolation == "" {
		a.Interpolation = remap.Linear.String()
	}
	interp, err := remap.ParseInterpolation(a.Interpolation)
	if err != nil {
		return nil, err
	}
	if a.BorderMode == "" {
		a.BorderMode = remap.BorderConstant.String()
	}
	mode, err := remap.ParseBorderMode(a.BorderMode)
	if err != nil {
		return nil, err
	}
	m, err := s.loadMap(a.Map1, a.Map2)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.LoadBuffer(a.Path, false)
	if err != nil {
		return nil, err
	}

	border := remap.Border{Mode: mode, Value: a.BorderValue}
	if a.BorderColor != "" {
		if border.Value, err = imaging.BorderValue(a.BorderColor, src.Channels()); err != nil {
			return nil, err
		}
	}

	out, err := remap.Remap(src, m, interp, border, s.exec())
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeBuffer(out, a.OutputPath)
	if err != nil {
		return nil, err
	}
	res := &remapResult{BufferResult: enc}
	if mode == remap.BorderConstant {
		res.BorderColor = imaging.HexColor(border.Value)
	}
	return res, nil
}

type convertMapsArgs struct {
	Map1    string `json:"map1"`
	Map2    string `json:"map2"`
	MapType string `json:"map_type"`
}

func (s *Server) handleConvertMaps(args json.RawMessage) (interface{}, error) {
	var a convertMapsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	typ, err := remap.ParseMapType(a.MapType)
	if err != nil {
		return nil, err
	}
	m, err := s.loadMap(a.Map1, a.Map2)
	if err != nil {
		return nil, err
	}
	converted, err := remap.ConvertMaps(m, typ)
	if err != nil {
		return nil, err
	}
	return s.storeMap(converted), nil
}
