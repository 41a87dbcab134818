package lens

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
	"github.com/ironsheep/imgproc-mcp/internal/remap"
)

// Identity returns the 3x3 identity rotation.
func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// InitUndistortRectifyMap builds the coordinate map that resamples an image
// taken by model's camera into an ideal (distortion-free) camera with matrix
// newK, rotated by rotation.
//
// For every destination pixel (u, v) the map holds the source pixel
//
//	K · distort(dehomogenize(R⁻¹ · newK⁻¹ · (u, v, 1)))
//
// i.e. the location in the distorted source image whose light lands on (u, v)
// in the corrected image. This applies the forward distortion model rather
// than the iterative inverse used by UndistortPoints, since the map is
// indexed by the corrected pixel. A nil rotation means identity; a nil newK
// means model's own camera matrix.
//
// Errors:
//   - InvalidArgument: nil model, or rotation/newK not 3x3
//   - DimensionMismatch: non-positive output size
//   - UnsupportedMode: unknown map type
//   - ComputationError: newK·R is not invertible
func InitUndistortRectifyMap(model *DistortionModel, rotation, newK mat.Matrix, size raster.Size,
	mapType remap.MapType, opts ...raster.ExecOption,
) (remap.CoordinateMap, error) {
	const op = "lens.InitUndistortRectifyMap"
	if model == nil {
		return remap.CoordinateMap{}, imgerr.New(imgerr.InvalidArgument, op, "distortion model is required")
	}
	if !size.Valid() {
		return remap.CoordinateMap{}, imgerr.New(imgerr.DimensionMismatch, op,
			"invalid output size %dx%d", size.Rows, size.Cols)
	}
	if !mapType.Valid() {
		return remap.CoordinateMap{}, imgerr.New(imgerr.UnsupportedMode, op, "unsupported map type %d", int(mapType))
	}
	if rotation == nil {
		rotation = Identity()
	}
	if err := check3x3(op, "rotation", rotation); err != nil {
		return remap.CoordinateMap{}, err
	}
	if newK == nil {
		newK = model.k
	}
	if err := check3x3(op, "new camera matrix", newK); err != nil {
		return remap.CoordinateMap{}, err
	}

	var p mat.Dense
	p.Mul(newK, rotation)
	iR, err := invert(op, &p)
	if err != nil {
		return remap.CoordinateMap{}, err
	}
	var ir [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ir[i*3+j] = iR.At(i, j)
		}
	}

	xs := make([]float64, size.Rows*size.Cols)
	ys := make([]float64, size.Rows*size.Cols)
	err = raster.ParallelRows(size.Rows, func(start, end int) error {
		for v := start; v < end; v++ {
			fv := float64(v)
			for u := 0; u < size.Cols; u++ {
				fu := float64(u)
				x := ir[0]*fu + ir[1]*fv + ir[2]
				y := ir[3]*fu + ir[4]*fv + ir[5]
				w := ir[6]*fu + ir[7]*fv + ir[8]
				src := model.Project(model.Distort(r2.Point{X: x / w, Y: y / w}))
				xs[v*size.Cols+u] = src.X
				ys[v*size.Cols+u] = src.Y
			}
		}
		return nil
	}, opts...)
	if err != nil {
		return remap.CoordinateMap{}, imgerr.Wrap(imgerr.Unknown, op, err)
	}
	return remap.EncodeMap(xs, ys, size, mapType)
}
