package lens

import (
	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
	"github.com/ironsheep/imgproc-mcp/internal/remap"
)

// Undistort removes lens distortion from src, keeping its size and camera
// matrix. It is InitUndistortRectifyMap with identity rotation and newK = K
// over src's size, followed by a Linear remap with a zero constant border.
func Undistort(src *raster.Buffer, model *DistortionModel, opts ...raster.ExecOption) (*raster.Buffer, error) {
	if src == nil {
		return nil, imgerr.New(imgerr.InvalidArgument, "lens.Undistort", "source buffer is required")
	}
	m, err := InitUndistortRectifyMap(model, nil, nil, src.Size(), remap.MapFloat32, opts...)
	if err != nil {
		return nil, err
	}
	return remap.Remap(src, m, remap.Linear, remap.Constant(0), opts...)
}
