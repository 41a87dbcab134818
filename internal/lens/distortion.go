package lens

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
)

const (
	// undistortIterations is the fixed refinement count of the inverse model.
	undistortIterations = 5
	// detTolerance is the smallest |det| accepted for an invertible matrix.
	detTolerance = 1e-12
	// unitTolerance bounds the deviation of a camera matrix's last row from (0, 0, 1).
	unitTolerance = 1e-9
)

// Coefficients holds the radial (K1..K6) and tangential (P1, P2) distortion
// coefficients. K4..K6 form the denominator of the rational model.
type Coefficients struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
	K5 float64 `json:"k5"`
	K6 float64 `json:"k6"`
}

// ParseCoefficients reads the ordered sequence (k1, k2, p1, p2[, k3[, k4, k5, k6]]).
// Lengths 0, 4, 5 and 8 are accepted; missing trailing values are zero.
func ParseCoefficients(vals []float64) (Coefficients, error) {
	switch len(vals) {
	case 0, 4, 5, 8:
	default:
		return Coefficients{}, imgerr.New(imgerr.InvalidArgument, "lens.ParseCoefficients",
			"expected 4, 5 or 8 distortion coefficients, got %d", len(vals))
	}
	var full [8]float64
	copy(full[:], vals)
	return Coefficients{
		K1: full[0], K2: full[1], P1: full[2], P2: full[3],
		K3: full[4], K4: full[5], K5: full[6], K6: full[7],
	}, nil
}

// Slice returns the coefficients in their canonical 8-element order.
func (c Coefficients) Slice() []float64 {
	return []float64{c.K1, c.K2, c.P1, c.P2, c.K3, c.K4, c.K5, c.K6}
}

// DistortionModel is an immutable camera matrix plus distortion coefficients.
type DistortionModel struct {
	k      *mat.Dense
	kInv   *mat.Dense
	coeffs Coefficients
}

// NewDistortionModel validates the camera matrix k and the coefficient
// sequence and returns the model.
//
// k must be 3x3 with last row (0, 0, 1). A singular k yields ComputationError.
func NewDistortionModel(k mat.Matrix, coeffs []float64) (*DistortionModel, error) {
	const op = "lens.NewDistortionModel"
	if err := checkCameraMatrix(op, k); err != nil {
		return nil, err
	}
	c, err := ParseCoefficients(coeffs)
	if err != nil {
		return nil, err
	}
	kInv, err := invert(op, k)
	if err != nil {
		return nil, err
	}
	return &DistortionModel{k: mat.DenseCopyOf(k), kInv: kInv, coeffs: c}, nil
}

// CameraMatrix returns a copy of the camera matrix.
func (m *DistortionModel) CameraMatrix() *mat.Dense { return mat.DenseCopyOf(m.k) }

// Coefficients returns the distortion coefficients.
func (m *DistortionModel) Coefficients() Coefficients { return m.coeffs }

// Distort applies the forward model to a normalized point.
//
//	r² = x² + y²
//	s  = (1 + k1·r² + k2·r⁴ + k3·r⁶) / (1 + k4·r² + k5·r⁴ + k6·r⁶)
//	x' = x·s + 2·p1·x·y + p2·(r² + 2x²)
//	y' = y·s + p1·(r² + 2y²) + 2·p2·x·y
func (m *DistortionModel) Distort(p r2.Point) r2.Point {
	c := m.coeffs
	x, y := p.X, p.Y
	rsq := x*x + y*y
	s := (1 + ((c.K3*rsq+c.K2)*rsq+c.K1)*rsq) / (1 + ((c.K6*rsq+c.K5)*rsq+c.K4)*rsq)
	return r2Point(
		x*s+2*c.P1*x*y+c.P2*(rsq+2*x*x),
		y*s+c.P1*(rsq+2*y*y)+2*c.P2*x*y,
	)
}

// Undistort inverts Distort for a normalized point by fixed-point iteration:
// starting from the distorted point, each step re-applies the model to the
// current guess and corrects by the residual. The iteration stops early if
// the model degenerates (zero or non-finite scale).
func (m *DistortionModel) Undistort(p r2.Point) r2.Point {
	c := m.coeffs
	x0, y0 := p.X, p.Y
	x, y := x0, y0
	for i := 0; i < undistortIterations; i++ {
		rsq := x*x + y*y
		num := 1 + ((c.K3*rsq+c.K2)*rsq+c.K1)*rsq
		inv := (1 + ((c.K6*rsq+c.K5)*rsq+c.K4)*rsq) / num
		if num == 0 || math.IsNaN(inv) || math.IsInf(inv, 0) {
			break
		}
		dx := 2*c.P1*x*y + c.P2*(rsq+2*x*x)
		dy := c.P1*(rsq+2*y*y) + 2*c.P2*x*y
		x = (x0 - dx) * inv
		y = (y0 - dy) * inv
	}
	return r2Point(x, y)
}

// Normalize maps a pixel coordinate through the inverse camera matrix.
func (m *DistortionModel) Normalize(p r2.Point) r2.Point {
	return applyHomogeneous(m.kInv, p)
}

// Project maps a normalized point to pixel coordinates with the camera matrix.
func (m *DistortionModel) Project(p r2.Point) r2.Point {
	return applyHomogeneous(m.k, p)
}

// UndistortPoints maps distorted pixel coordinates to the pixel coordinates
// they would have under an ideal pinhole camera with the same matrix.
func (m *DistortionModel) UndistortPoints(pts []r2.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = m.Project(m.Undistort(m.Normalize(p)))
	}
	return out
}

// CameraMatrix builds the upper-triangular camera matrix
//
//	| fx  0 cx |
//	|  0 fy cy |
//	|  0  0  1 |
func CameraMatrix(fx, fy, cx, cy float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{fx, 0, cx, 0, fy, cy, 0, 0, 1})
}

func checkCameraMatrix(op string, k mat.Matrix) error {
	if k == nil {
		return imgerr.New(imgerr.InvalidArgument, op, "camera matrix is required")
	}
	if err := check3x3(op, "camera matrix", k); err != nil {
		return err
	}
	if math.Abs(k.At(2, 0)) > unitTolerance || math.Abs(k.At(2, 1)) > unitTolerance ||
		math.Abs(k.At(2, 2)-1) > unitTolerance {
		return imgerr.New(imgerr.InvalidArgument, op,
			"camera matrix last row must be (0, 0, 1), got (%g, %g, %g)", k.At(2, 0), k.At(2, 1), k.At(2, 2))
	}
	return nil
}

func check3x3(op, name string, m mat.Matrix) error {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return imgerr.New(imgerr.InvalidArgument, op, "%s must be 3x3, got %dx%d", name, r, c)
	}
	return nil
}

// invert returns the inverse of a 3x3 matrix, failing with ComputationError
// when it is singular.
func invert(op string, a mat.Matrix) (*mat.Dense, error) {
	det := mat.Det(a)
	if math.Abs(det) < detTolerance || math.IsNaN(det) {
		return nil, imgerr.New(imgerr.ComputationError, op, "matrix is not invertible (det=%g)", det)
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, imgerr.Wrap(imgerr.ComputationError, op, err)
	}
	return &inv, nil
}

func applyHomogeneous(h *mat.Dense, p r2.Point) r2.Point {
	x := h.At(0, 0)*p.X + h.At(0, 1)*p.Y + h.At(0, 2)
	y := h.At(1, 0)*p.X + h.At(1, 1)*p.Y + h.At(1, 2)
	w := h.At(2, 0)*p.X + h.At(2, 1)*p.Y + h.At(2, 2)
	if w == 0 {
		return r2Point(math.Inf(1), math.Inf(1))
	}
	return r2Point(x/w, y/w)
}

func r2Point(x, y float64) r2.Point { return r2.Point{X: x, Y: y} }
