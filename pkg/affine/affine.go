// pkg/affine/affine.go - Six-coefficient affine mapping between pixel and geographic space
package affine

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the threshold below which rotation terms are treated as zero
// and a determinant is treated as singular.
const Epsilon = 1e-10

// ErrSingularTransform is returned when inverting a transform whose
// determinant is (near) zero.
var ErrSingularTransform = errors.New("singular transform")

// Transform follows the GDAL geotransform convention:
//
//	geoX = X0 + px*A + py*B
//	geoY = Y0 + px*C + py*D
//
// The zero value is not useful; build one with New, FromGDAL or Identity.
type Transform struct {
	X0, A, B float64
	Y0, C, D float64
}

// New creates a transform from coefficients in GDAL order (X0, A, B, Y0, C, D).
func New(x0, a, b, y0, c, d float64) Transform {
	return Transform{X0: x0, A: a, B: b, Y0: y0, C: c, D: d}
}

// FromGDAL creates a transform from a GDAL-style six element array.
func FromGDAL(gt [6]float64) Transform {
	return New(gt[0], gt[1], gt[2], gt[3], gt[4], gt[5])
}

// Identity is the default transform used for rasters without a stored
// geotransform: unit pixels with north-up orientation.
func Identity() Transform {
	return New(0, 1, 0, 0, 0, -1)
}

// GDAL returns the coefficients in GDAL order.
func (t Transform) GDAL() [6]float64 {
	return [6]float64{t.X0, t.A, t.B, t.Y0, t.C, t.D}
}

// Determinant of the linear part.
func (t Transform) Determinant() float64 {
	return t.A*t.D - t.B*t.C
}

// IsAxisAligned reports whether both rotation terms are negligible.
func (t Transform) IsAxisAligned() bool {
	return math.Abs(t.B) < Epsilon && math.Abs(t.C) < Epsilon
}

// IsFinite reports whether every coefficient is a finite number.
func (t Transform) IsFinite() bool {
	for _, v := range t.GDAL() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsInvertible reports whether Invert can succeed.
func (t Transform) IsInvertible() bool {
	if !t.IsFinite() {
		return false
	}
	if t.IsAxisAligned() {
		return math.Abs(t.A) >= Epsilon && math.Abs(t.D) >= Epsilon
	}
	return math.Abs(t.Determinant()) >= Epsilon
}

// Apply maps pixel coordinates to geographic coordinates.
func (t Transform) Apply(px, py float64) (float64, float64) {
	return t.X0 + px*t.A + py*t.B, t.Y0 + px*t.C + py*t.D
}

// Invert maps geographic coordinates back to pixel coordinates.
func (t Transform) Invert(geoX, geoY float64) (float64, float64, error) {
	if !t.IsFinite() {
		return 0, 0, fmt.Errorf("%w: non-finite coefficients %s", ErrSingularTransform, t)
	}
	dx := geoX - t.X0
	dy := geoY - t.Y0

	if t.IsAxisAligned() {
		// An axis-aligned transform with a zero scale is singular too;
		// dividing would yield Inf/NaN rather than a usable pixel.
		if math.Abs(t.A) < Epsilon || math.Abs(t.D) < Epsilon {
			return 0, 0, fmt.Errorf("%w: zero pixel scale (A=%g, D=%g)", ErrSingularTransform, t.A, t.D)
		}
		return dx / t.A, dy / t.D, nil
	}

	det := t.Determinant()
	if math.Abs(det) < Epsilon {
		return 0, 0, fmt.Errorf("%w: determinant %g", ErrSingularTransform, det)
	}

	px := (t.D*dx - t.B*dy) / det
	py := (t.A*dy - t.C*dx) / det
	return px, py, nil
}

// String returns the coefficients in GDAL order.
func (t Transform) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g, %g, %g)", t.X0, t.A, t.B, t.Y0, t.C, t.D)
}
