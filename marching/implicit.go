package marching

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImplicitFunction is a scalar field that is negative inside the solid and positive outside
type ImplicitFunction struct {
	F   func(p r3.Vec) float64
	Box r3.Box
}

func (f ImplicitFunction) Bounds() r3.Box { return f.Box }

// Sample is not valid where the function is NaN
func (f ImplicitFunction) Sample(p r3.Vec) (v float64, ok bool) {
	v = f.F(p)
	return v, !math.IsNaN(v)
}

func (f ImplicitFunction) Inside(v float64) bool { return v < 0 }

// Offset interpolates linearly to the zero of the function
func (f ImplicitFunction) Offset(from, to float64, p0, p1 r3.Vec) float64 {
	return linearZero(from, to)
}

func linearZero(from, to float64) float64 {
	if from == to {
		return 0.5
	}
	return from / (from - to)
}

// SphereFunction is the signed distance to a sphere
func SphereFunction(center r3.Vec, radius float64) ImplicitFunction {
	r := r3.Vec{X: radius, Y: radius, Z: radius}
	return ImplicitFunction{
		F:   func(p r3.Vec) float64 { return r3.Norm(r3.Sub(p, center)) - radius },
		Box: r3.Box{Min: r3.Sub(center, r), Max: r3.Add(center, r)},
	}
}

// FromSDF3 samples an sdfx solid, which follows the same negative inside convention
func FromSDF3(s sdf.SDF3) ImplicitFunction {
	bb := s.BoundingBox()
	return ImplicitFunction{
		F: func(p r3.Vec) float64 {
			return s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
		},
		Box: r3.Box{
			Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
			Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
		},
	}
}

// NewImplicitMarcher marches an implicit function at the given step with one step of margin
func NewImplicitMarcher(f ImplicitFunction, step float64) *MarchingCubes[ImplicitFunction, float64] {
	return New[ImplicitFunction, float64](f, f, step, step)
}

// NewSDFMarcher marches an sdfx solid, keeping the solid itself for provenance
func NewSDFMarcher(s sdf.SDF3, step float64) *MarchingCubes[sdf.SDF3, float64] {
	return New[sdf.SDF3, float64](s, FromSDF3(s), step, step)
}
