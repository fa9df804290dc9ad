package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// BaseTolerance is the smallest distance treated as geometrically meaningful
	BaseTolerance = 1.0e-8
	// ToleranceExpansionFactor grows the vertex-merge tolerance during repair
	ToleranceExpansionFactor = 1.78
)

func IsNegligible(x, tol float64) bool {
	return math.Abs(x) <= tol
}

func IsPracticallySame(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// IsSamePoint compares two positions within a Euclidean tolerance
func IsSamePoint(a, b r3.Vec, tol float64) bool {
	return r3.Norm2(r3.Sub(a, b)) <= tol*tol
}

func IsNull(v r3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) || (v.X == 0 && v.Y == 0 && v.Z == 0)
}

// DefaultVertexTolerance scales the base tolerance by the size of the model
func DefaultVertexTolerance(bounds r3.Box) float64 {
	diag := r3.Norm(bounds.Size())
	tol := diag * BaseTolerance
	if tol < BaseTolerance || math.IsNaN(tol) {
		tol = BaseTolerance
	}
	return tol
}

// BoundsOf returns the axis aligned box around the points, the empty box for no points
func BoundsOf(points []r3.Vec) (b r3.Box) {
	if len(points) == 0 {
		return
	}
	b.Min, b.Max = points[0], points[0]
	for _, p := range points[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	}
	return
}

func Centroid(points []r3.Vec) (c r3.Vec) {
	if len(points) == 0 {
		return
	}
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(points)), c)
}

/*
NewellNormal computes the (unnormalized) normal of a closed polygon, the length of which is twice the polygon area.
It works for triangles and for non-planar polygons, where it gives the normal of the best fit projection.
*/
func NewellNormal(points []r3.Vec) (n r3.Vec) {
	for i, cur := range points {
		next := points[(i+1)%len(points)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return
}

func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// ClosestPointOnSegment clamps the projection of p onto the segment a-b
func ClosestPointOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r3.Add(a, r3.Scale(t, ab))
}

func DistanceToSegment(p, a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, ClosestPointOnSegment(p, a, b)))
}

// SafeCos is r3.Cos guarded against zero length inputs, which return 0
func SafeCos(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	c := r3.Dot(a, b) / (na * nb)
	return math.Max(-1, math.Min(1, c))
}

// RoundToDecimals snaps every coordinate to the given number of decimal places
func RoundToDecimals(v r3.Vec, decimals int) r3.Vec {
	scale := math.Pow(10, float64(decimals))
	return r3.Vec{
		X: math.Round(v.X*scale) / scale,
		Y: math.Round(v.Y*scale) / scale,
		Z: math.Round(v.Z*scale) / scale,
	}
}

// DecimalsForTolerance is the number of decimal places resolved by a tolerance
func DecimalsForTolerance(tol float64) int {
	if tol <= 0 {
		return 15
	}
	d := int(math.Ceil(-math.Log10(tol)))
	if d > 15 {
		d = 15
	}
	return d
}
