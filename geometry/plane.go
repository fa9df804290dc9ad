package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is stored as a unit normal and the signed distance of the plane from the origin
type Plane struct {
	Normal       r3.Vec
	DistToOrigin float64
	Origin       r3.Vec // A point on the plane, the centroid for fitted planes
}

func NewPlane(normal, point r3.Vec) (p Plane) {
	p.Normal = r3.Unit(normal)
	p.Origin = point
	p.DistToOrigin = r3.Dot(p.Normal, point)
	return
}

/*
FitPlane finds the least squares plane through the points. The normal is the eigenvector of the smallest eigenvalue
of the covariance of the points about their centroid. The orientation of the normal is made to agree with the
Newell normal of the points taken as a polygon, so that a counter-clockwise loop yields an upward normal.
*/
func FitPlane(points []r3.Vec) (p Plane, err error) {
	if len(points) < 3 {
		err = fmt.Errorf("need at least 3 points to fit a plane, have %d", len(points))
		return
	}
	c := Centroid(points)
	var cov [6]float64 // xx, xy, xz, yy, yz, zz
	for _, pt := range points {
		d := r3.Sub(pt, c)
		cov[0] += d.X * d.X
		cov[1] += d.X * d.Y
		cov[2] += d.X * d.Z
		cov[3] += d.Y * d.Y
		cov[4] += d.Y * d.Z
		cov[5] += d.Z * d.Z
	}
	sym := mat.NewSymDense(3, []float64{
		cov[0], cov[1], cov[2],
		cov[1], cov[3], cov[4],
		cov[2], cov[4], cov[5],
	})
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		err = fmt.Errorf("eigen decomposition of point covariance failed")
		return
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	// Eigenvalues are returned in ascending order, the first column is the plane normal
	n := r3.Vec{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}
	if r3.Dot(n, NewellNormal(points)) < 0 {
		n = r3.Scale(-1, n)
	}
	p = NewPlane(n, c)
	return
}

func (p Plane) Distance(pt r3.Vec) float64 {
	return r3.Dot(p.Normal, pt) - p.DistToOrigin
}

func (p Plane) MaxDeviation(points []r3.Vec) (dev float64) {
	for _, pt := range points {
		dev = math.Max(dev, math.Abs(p.Distance(pt)))
	}
	return
}

// Basis returns two unit vectors that, with the normal, form a right handed frame
func (p Plane) Basis() (u, v r3.Vec) {
	n := p.Normal
	// Pick the world axis least aligned with the normal as a seed
	seed := r3.Vec{X: 1}
	if math.Abs(n.X) > math.Abs(n.Y) && math.Abs(n.X) > math.Abs(n.Z) {
		seed = r3.Vec{Y: 1}
	}
	u = r3.Unit(r3.Cross(seed, n))
	v = r3.Cross(n, u)
	return
}

// Project maps a point into the 2D frame of the plane, counter-clockwise seen from the normal side
func (p Plane) Project(pt r3.Vec) [2]float64 {
	u, v := p.Basis()
	d := r3.Sub(pt, p.Origin)
	return [2]float64{r3.Dot(d, u), r3.Dot(d, v)}
}

func (p Plane) ProjectAll(points []r3.Vec) (pts [][2]float64) {
	u, v := p.Basis()
	pts = make([][2]float64, len(points))
	for i, pt := range points {
		d := r3.Sub(pt, p.Origin)
		pts[i] = [2]float64{r3.Dot(d, u), r3.Dot(d, v)}
	}
	return
}
