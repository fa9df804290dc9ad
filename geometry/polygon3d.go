package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MaxPolygonComplexity bounds the O(n^3) fallback triangulation
const MaxPolygonComplexity = 250

/*
TriangulatePolygon3D triangulates a closed, possibly non-planar loop of points by minimum total area, in the manner
of Liepa's hole filling weight table. Triangles reference indices into points and keep the loop's winding, so a
loop given counter-clockwise about some normal produces triangles whose normals lean the same way.

A dihedral penalty keeps the fill from folding back on itself: every candidate triangle whose normal opposes the
loop's Newell normal is charged heavily, so those are only chosen when nothing else closes the loop.
*/
func TriangulatePolygon3D(points []r3.Vec) (tris [][3]int, err error) {
	var (
		n = len(points)
	)
	switch {
	case n < 3:
		err = fmt.Errorf("polygon needs at least 3 points, have %d", n)
		return
	case n == 3:
		tris = [][3]int{{0, 1, 2}}
		return
	case n > MaxPolygonComplexity:
		err = fmt.Errorf("polygon with %d points exceeds the fallback limit of %d", n, MaxPolygonComplexity)
		return
	}
	loopNormal := NewellNormal(points)
	weight := func(i, j, k int) float64 {
		a, b, c := points[i], points[j], points[k]
		cr := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		area := 0.5 * r3.Norm(cr)
		if r3.Dot(cr, loopNormal) < 0 {
			area += 1e3 * (area + 1)
		}
		return area
	}
	// w[i][j] is the best weight for the sub-polygon i..j, lambda[i][j] the apex that achieves it
	w := make([][]float64, n)
	lambda := make([][]int, n)
	for i := range w {
		w[i] = make([]float64, n)
		lambda[i] = make([]int, n)
		for j := range lambda[i] {
			lambda[i][j] = -1
		}
	}
	for i := 0; i < n-2; i++ {
		w[i][i+2] = weight(i, i+1, i+2)
		lambda[i][i+2] = i + 1
	}
	for span := 3; span < n; span++ {
		for i := 0; i+span < n; i++ {
			k := i + span
			best, bestM := math.Inf(1), -1
			for m := i + 1; m < k; m++ {
				val := w[i][m] + w[m][k] + weight(i, m, k)
				if val < best {
					best, bestM = val, m
				}
			}
			w[i][k] = best
			lambda[i][k] = bestM
		}
	}
	var (
		stack = [][2]int{{0, n - 1}}
	)
	for len(stack) > 0 {
		sec := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, k := sec[0], sec[1]
		if k-i < 2 {
			continue
		}
		m := lambda[i][k]
		if m < 0 {
			err = fmt.Errorf("no triangulation found for sub-polygon %d..%d", i, k)
			return
		}
		tris = append(tris, [3]int{i, m, k})
		stack = append(stack, [2]int{i, m}, [2]int{m, k})
	}
	if len(tris) != n-2 {
		err = fmt.Errorf("triangulation produced %d triangles for %d points", len(tris), n)
	}
	return
}
