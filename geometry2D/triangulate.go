package geometry2D

import (
	"fmt"
	"math"
	"sort"
)

// constrainedDelaunay is provided by the Triangle library binding on cgo builds
var constrainedDelaunay func(pts [][2]float64) (tris [][3]int, ok bool)

// SignedArea is positive for counter-clockwise polygons
func SignedArea(pts [][2]float64) (area float64) {
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return 0.5 * area
}

func orient(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

func pointInTriangle(p, a, b, c [2]float64) bool {
	return orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0
}

/*
Triangulate triangulates a simple counter-clockwise polygon. Output triangles index into pts and are all
counter-clockwise. The Triangle library is used when it is linked in and returns a triangulation of the polygon
itself; otherwise the polygon is ear clipped and the diagonals are flipped towards a Delaunay triangulation.
*/
func Triangulate(pts [][2]float64) (tris [][3]int, err error) {
	if len(pts) < 3 {
		err = fmt.Errorf("polygon needs at least 3 points, have %d", len(pts))
		return
	}
	if SignedArea(pts) <= 0 {
		err = fmt.Errorf("polygon is not counter-clockwise, signed area = %g", SignedArea(pts))
		return
	}
	if constrainedDelaunay != nil {
		var ok bool
		if tris, ok = constrainedDelaunay(pts); ok {
			return
		}
	}
	if tris, err = EarClip(pts); err != nil {
		return
	}
	tris = Legalize(pts, tris)
	return
}

// EarClip triangulates a simple counter-clockwise polygon by repeatedly removing convex ears
func EarClip(pts [][2]float64) (tris [][3]int, err error) {
	var (
		n    = len(pts)
		poly = make([]int, n)
	)
	if n < 3 {
		err = fmt.Errorf("polygon needs at least 3 points, have %d", n)
		return
	}
	for i := range poly {
		poly[i] = i
	}
	isEar := func(i int, allowFlat bool) bool {
		m := len(poly)
		a, b, c := poly[(i+m-1)%m], poly[i], poly[(i+1)%m]
		o := orient(pts[a], pts[b], pts[c])
		if o < 0 || (o == 0 && !allowFlat) {
			return false
		}
		for _, q := range poly {
			if q == a || q == b || q == c {
				continue
			}
			if pts[q] == pts[a] || pts[q] == pts[b] || pts[q] == pts[c] {
				continue
			}
			if pointInTriangle(pts[q], pts[a], pts[b], pts[c]) {
				return false
			}
		}
		return true
	}
	for len(poly) > 3 {
		found := -1
		for _, allowFlat := range []bool{false, true} {
			for i := range poly {
				if isEar(i, allowFlat) {
					found = i
					break
				}
			}
			if found >= 0 {
				break
			}
		}
		if found < 0 {
			err = fmt.Errorf("no ear found with %d vertices remaining, polygon is likely self intersecting", len(poly))
			return
		}
		m := len(poly)
		tris = append(tris, [3]int{poly[(found+m-1)%m], poly[found], poly[(found+1)%m]})
		poly = append(poly[:found], poly[found+1:]...)
	}
	tris = append(tris, [3]int{poly[0], poly[1], poly[2]})
	return
}

func IsIllegalEdge(prX, prY, piX, piY, pjX, pjY, pkX, pkY float64) bool {
	/*
		pr is a new point for candidate triangle pi-pj-pr
		pi-pj is a shared edge between pi-pj-pk and pi-pj-pr
		if pr lies inside the circle defined by pi-pj-pk:
			- The edge pi-pj should be swapped with pr-pk to make two new triangles:
				pi-pr-pk and pj-pk-pr
	*/
	inCircle := func(ax, ay, bx, by, cx, cy, dx, dy float64) (inside bool) {
		// Calculate handedness, counter-clockwise is (positive) and clockwise is (negative)
		signBit := math.Signbit((bx-ax)*(cy-ay) - (cx-ax)*(by-ay))
		ax_ := ax - dx
		ay_ := ay - dy
		bx_ := bx - dx
		by_ := by - dy
		cx_ := cx - dx
		cy_ := cy - dy
		det := (ax_*ax_+ay_*ay_)*(bx_*cy_-cx_*by_) -
			(bx_*bx_+by_*by_)*(ax_*cy_-cx_*ay_) +
			(cx_*cx_+cy_*cy_)*(ax_*by_-bx_*ay_)
		if signBit {
			return det < 0
		} else {
			return det > 0
		}
	}
	return inCircle(piX, piY, pjX, pjY, pkX, pkY, prX, prY)
}

/*
Legalize flips interior diagonals of a triangulated polygon until no triangle pair violates the in-circle test.
Polygon boundary edges are never shared by two triangles and so are never flipped.
*/
func Legalize(pts [][2]float64, tris [][3]int) [][3]int {
	type side struct {
		tri, pos int // pos is the local index of the edge start
	}
	var (
		maxPasses = len(tris)*len(tris) + 1
	)
	for pass := 0; pass < maxPasses; pass++ {
		edges := make(map[[2]int][]side)
		for t, tri := range tris {
			for j := 0; j < 3; j++ {
				a, b := tri[j], tri[(j+1)%3]
				if a > b {
					a, b = b, a
				}
				edges[[2]int{a, b}] = append(edges[[2]int{a, b}], side{t, j})
			}
		}
		keys := make([][2]int, 0, len(edges))
		for k := range edges {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i][0] != keys[j][0] {
				return keys[i][0] < keys[j][0]
			}
			return keys[i][1] < keys[j][1]
		})
		flipped := false
		for _, k := range keys {
			sides := edges[k]
			if len(sides) != 2 {
				continue
			}
			t1, t2 := tris[sides[0].tri], tris[sides[1].tri]
			a, b, c := t1[sides[0].pos], t1[(sides[0].pos+1)%3], t1[(sides[0].pos+2)%3]
			d := t2[(sides[1].pos+2)%3]
			if !IsIllegalEdge(pts[d][0], pts[d][1], pts[a][0], pts[a][1], pts[b][0], pts[b][1], pts[c][0], pts[c][1]) {
				continue
			}
			// The quad a-d-b-c must be strictly convex for the flip to keep both triangles valid
			if orient(pts[a], pts[d], pts[c]) <= 0 || orient(pts[d], pts[b], pts[c]) <= 0 {
				continue
			}
			tris[sides[0].tri] = [3]int{a, d, c}
			tris[sides[1].tri] = [3]int{d, b, c}
			flipped = true
			break
		}
		if !flipped {
			break
		}
	}
	return tris
}
