//go:build cgo
// +build cgo

package geometry2D

import (
	"math"

	"github.com/pradeep-pyro/triangle"
)

func init() {
	constrainedDelaunay = triangleCDT
}

// triangleCDT runs Shewchuk's Triangle on the polygon as a PSLG, accepting only results without Steiner points
func triangleCDT(pts [][2]float64) (tris [][3]int, ok bool) {
	var (
		n    = len(pts)
		segs = make([][2]int32, n)
	)
	for i := range pts {
		segs[i] = [2]int32{int32(i), int32((i + 1) % n)}
	}
	verts, faces := triangle.ConstrainedDelaunay(pts, segs, [][2]float64{outsidePoint(pts)})
	if len(verts) != n || len(faces) != n-2 {
		return nil, false
	}
	for i := range verts {
		if verts[i] != pts[i] {
			return nil, false
		}
	}
	tris = make([][3]int, len(faces))
	for i, f := range faces {
		tri := [3]int{int(f[0]), int(f[1]), int(f[2])}
		o := orient(pts[tri[0]], pts[tri[1]], pts[tri[2]])
		switch {
		case o == 0:
			return nil, false
		case o < 0:
			tri[1], tri[2] = tri[2], tri[1]
		}
		tris[i] = tri
	}
	return tris, true
}

// outsidePoint is a point beyond the bounding box of pts, the wrapper needs at least one hole and Triangle skips
// holes outside the mesh
func outsidePoint(pts [][2]float64) (p [2]float64) {
	lo, hi := pts[0], pts[0]
	for _, q := range pts[1:] {
		for d := 0; d < 2; d++ {
			lo[d], hi[d] = math.Min(lo[d], q[d]), math.Max(hi[d], q[d])
		}
	}
	for d := 0; d < 2; d++ {
		p[d] = hi[d] + (hi[d] - lo[d]) + 1
	}
	return
}
