package mesh

import (
	"fmt"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/geometry2D"
	"github.com/notargets/gotess/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlanarityTolerance is the largest deviation from the fitted plane, relative to the loop size, of a planar hole
const PlanarityTolerance = 1.0e-3

// patchHoles closes every loop of single sided edges it can triangulate
func (m *Mesh) patchHoles() (holes, faces int) {
	var border []int
	for ei, e := range m.Edges {
		if e.IsSingleSided() {
			border = append(border, ei)
		}
	}
	if len(border) == 0 {
		return
	}
	closed, open := BuildLoops(m, border)
	for _, loop := range closed {
		if n := m.patchLoop(loop); n > 0 {
			holes++
			faces += n
		}
	}
	m.Errors.HolesPatched += holes
	m.Errors.FacesAddedByPatching += faces
	m.logger.Debug("patched holes", "loops", len(closed), "openSegments", len(open),
		"patched", holes, "faces", faces)
	return
}

/*
patchLoop triangulates one closed loop of single sided edges, returning the number of faces added. The patch is
wound against the faces already owning the loop's edges so that it closes them up. Three edges make one face, a
planar loop is triangulated in its plane and anything else falls back to the 3D triangulator.
*/
func (m *Mesh) patchLoop(loop *EdgePath) (added int) {
	if loop.Len() < 3 {
		return
	}
	// The owners walk their edges From->To, so the patch must mostly walk them backward
	var forward int
	for _, pe := range loop.Entries {
		if pe.Forward {
			forward++
		}
	}
	if 2*forward > loop.Len() {
		loop.Reverse()
	}
	var (
		verts = loop.Vertices(m)
		pts   = m.positions(verts)
		tris  [][3]int
		err   error
	)
	switch {
	case len(verts) == 3:
		tris = [][3]int{{0, 1, 2}}
	default:
		if tris, err = triangulatePlanar(pts); err != nil {
			m.logger.Debug("planar triangulation failed", "points", len(pts), "error", err)
			if tris, err = geometry.TriangulatePolygon3D(pts); err != nil {
				m.logger.Info("hole left open", "points", len(pts), "error", err)
				return
			}
		}
	}
	var (
		loopEdges = make(map[types.EdgeKey]int, loop.Len())
		internal  = make(map[types.EdgeKey]int)
		paint     = m.Faces[m.Edges[loop.Entries[0].Edge].OwnedFace].Color
	)
	for _, pe := range loop.Entries {
		loopEdges[m.Edges[pe.Edge].Checksum] = pe.Edge
	}
	for _, tri := range tris {
		fi := m.AddFace([]int{verts[tri[0]], verts[tri[1]], verts[tri[2]]})
		m.Faces[fi].Color = paint
		f := m.Faces[fi]
		for slot := 0; slot < 3; slot++ {
			var (
				a, b = f.Vertices[slot], f.Vertices[(slot+1)%3]
				key  = types.NewEdgeKey([2]int{a, b})
			)
			if ei, found := loopEdges[key]; found && m.Edges[ei].IsSingleSided() {
				m.linkEdge(fi, slot, ei)
			} else if ei, found := internal[key]; found {
				m.linkEdge(fi, slot, ei)
			} else {
				ei = m.appendEdge(NewEdge(a, b))
				internal[key] = ei
				m.linkEdge(fi, slot, ei)
			}
		}
		added++
	}
	return
}

/*
triangulatePlanar triangulates the loop in its best fit plane when it is flat enough, returning triangles that keep
the loop's winding.
*/
func triangulatePlanar(pts []r3.Vec) (tris [][3]int, err error) {
	var (
		plane geometry.Plane
	)
	if plane, err = geometry.FitPlane(pts); err != nil {
		return
	}
	size := r3.Norm(geometry.BoundsOf(pts).Size())
	if dev := plane.MaxDeviation(pts); dev > PlanarityTolerance*size {
		err = fmt.Errorf("loop deviates %g from its plane, limit %g", dev, PlanarityTolerance*size)
		return
	}
	var (
		flat     = plane.ProjectAll(pts)
		n        = len(flat)
		reversed = geometry2D.SignedArea(flat) < 0
	)
	if reversed {
		for i := 0; i < n/2; i++ {
			flat[i], flat[n-1-i] = flat[n-1-i], flat[i]
		}
	}
	if tris, err = geometry2D.Triangulate(flat); err != nil {
		return
	}
	if reversed {
		for i, tri := range tris {
			tris[i] = [3]int{n - 1 - tri[0], n - 1 - tri[2], n - 1 - tri[1]}
		}
	}
	return
}
