package mesh

import (
	"image/color"
	"math"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// CurvatureType classifies the fold across an edge shared by two faces
type CurvatureType uint8

const (
	Undefined CurvatureType = iota
	Convex
	Concave
	SaddleOrFlat
)

func (c CurvatureType) String() string {
	return [...]string{"Undefined", "Convex", "Concave", "SaddleOrFlat"}[c]
}

// Vertex is a mesh position with back references to the edges and faces using it
type Vertex struct {
	Position    r3.Vec
	IndexInList int
	Edges       []int // Incident edges
	Faces       []int // Incident faces
}

/*
Edge joins two vertices and the (at most) two faces on either side of it. OwnedFace walks the edge From->To,
OtherFace walks it To->From. A value of -1 means the slot is empty: an edge with OtherFace == -1 is single sided.
*/
type Edge struct {
	From, To    int
	OwnedFace   int
	OtherFace   int
	IndexInList int
	Checksum    types.EdgeKey
	Curvature   CurvatureType

	length        float64
	vector        r3.Vec
	validGeometry bool
	internalAngle float64
	validAngle    bool
}

// NewEdge panics when both ends are the same vertex
func NewEdge(from, to int) *Edge {
	if from == to {
		panic("edge from a vertex to itself")
	}
	return &Edge{
		From:        from,
		To:          to,
		OwnedFace:   -1,
		OtherFace:   -1,
		IndexInList: -1,
		Checksum:    types.NewEdgeKey([2]int{from, to}),
	}
}

// Update invalidates the cached length, vector and internal angle
func (e *Edge) Update() {
	e.validGeometry, e.validAngle = false, false
}

// IsSingleSided reports whether the edge has only one adjacent face
func (e *Edge) IsSingleSided() bool {
	return e.OwnedFace < 0 || e.OtherFace < 0
}

/*
Face is a closed ring of vertex indices, a triangle in all but the legacy polygon case. Edges is aligned with
Vertices: Edges[i] joins Vertices[i] and Vertices[i+1], -1 until the edge is assigned.
*/
type Face struct {
	Vertices    []int
	Edges       []int
	IndexInList int
	Color       color.RGBA
	Primitive   PrimitiveSurface

	normal        r3.Vec
	area          float64
	center        r3.Vec
	validGeometry bool
	adoptedNormal bool
}

func newFace(verts []int) *Face {
	f := &Face{
		Vertices:    verts,
		Edges:       make([]int, len(verts)),
		IndexInList: -1,
	}
	for i := range f.Edges {
		f.Edges[i] = -1
	}
	return f
}

// Update invalidates the cached normal, area and center, including a normal adopted from neighbors
func (f *Face) Update() {
	f.validGeometry, f.adoptedNormal = false, false
}

// slotOf returns the position i where the face walks a->b as Vertices[i]->Vertices[i+1], or -1
func (f *Face) slotOf(a, b int) int {
	n := len(f.Vertices)
	for i, v := range f.Vertices {
		if v == a && f.Vertices[(i+1)%n] == b {
			return i
		}
	}
	return -1
}

func (f *Face) hasVertex(v int) bool {
	for _, fv := range f.Vertices {
		if fv == v {
			return true
		}
	}
	return false
}

func (f *Face) isCollapsed() bool {
	for i := 0; i < len(f.Vertices); i++ {
		for j := i + 1; j < len(f.Vertices); j++ {
			if f.Vertices[i] == f.Vertices[j] {
				return true
			}
		}
	}
	return false
}

func (m *Mesh) faceGeometry(fi int) *Face {
	f := m.Faces[fi]
	if f.validGeometry {
		return f
	}
	pts := m.positions(f.Vertices)
	n := geometry.NewellNormal(pts)
	f.area = 0.5 * r3.Norm(n)
	if !f.adoptedNormal {
		if f.area <= m.tolerance*m.tolerance {
			f.normal = r3.Vec{}
		} else {
			f.normal = r3.Unit(n)
		}
	}
	f.center = geometry.Centroid(pts)
	f.validGeometry = true
	return f
}

// FaceNormal is the unit outward normal, the zero vector for a degenerate face that has not adopted one
func (m *Mesh) FaceNormal(fi int) r3.Vec { return m.faceGeometry(fi).normal }

func (m *Mesh) FaceArea(fi int) float64 { return m.faceGeometry(fi).area }

func (m *Mesh) FaceCenter(fi int) r3.Vec { return m.faceGeometry(fi).center }

// IsDegenerate is true for a face collapsed to a line or a point
func (m *Mesh) IsDegenerate(fi int) bool {
	return m.FaceArea(fi) <= m.tolerance*m.tolerance
}

func (m *Mesh) edgeGeometry(ei int) *Edge {
	e := m.Edges[ei]
	if !e.validGeometry {
		e.vector = r3.Sub(m.Vertices[e.To].Position, m.Vertices[e.From].Position)
		e.length = r3.Norm(e.vector)
		e.validGeometry = true
	}
	return e
}

func (m *Mesh) EdgeLength(ei int) float64 { return m.edgeGeometry(ei).length }

// EdgeVector points From->To
func (m *Mesh) EdgeVector(ei int) r3.Vec { return m.edgeGeometry(ei).vector }

/*
EdgeInternalAngle is the solid angle measured inside the body across the edge: Pi for a flat edge, less than Pi
for convex and more than Pi for concave. Single sided edges and edges next to faces without a normal are NaN.
*/
func (m *Mesh) EdgeInternalAngle(ei int) float64 {
	e := m.Edges[ei]
	if e.validAngle {
		return e.internalAngle
	}
	e.internalAngle, e.Curvature = m.classifyEdge(ei)
	e.validAngle = true
	return e.internalAngle
}

func (m *Mesh) classifyEdge(ei int) (angle float64, curv CurvatureType) {
	e := m.Edges[ei]
	if e.IsSingleSided() {
		return math.NaN(), Undefined
	}
	n1, n2 := m.FaceNormal(e.OwnedFace), m.FaceNormal(e.OtherFace)
	if r3.Norm2(n1) == 0 || r3.Norm2(n2) == 0 {
		return math.NaN(), Undefined
	}
	fold := math.Acos(math.Max(-1, math.Min(1, r3.Dot(n1, n2))))
	if fold < FlatAngleTolerance {
		return math.Pi, SaddleOrFlat
	}
	// The far corner of the other face lies below the owned face's plane when the fold is convex
	opp := m.OppositeVertex(e.OtherFace, ei)
	h := r3.Dot(n1, r3.Sub(m.Vertices[opp].Position, m.Vertices[e.From].Position))
	switch {
	case h < 0:
		return math.Pi - fold, Convex
	case h > 0:
		return math.Pi + fold, Concave
	}
	return math.Pi, SaddleOrFlat
}

func (m *Mesh) positions(verts []int) (pts []r3.Vec) {
	pts = make([]r3.Vec, len(verts))
	for i, v := range verts {
		pts[i] = m.Vertices[v].Position
	}
	return
}
