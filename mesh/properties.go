package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Volume is the signed enclosed volume, positive for a closed mesh with outward normals
func (m *Mesh) Volume() float64 {
	all := make([]int, len(m.Faces))
	for i := range all {
		all[i] = i
	}
	return m.volumeOf(all)
}

// volumeOf sums the signed tetrahedra formed by the origin and a fan over each face
func (m *Mesh) volumeOf(faces []int) (vol float64) {
	for _, fi := range faces {
		vol += m.faceVolume(fi, nil)
	}
	return
}

func (m *Mesh) faceVolume(fi int, each func(a, b, c r3.Vec, v float64)) (vol float64) {
	var (
		f = m.Faces[fi]
		a = m.Vertices[f.Vertices[0]].Position
	)
	for i := 1; i+1 < len(f.Vertices); i++ {
		b, c := m.Vertices[f.Vertices[i]].Position, m.Vertices[f.Vertices[i+1]].Position
		v := r3.Dot(a, r3.Cross(b, c)) / 6
		if each != nil {
			each(a, b, c, v)
		}
		vol += v
	}
	return
}

func (m *Mesh) SurfaceArea() (area float64) {
	for fi := range m.Faces {
		area += m.FaceArea(fi)
	}
	return
}

// Center is the centroid of the enclosed volume, or of the vertices when the volume vanishes
func (m *Mesh) Center() r3.Vec {
	var (
		vol float64
		sum r3.Vec
	)
	for fi := range m.Faces {
		vol += m.faceVolume(fi, func(a, b, c r3.Vec, v float64) {
			sum = r3.Add(sum, r3.Scale(v/4, r3.Add(a, r3.Add(b, c))))
		})
	}
	if geometry.IsNegligible(vol, m.tolerance*m.tolerance*m.tolerance) {
		pts := make([]r3.Vec, len(m.Vertices))
		for i, v := range m.Vertices {
			pts[i] = v.Position
		}
		return geometry.Centroid(pts)
	}
	return r3.Scale(1/vol, sum)
}

func (m *Mesh) Bounds() r3.Box {
	pts := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Position
	}
	return geometry.BoundsOf(pts)
}

// IsClosed reports whether every edge has a face on both sides, building edges if needed
func (m *Mesh) IsClosed() bool {
	m.MakeEdgesIfNonExistent()
	if len(m.Faces) == 0 {
		return false
	}
	for _, e := range m.Edges {
		if e.IsSingleSided() {
			return false
		}
	}
	return true
}

func (m *Mesh) isClosedBody(faces []int) bool {
	for _, fi := range faces {
		for _, ei := range m.Faces[fi].Edges {
			if ei < 0 || m.Edges[ei].IsSingleSided() {
				return false
			}
		}
	}
	return true
}

func (m *Mesh) Translate(v r3.Vec) {
	for _, vert := range m.Vertices {
		vert.Position = r3.Add(vert.Position, v)
	}
	m.invalidate()
}

// Scale multiplies every coordinate by f about the origin, a negative f turns the mesh inside out
func (m *Mesh) Scale(f float64) {
	for _, vert := range m.Vertices {
		vert.Position = r3.Scale(f, vert.Position)
	}
	m.tolerance *= math.Abs(f)
	m.invalidate()
}

func (m *Mesh) invalidate() {
	for _, f := range m.Faces {
		f.Update()
	}
	for _, e := range m.Edges {
		e.Update()
	}
}

/*
FaceAdjacency lists for each face the faces sharing two or more of its vertices, found from the sparse product of
the face to vertex incidence matrix with its transpose. It does not need edges and so also sees neighbors across
over defined or unmatched edges.
*/
func (m *Mesh) FaceAdjacency() (nbrs [][]int, err error) {
	faces := make([][]int, len(m.Faces))
	for fi, f := range m.Faces {
		faces[fi] = f.Vertices
	}
	return utils.FaceNeighbors(faces, len(m.Vertices), 2)
}

// ConnectedBodies groups faces into bodies connected across two sided edges, each body in ascending face order
func (m *Mesh) ConnectedBodies() (bodies [][]int) {
	m.MakeEdgesIfNonExistent()
	seen := make([]bool, len(m.Faces))
	for seed := range m.Faces {
		if seen[seed] {
			continue
		}
		var (
			body  = []int{seed}
			queue = []int{seed}
		)
		seen[seed] = true
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			for _, ei := range m.Faces[fi].Edges {
				if ei < 0 || m.Edges[ei].IsSingleSided() {
					continue
				}
				if g := m.OtherFace(ei, fi); !seen[g] {
					seen[g] = true
					body = append(body, g)
					queue = append(queue, g)
				}
			}
		}
		sort.Ints(body)
		bodies = append(bodies, body)
	}
	return
}

// Statistics summarizes the size and quality of a mesh
type Statistics struct {
	Vertices, Edges, Faces int
	Bodies                 int
	SingleSidedEdges       int
	MinEdgeLength          float64
	MaxEdgeLength          float64
	MeanEdgeLength         float64
	SurfaceArea            float64
	Volume                 float64
	Bounds                 r3.Box
}

func (m *Mesh) Statistics() (st Statistics) {
	m.MakeEdgesIfNonExistent()
	st = Statistics{
		Vertices:    len(m.Vertices),
		Edges:       len(m.Edges),
		Faces:       len(m.Faces),
		Bodies:      len(m.ConnectedBodies()),
		SurfaceArea: m.SurfaceArea(),
		Volume:      m.Volume(),
		Bounds:      m.Bounds(),
	}
	if len(m.Edges) != 0 {
		lengths := make([]float64, len(m.Edges))
		for ei, e := range m.Edges {
			lengths[ei] = m.EdgeLength(ei)
			if e.IsSingleSided() {
				st.SingleSidedEdges++
			}
		}
		st.MinEdgeLength = floats.Min(lengths)
		st.MaxEdgeLength = floats.Max(lengths)
		st.MeanEdgeLength = floats.Sum(lengths) / float64(len(lengths))
	}
	return
}

func (st Statistics) Print() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Vertices: %d\n", st.Vertices)
	fmt.Printf("  Edges: %d (%d single sided)\n", st.Edges, st.SingleSidedEdges)
	fmt.Printf("  Faces: %d\n", st.Faces)
	fmt.Printf("  Bodies: %d\n", st.Bodies)
	fmt.Printf("  Edge length: min %8.5g, mean %8.5g, max %8.5g\n",
		st.MinEdgeLength, st.MeanEdgeLength, st.MaxEdgeLength)
	fmt.Printf("  Surface area: %g\n", st.SurfaceArea)
	fmt.Printf("  Volume: %g\n", st.Volume)
	fmt.Printf("  Bounds: [%g, %g, %g] - [%g, %g, %g]\n",
		st.Bounds.Min.X, st.Bounds.Min.Y, st.Bounds.Min.Z, st.Bounds.Max.X, st.Bounds.Max.Y, st.Bounds.Max.Z)
}
