package mesh

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/types"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
Mesh owns flat arrays of vertices, edges and faces. Every cross reference between them is an index into one of
these arrays, and IndexInList of every element always equals its position. Removals compact the arrays and rebuild
all references in the same call, so an index captured before a removal must not be used after it.
*/
type Mesh struct {
	Vertices []*Vertex
	Edges    []*Edge
	Faces    []*Face
	Units    Units
	Errors   *TessellationError
	Options  BuildOptions

	tolerance  float64
	edgesBuilt bool
	logger     *slog.Logger
}

/*
NewMesh assembles a mesh from positions and faces given as rings of indices into them. Malformed faces (fewer
than three vertices, indices out of range) are an error; geometric and topological defects are repaired or
reported in Errors according to opts.
*/
func NewMesh(vertices []r3.Vec, faces [][]int, opts BuildOptions) (m *Mesh, err error) {
	if len(opts.Colors) != 0 && len(opts.Colors) != len(faces) {
		err = fmt.Errorf("have %d colors for %d faces", len(opts.Colors), len(faces))
		return
	}
	for fi, fv := range faces {
		if len(fv) < 3 {
			err = fmt.Errorf("face %d has %d vertices, need at least 3", fi, len(fv))
			return
		}
		for _, v := range fv {
			if v < 0 || v >= len(vertices) {
				err = fmt.Errorf("face %d references vertex %d, have %d vertices", fi, v, len(vertices))
				return
			}
		}
	}
	m = &Mesh{
		Vertices: make([]*Vertex, len(vertices)),
		Faces:    make([]*Face, 0, len(faces)),
		Units:    opts.Units,
		Errors:   &TessellationError{},
		Options:  opts,
		logger:   opts.logger(),
	}
	for i, p := range vertices {
		m.Vertices[i] = &Vertex{Position: p, IndexInList: i}
	}
	for fi, fv := range faces {
		verts := fv
		if opts.CopyElementsPassedToConstructor {
			verts = append([]int(nil), fv...)
		}
		m.Faces[m.AddFace(verts)].Color = colorAt(opts, fi)
	}
	m.tolerance = opts.VertexTolerance
	if m.tolerance <= 0 {
		m.tolerance = geometry.DefaultVertexTolerance(geometry.BoundsOf(vertices))
	}
	m.Errors.ToleranceUsed = m.tolerance
	if n := m.removeCollapsedFaces(); n != 0 {
		m.logger.Info("removed collapsed faces", "count", n)
	}
	if opts.PredefineAllEdges || opts.LazyEdgeFaceLimit <= 0 || len(m.Faces) <= opts.LazyEdgeFaceLimit {
		m.MakeEdgesIfNonExistent()
	} else {
		m.logger.Debug("deferring edge construction", "faces", len(m.Faces), "limit", opts.LazyEdgeFaceLimit)
	}
	return
}

/*
NewMeshFromTriangles builds a mesh from triangles given as explicit corner positions. Corners that round to the
same position at the vertex tolerance become a single vertex.
*/
func NewMeshFromTriangles(tris [][3]r3.Vec, opts BuildOptions) (m *Mesh, err error) {
	var (
		all      = make([]r3.Vec, 0, 3*len(tris))
		vertices []r3.Vec
		faces    = make([][]int, len(tris))
		index    = make(map[r3.Vec]int)
	)
	for _, tri := range tris {
		all = append(all, tri[:]...)
	}
	tol := opts.VertexTolerance
	if tol <= 0 {
		tol = geometry.DefaultVertexTolerance(geometry.BoundsOf(all))
	}
	decimals := geometry.DecimalsForTolerance(tol)
	for ti, tri := range tris {
		faces[ti] = make([]int, 3)
		for j, p := range tri {
			key := geometry.RoundToDecimals(p, decimals)
			vi, ok := index[key]
			if !ok {
				vi = len(vertices)
				index[key] = vi
				vertices = append(vertices, p)
			}
			faces[ti][j] = vi
		}
	}
	opts.VertexTolerance = tol
	opts.CopyElementsPassedToConstructor = false
	return NewMesh(vertices, faces, opts)
}

func colorAt(opts BuildOptions, fi int) (c color.RGBA) {
	if len(opts.Colors) != 0 {
		c = opts.Colors[fi]
	}
	return
}

// Tolerance is the vertex merge tolerance the mesh was repaired with
func (m *Mesh) Tolerance() float64 { return m.tolerance }

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(p r3.Vec) int {
	vi := len(m.Vertices)
	m.Vertices = append(m.Vertices, &Vertex{Position: p, IndexInList: vi})
	return vi
}

// AddFace appends a face over existing vertices, registering it with each of them. Edges are not created.
func (m *Mesh) AddFace(verts []int) int {
	if len(verts) < 3 {
		panic(fmt.Errorf("face needs at least 3 vertices, have %d", len(verts)))
	}
	fi := len(m.Faces)
	f := newFace(verts)
	f.IndexInList = fi
	m.Faces = append(m.Faces, f)
	for _, v := range verts {
		if v < 0 || v >= len(m.Vertices) {
			panic(fmt.Errorf("face references vertex %d, have %d vertices", v, len(m.Vertices)))
		}
		m.Vertices[v].Faces = appendUnique(m.Vertices[v].Faces, fi)
	}
	return fi
}

// appendEdge registers a new edge with the mesh and its two vertices
func (m *Mesh) appendEdge(e *Edge) int {
	ei := len(m.Edges)
	e.IndexInList = ei
	m.Edges = append(m.Edges, e)
	m.Vertices[e.From].Edges = append(m.Vertices[e.From].Edges, ei)
	m.Vertices[e.To].Edges = append(m.Vertices[e.To].Edges, ei)
	return ei
}

/*
AddEdge attaches an edge to a face. The edge must join two consecutive vertices of the face, in either direction;
anything else is a caller bug and panics, as does attaching a third face to an edge.
*/
func (m *Mesh) AddEdge(fi, ei int) {
	e, f := m.Edges[ei], m.Faces[fi]
	slot := f.slotOf(e.From, e.To)
	if slot < 0 {
		slot = f.slotOf(e.To, e.From)
	}
	if slot < 0 {
		panic(fmt.Errorf("edge %d (%d-%d) does not match a vertex pair of face %d %v",
			ei, e.From, e.To, fi, f.Vertices))
	}
	m.linkEdge(fi, slot, ei)
}

func (m *Mesh) linkEdge(fi, slot, ei int) {
	e := m.Edges[ei]
	m.Faces[fi].Edges[slot] = ei
	switch {
	case e.OwnedFace == fi || e.OtherFace == fi:
	case e.OwnedFace < 0:
		e.OwnedFace = fi
	case e.OtherFace < 0:
		e.OtherFace = fi
	default:
		panic(fmt.Errorf("edge %d already joins faces %d and %d, cannot add face %d",
			ei, e.OwnedFace, e.OtherFace, fi))
	}
	m.settleEdge(ei)
	e.Update()
}

// settleEdge restores the convention that OwnedFace walks the edge From->To, reversing the edge if needed
func (m *Mesh) settleEdge(ei int) {
	var (
		e    = m.Edges[ei]
		a, b = e.OwnedFace, e.OtherFace
	)
	walksForward := func(fi int) bool { return fi >= 0 && m.Faces[fi].slotOf(e.From, e.To) >= 0 }
	switch {
	case a < 0 && b < 0:
	case walksForward(a):
	case walksForward(b):
		e.OwnedFace, e.OtherFace = b, a
	default:
		e.From, e.To = e.To, e.From
		if a < 0 {
			e.OwnedFace, e.OtherFace = b, a
		}
		e.Update()
	}
}

// ReplaceVertex swaps a vertex of a face for another, keeping both vertices' face lists current
func (m *Mesh) ReplaceVertex(fi, oldV, newV int) {
	f := m.Faces[fi]
	found := false
	for i, v := range f.Vertices {
		if v == oldV {
			f.Vertices[i] = newV
			found = true
		}
	}
	if !found {
		panic(fmt.Errorf("vertex %d is not part of face %d %v", oldV, fi, f.Vertices))
	}
	m.Vertices[oldV].Faces = removeValue(m.Vertices[oldV].Faces, fi)
	m.Vertices[newV].Faces = appendUnique(m.Vertices[newV].Faces, fi)
	f.Update()
}

// ReplaceEdge detaches oldE from the face and attaches newE in its slot, which must span the same vertex pair
func (m *Mesh) ReplaceEdge(fi, oldE, newE int) {
	f := m.Faces[fi]
	slot := -1
	for i, ei := range f.Edges {
		if ei == oldE {
			slot = i
		}
	}
	if slot < 0 {
		panic(fmt.Errorf("edge %d is not part of face %d", oldE, fi))
	}
	m.unlinkFace(oldE, fi)
	f.Edges[slot] = -1
	var (
		e    = m.Edges[newE]
		a, b = f.Vertices[slot], f.Vertices[(slot+1)%len(f.Vertices)]
	)
	if !(e.From == a && e.To == b) && !(e.From == b && e.To == a) {
		panic(fmt.Errorf("edge %d (%d-%d) does not span %d-%d of face %d", newE, e.From, e.To, a, b, fi))
	}
	m.linkEdge(fi, slot, newE)
}

func (m *Mesh) unlinkFace(ei, fi int) {
	e := m.Edges[ei]
	if e.OwnedFace == fi {
		e.OwnedFace = -1
	}
	if e.OtherFace == fi {
		e.OtherFace = -1
	}
	m.settleEdge(ei)
	e.Update()
}

// InvertFace reverses the winding of a face and so its normal
func (m *Mesh) InvertFace(fi int) {
	var (
		f        = m.Faces[fi]
		n        = len(f.Vertices)
		verts    = make([]int, n)
		edges    = make([]int, n)
		wasAdopt = f.adoptedNormal
	)
	for i := 0; i < n; i++ {
		verts[i] = f.Vertices[n-1-i]
		edges[i] = f.Edges[(2*n-2-i)%n]
	}
	copy(f.Vertices, verts)
	copy(f.Edges, edges)
	f.Update()
	if wasAdopt {
		f.normal = r3.Scale(-1, f.normal)
		f.adoptedNormal = true
	}
	for _, ei := range f.Edges {
		if ei >= 0 {
			m.settleEdge(ei)
			m.Edges[ei].Update()
		}
	}
}

// OtherVertex is the far end of an edge from a vertex, panicking when the vertex is not on the edge
func (m *Mesh) OtherVertex(ei, vi int) int {
	e := m.Edges[ei]
	switch vi {
	case e.From:
		return e.To
	case e.To:
		return e.From
	}
	panic(fmt.Errorf("vertex %d is not on edge %d (%d-%d)", vi, ei, e.From, e.To))
}

// OtherFace is the face across an edge, -1 for a single sided edge; it panics when fi is not on the edge
func (m *Mesh) OtherFace(ei, fi int) int {
	e := m.Edges[ei]
	switch fi {
	case e.OwnedFace:
		return e.OtherFace
	case e.OtherFace:
		return e.OwnedFace
	}
	panic(fmt.Errorf("face %d is not adjacent to edge %d", fi, ei))
}

// OppositeVertex is the vertex of a face following the edge, the apex of a triangle
func (m *Mesh) OppositeVertex(fi, ei int) int {
	var (
		f    = m.Faces[fi]
		e    = m.Edges[ei]
		slot = f.slotOf(e.From, e.To)
	)
	if slot < 0 {
		slot = f.slotOf(e.To, e.From)
	}
	if slot < 0 {
		panic(fmt.Errorf("edge %d (%d-%d) is not part of face %d %v", ei, e.From, e.To, fi, f.Vertices))
	}
	return f.Vertices[(slot+2)%len(f.Vertices)]
}

// RemoveFaces deletes faces, detaching them from their vertices and edges, then compacts the face array
func (m *Mesh) RemoveFaces(indices []int) {
	if len(indices) == 0 {
		return
	}
	removed := m.markRemoved(indices, len(m.Faces), "face")
	for fi, gone := range removed {
		if !gone {
			continue
		}
		for _, ei := range m.Faces[fi].Edges {
			if ei >= 0 {
				m.unlinkFace(ei, fi)
			}
		}
	}
	remap := compactMap(removed)
	kept := m.Faces[:0]
	for fi, f := range m.Faces {
		if !removed[fi] {
			f.IndexInList = remap[fi]
			kept = append(kept, f)
		}
	}
	m.Faces = kept
	for _, v := range m.Vertices {
		v.Faces = remapList(v.Faces, remap)
	}
	for _, e := range m.Edges {
		e.OwnedFace, e.OtherFace = remapOne(e.OwnedFace, remap), remapOne(e.OtherFace, remap)
	}
}

// RemoveEdges deletes edges, clearing the face slots that held them, then compacts the edge array
func (m *Mesh) RemoveEdges(indices []int) {
	if len(indices) == 0 {
		return
	}
	removed := m.markRemoved(indices, len(m.Edges), "edge")
	remap := compactMap(removed)
	kept := m.Edges[:0]
	for ei, e := range m.Edges {
		if !removed[ei] {
			e.IndexInList = remap[ei]
			kept = append(kept, e)
		}
	}
	m.Edges = kept
	for _, f := range m.Faces {
		for i, ei := range f.Edges {
			f.Edges[i] = remapOne(ei, remap)
		}
	}
	for _, v := range m.Vertices {
		v.Edges = remapList(v.Edges, remap)
	}
}

// RemoveVertices deletes vertices along with every face and edge using them, then compacts the vertex array
func (m *Mesh) RemoveVertices(indices []int) {
	if len(indices) == 0 {
		return
	}
	removed := m.markRemoved(indices, len(m.Vertices), "vertex")
	var faces, edges []int
	for fi, f := range m.Faces {
		for _, v := range f.Vertices {
			if removed[v] {
				faces = append(faces, fi)
				break
			}
		}
	}
	m.RemoveFaces(faces)
	for ei, e := range m.Edges {
		if removed[e.From] || removed[e.To] {
			edges = append(edges, ei)
		}
	}
	m.RemoveEdges(edges)
	remap := compactMap(removed)
	kept := m.Vertices[:0]
	for vi, v := range m.Vertices {
		if !removed[vi] {
			v.IndexInList = remap[vi]
			kept = append(kept, v)
		}
	}
	m.Vertices = kept
	for _, f := range m.Faces {
		for i, v := range f.Vertices {
			f.Vertices[i] = remap[v]
		}
	}
	for _, e := range m.Edges {
		e.From, e.To = remap[e.From], remap[e.To]
		e.Checksum = types.NewEdgeKey([2]int{e.From, e.To})
	}
}

func (m *Mesh) markRemoved(indices []int, n int, what string) (removed []bool) {
	removed = make([]bool, n)
	for _, i := range indices {
		if i < 0 || i >= n {
			panic(fmt.Errorf("cannot remove %s %d, have %d", what, i, n))
		}
		removed[i] = true
	}
	return
}

// removeCollapsedFaces drops faces that use the same vertex twice
func (m *Mesh) removeCollapsedFaces() (n int) {
	var collapsed []int
	for fi, f := range m.Faces {
		if f.isCollapsed() {
			collapsed = append(collapsed, fi)
		}
	}
	m.RemoveFaces(collapsed)
	m.Errors.FacesRemoved += len(collapsed)
	return len(collapsed)
}

// clearEdges drops all edges ahead of a rebuild
func (m *Mesh) clearEdges() {
	m.Edges = nil
	for _, v := range m.Vertices {
		v.Edges = nil
	}
	for _, f := range m.Faces {
		for i := range f.Edges {
			f.Edges[i] = -1
		}
	}
	m.edgesBuilt = false
}

// Copy returns an independent deep clone with identical indices
func (m *Mesh) Copy() (c *Mesh) {
	c = &Mesh{
		Vertices:   make([]*Vertex, len(m.Vertices)),
		Edges:      make([]*Edge, len(m.Edges)),
		Faces:      make([]*Face, len(m.Faces)),
		Units:      m.Units,
		Options:    m.Options,
		tolerance:  m.tolerance,
		edgesBuilt: m.edgesBuilt,
		logger:     m.logger,
	}
	for i, v := range m.Vertices {
		cv := *v
		cv.Edges = append([]int(nil), v.Edges...)
		cv.Faces = append([]int(nil), v.Faces...)
		c.Vertices[i] = &cv
	}
	for i, e := range m.Edges {
		ce := *e
		c.Edges[i] = &ce
	}
	for i, f := range m.Faces {
		cf := *f
		cf.Vertices = append([]int(nil), f.Vertices...)
		cf.Edges = append([]int(nil), f.Edges...)
		c.Faces[i] = &cf
	}
	if m.Errors != nil {
		ce := *m.Errors
		ce.SingleSidedEdges = append([]int(nil), m.Errors.SingleSidedEdges...)
		ce.DegenerateFaces = append([]int(nil), m.Errors.DegenerateFaces...)
		c.Errors = &ce
	}
	return
}

func compactMap(removed []bool) (remap []int) {
	remap = make([]int, len(removed))
	var next int
	for i, gone := range removed {
		if gone {
			remap[i] = -1
			continue
		}
		remap[i] = next
		next++
	}
	return
}

func remapOne(i int, remap []int) int {
	if i < 0 {
		return i
	}
	return remap[i]
}

// remapList renumbers the indices in place, dropping the removed ones
func remapList(list []int, remap []int) []int {
	kept := list[:0]
	for _, i := range list {
		if j := remap[i]; j >= 0 {
			kept = append(kept, j)
		}
	}
	return kept
}

func appendUnique(list []int, i int) []int {
	for _, j := range list {
		if j == i {
			return list
		}
	}
	return append(list, i)
}

func removeValue(list []int, i int) []int {
	kept := list[:0]
	for _, j := range list {
		if j != i {
			kept = append(kept, j)
		}
	}
	return kept
}
