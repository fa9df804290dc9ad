package mesh

import (
	"sort"

	"github.com/notargets/gotess/geometry"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// edgeMidpoint places a single sided edge in a k-d tree by the middle of its span
type edgeMidpoint struct {
	pos  r3.Vec
	edge int
}

func coord(p r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func (p edgeMidpoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return coord(p.pos, d) - coord(c.(edgeMidpoint).pos, d)
}
func (p edgeMidpoint) Dims() int { return 3 }
func (p edgeMidpoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.pos, c.(edgeMidpoint).pos))
}

type edgeMidpoints []edgeMidpoint

func (p edgeMidpoints) Index(i int) kdtree.Comparable { return p[i] }
func (p edgeMidpoints) Len() int                      { return len(p) }
func (p edgeMidpoints) Pivot(d kdtree.Dim) int {
	return midpointPlane{Dim: d, edgeMidpoints: p}.Pivot()
}
func (p edgeMidpoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type midpointPlane struct {
	kdtree.Dim
	edgeMidpoints
}

func (p midpointPlane) Less(i, j int) bool {
	return coord(p.edgeMidpoints[i].pos, p.Dim) < coord(p.edgeMidpoints[j].pos, p.Dim)
}
func (p midpointPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p midpointPlane) Slice(start, end int) kdtree.SortSlicer {
	p.edgeMidpoints = p.edgeMidpoints[start:end]
	return p
}
func (p midpointPlane) Swap(i, j int) {
	p.edgeMidpoints[i], p.edgeMidpoints[j] = p.edgeMidpoints[j], p.edgeMidpoints[i]
}

func (m *Mesh) midpoint(ei int) r3.Vec {
	e := m.Edges[ei]
	return r3.Scale(0.5, r3.Add(m.Vertices[e.From].Position, m.Vertices[e.To].Position))
}

/*
matchSingleSidedEdges finds pairs of single sided edges whose ends coincide within tol, running either the same way
or opposite ways, and merges their vertices. The edges are dropped when anything is merged and must be rebuilt.
*/
func (m *Mesh) matchSingleSidedEdges(tol float64) (merged int) {
	var (
		border []int
		pts    edgeMidpoints
	)
	for ei, e := range m.Edges {
		if e.IsSingleSided() {
			border = append(border, ei)
			pts = append(pts, edgeMidpoint{pos: m.midpoint(ei), edge: ei})
		}
	}
	if len(border) < 2 {
		return
	}
	var (
		tree    = kdtree.New(pts, false)
		parent  = make([]int, len(m.Vertices))
		matched = make(map[int]bool)
	)
	for vi := range parent {
		parent[vi] = vi
	}
	var find func(v int) int
	find = func(v int) int {
		if parent[v] != v {
			parent[v] = find(parent[v])
		}
		return parent[v]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		switch {
		case ra < rb:
			parent[rb] = ra
		case rb < ra:
			parent[ra] = rb
		}
	}
	pos := func(v int) r3.Vec { return m.Vertices[v].Position }
	for _, ei := range border {
		if matched[ei] {
			continue
		}
		e := m.Edges[ei]
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, edgeMidpoint{pos: m.midpoint(ei)})
		for _, c := range keep.Heap {
			cand := c.Comparable.(edgeMidpoint).edge
			if cand == ei || matched[cand] || m.Edges[cand].Checksum == e.Checksum {
				continue
			}
			f := m.Edges[cand]
			switch {
			case geometry.IsSamePoint(pos(e.From), pos(f.To), tol) && geometry.IsSamePoint(pos(e.To), pos(f.From), tol):
				union(e.From, f.To)
				union(e.To, f.From)
			case geometry.IsSamePoint(pos(e.From), pos(f.From), tol) && geometry.IsSamePoint(pos(e.To), pos(f.To), tol):
				union(e.From, f.From)
				union(e.To, f.To)
			default:
				continue
			}
			matched[ei], matched[cand] = true, true
			break
		}
	}
	if len(matched) == 0 {
		return
	}
	for vi := range parent {
		parent[vi] = find(vi)
	}
	m.clearEdges()
	merged = m.mergeVertices(parent)
	m.Errors.VerticesMerged += merged
	m.logger.Debug("matched single sided edges", "pairs", len(matched)/2, "verticesMerged", merged)
	return
}

func (m *Mesh) walksForward(fi, ei int) bool {
	e := m.Edges[ei]
	return m.Faces[fi].slotOf(e.From, e.To) >= 0
}

/*
repairFaceOrientation makes the winding of every body consistent by spreading the orientation of one face across
its two sided edges. On an open body the smaller of the two orientation classes is flipped; a closed body is then
turned inside out if its volume is negative.
*/
func (m *Mesh) repairFaceOrientation() (flipped int) {
	for _, body := range m.ConnectedBodies() {
		var (
			flip    = make(map[int]bool, len(body))
			visited = map[int]bool{body[0]: true}
			queue   = []int{body[0]}
			nFlip   int
		)
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			for _, ei := range m.Faces[fi].Edges {
				if ei < 0 || m.Edges[ei].IsSingleSided() {
					continue
				}
				g := m.OtherFace(ei, fi)
				if visited[g] {
					continue
				}
				// Neighbors agree when they walk the shared edge in opposite directions
				flip[g] = flip[fi] != (m.walksForward(fi, ei) == m.walksForward(g, ei))
				if flip[g] {
					nFlip++
				}
				visited[g] = true
				queue = append(queue, g)
			}
		}
		if 2*nFlip > len(body) {
			for _, fi := range body {
				flip[fi] = !flip[fi]
			}
		}
		for _, fi := range body {
			if flip[fi] {
				m.InvertFace(fi)
			}
		}
		if m.isClosedBody(body) && m.volumeOf(body) < 0 {
			for _, fi := range body {
				m.InvertFace(fi)
				flip[fi] = !flip[fi]
			}
		}
		for _, fi := range body {
			if flip[fi] {
				flipped++
			}
		}
	}
	m.Errors.FacesFlipped += flipped
	if flipped != 0 {
		m.logger.Debug("flipped faces to a consistent winding", "count", flipped)
	}
	return
}

/*
adoptDegenerateNormals gives faces collapsed to a line the averaged normal of the faces across their two shortest
edges, when those two agree. Repeating lets a normal spread along a chain of degenerate faces.
*/
func (m *Mesh) adoptDegenerateNormals() {
	for pass := 0; pass < MaxNormalAdoptionPasses; pass++ {
		changed := false
		for fi, f := range m.Faces {
			if r3.Norm2(m.FaceNormal(fi)) != 0 {
				continue
			}
			var edges []int
			for _, ei := range f.Edges {
				if ei >= 0 {
					edges = append(edges, ei)
				}
			}
			if len(edges) < 2 {
				continue
			}
			sort.Slice(edges, func(i, j int) bool { return m.EdgeLength(edges[i]) < m.EdgeLength(edges[j]) })
			var donors []r3.Vec
			for _, ei := range edges[:2] {
				g := m.OtherFace(ei, fi)
				if g < 0 || r3.Norm2(m.FaceNormal(g)) == 0 {
					break
				}
				donors = append(donors, m.FaceNormal(g))
			}
			if len(donors) != 2 || geometry.SafeCos(donors[0], donors[1]) < NormalAdoptionCosine {
				continue
			}
			f.normal = r3.Unit(r3.Add(donors[0], donors[1]))
			f.adoptedNormal = true
			changed = true
		}
		if !changed {
			return
		}
	}
}
