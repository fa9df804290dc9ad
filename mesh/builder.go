package mesh

import (
	"sort"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// faceUse is one face walking a vertex pair, from->to in the face's winding at position slot
type faceUse struct {
	face, slot int
	from, to   int
}

/*
edgeDerivation sorts every vertex pair walked by the faces by how many faces walk it: once (partly defined), twice
(fully defined) or three or more times (over defined).
*/
type edgeDerivation struct {
	partly map[types.EdgeKey]faceUse
	fully  map[types.EdgeKey][2]faceUse
	over   map[types.EdgeKey][]faceUse
}

func (d *edgeDerivation) total() int { return len(d.partly) + len(d.fully) + len(d.over) }

// keys returns every checksum in ascending order so that edges are created deterministically
func (d *edgeDerivation) keys() (keys []types.EdgeKey) {
	keys = make([]types.EdgeKey, 0, d.total())
	for k := range d.partly {
		keys = append(keys, k)
	}
	for k := range d.fully {
		keys = append(keys, k)
	}
	for k := range d.over {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return
}

func (m *Mesh) deriveEdges() (d *edgeDerivation) {
	d = &edgeDerivation{
		partly: make(map[types.EdgeKey]faceUse),
		fully:  make(map[types.EdgeKey][2]faceUse),
		over:   make(map[types.EdgeKey][]faceUse),
	}
	for fi, f := range m.Faces {
		n := len(f.Vertices)
		for slot, from := range f.Vertices {
			var (
				to  = f.Vertices[(slot+1)%n]
				use = faceUse{face: fi, slot: slot, from: from, to: to}
				key = types.NewEdgeKey([2]int{from, to})
			)
			if uses, found := d.over[key]; found {
				d.over[key] = append(uses, use)
			} else if pair, found := d.fully[key]; found {
				delete(d.fully, key)
				d.over[key] = []faceUse{pair[0], pair[1], use}
			} else if first, found := d.partly[key]; found {
				delete(d.partly, key)
				d.fully[key] = [2]faceUse{first, use}
			} else {
				d.partly[key] = use
			}
		}
	}
	return
}

// MakeEdgesIfNonExistent builds the edges, repairing the mesh as configured, unless that was done already
func (m *Mesh) MakeEdgesIfNonExistent() {
	if m.edgesBuilt {
		return
	}
	opts := m.Options
	d := m.deriveEdges()
	if opts.CheckModelIntegrity {
		d = m.escalateTolerance(d)
	}
	m.createEdges(d)
	if opts.CheckModelIntegrity {
		if merged := m.matchSingleSidedEdges(m.tolerance * geometry.ToleranceExpansionFactor *
			geometry.ToleranceExpansionFactor); merged != 0 {
			m.clearEdges()
			m.createEdges(m.deriveEdges())
		}
		if opts.AutomaticallyRepairBadFaces {
			if flipped := m.repairFaceOrientation(); flipped != 0 {
				m.clearEdges()
				m.createEdges(m.deriveEdges())
			}
		}
		if opts.AutomaticallyRepairHoles {
			m.patchHoles()
		}
	}
	m.edgesBuilt = true
	m.Errors.SingleSidedEdges = m.Errors.SingleSidedEdges[:0]
	for ei, e := range m.Edges {
		if e.IsSingleSided() {
			m.Errors.SingleSidedEdges = append(m.Errors.SingleSidedEdges, ei)
		}
	}
	if opts.AutomaticallyRepairBadFaces {
		m.adoptDegenerateNormals()
	}
	m.Errors.DegenerateFaces = m.Errors.DegenerateFaces[:0]
	for fi := range m.Faces {
		if r3.Norm2(m.FaceNormal(fi)) == 0 {
			m.Errors.DegenerateFaces = append(m.Errors.DegenerateFaces, fi)
		}
	}
	if opts.FindNonsmoothEdges {
		for ei := range m.Edges {
			m.EdgeInternalAngle(ei)
		}
	}
	m.logger.Debug("topology built", "vertices", len(m.Vertices), "edges", len(m.Edges),
		"faces", len(m.Faces), "report", m.Errors.String())
	if !m.Errors.NoErrors() {
		m.logger.Info("mesh is not closed", "singleSided", len(m.Errors.SingleSidedEdges),
			"degenerate", len(m.Errors.DegenerateFaces))
	}
}

/*
escalateTolerance grows the merge tolerance while too many edges are single sided. Each attempt snaps a copy of
the mesh at the grown tolerance. The first copy that lowers the single sided count without raising the over defined
count, or the reverse, replaces the mesh and ends the search; otherwise the mesh stays as it was.
*/
func (m *Mesh) escalateTolerance(d *edgeDerivation) *edgeDerivation {
	var (
		s, o = len(d.partly), len(d.over)
		tol  = m.tolerance
	)
	if d.total() == 0 || float64(s)/float64(d.total()) <= SingleSidedThreshold {
		return d
	}
	for attempt := 1; attempt <= MaxToleranceAttempts; attempt++ {
		tol *= geometry.ToleranceExpansionFactor
		m.Errors.ToleranceAttempts = attempt
		trial := m.Copy()
		merged := trial.snapVertices(tol)
		if merged == 0 {
			continue
		}
		td := trial.deriveEdges()
		ts, to := len(td.partly), len(td.over)
		if !((ts < s && to < o) || (ts < s && to == o) || (ts == s && to < o)) {
			m.logger.Debug("tolerance expansion rejected", "tolerance", tol, "singleSided", ts, "overDefined", to)
			continue
		}
		m.logger.Debug("tolerance expansion accepted", "tolerance", tol, "merged", merged,
			"singleSided", ts, "overDefined", to)
		m.Vertices, m.Faces = trial.Vertices, trial.Faces
		m.Errors.VerticesMerged += merged
		m.Errors.FacesRemoved = trial.Errors.FacesRemoved
		m.tolerance, m.Errors.ToleranceUsed = tol, tol
		return td
	}
	return d
}

// snapVertices merges every group of vertices rounding to the same position at the tolerance's precision
func (m *Mesh) snapVertices(tol float64) (merged int) {
	var (
		decimals = geometry.DecimalsForTolerance(tol)
		parent   = make([]int, len(m.Vertices))
		buckets  = make(map[r3.Vec]int)
	)
	for vi, v := range m.Vertices {
		key := geometry.RoundToDecimals(v.Position, decimals)
		if first, found := buckets[key]; found {
			parent[vi] = first
		} else {
			buckets[key] = vi
			parent[vi] = vi
		}
	}
	return m.mergeVertices(parent)
}

/*
mergeVertices unions each vertex into parent[vi], which must be a root (parent[root] == root) with an index no
larger than vi. The root moves to the mean position of its group, faces are re-pointed, merged vertices are
removed and faces collapsed by the merge are dropped. Edges must be cleared beforehand.
*/
func (m *Mesh) mergeVertices(parent []int) (merged int) {
	var (
		sums   = make(map[int]r3.Vec)
		counts = make(map[int]int)
		gone   []int
	)
	for vi, root := range parent {
		if root == vi {
			continue
		}
		if counts[root] == 0 {
			sums[root], counts[root] = m.Vertices[root].Position, 1
		}
		sums[root] = r3.Add(sums[root], m.Vertices[vi].Position)
		counts[root]++
		for _, fi := range append([]int(nil), m.Vertices[vi].Faces...) {
			m.ReplaceVertex(fi, vi, root)
		}
		gone = append(gone, vi)
	}
	for root, sum := range sums {
		m.Vertices[root].Position = r3.Scale(1/float64(counts[root]), sum)
		for _, fi := range m.Vertices[root].Faces {
			m.Faces[fi].Update()
		}
	}
	m.removeCollapsedFaces()
	m.RemoveVertices(gone)
	return len(gone)
}

// createEdges turns a derivation into edges, resolving over defined vertex pairs into face pairs
func (m *Mesh) createEdges(d *edgeDerivation) {
	var overused int
	m.clearEdges()
	link := func(uses ...faceUse) {
		ei := m.appendEdge(NewEdge(uses[0].from, uses[0].to))
		for _, u := range uses {
			m.linkEdge(u.face, u.slot, ei)
		}
	}
	for _, key := range d.keys() {
		if use, found := d.partly[key]; found {
			link(use)
		} else if pair, found := d.fully[key]; found {
			link(pair[0], pair[1])
		} else {
			overused++
			m.logger.Debug("over-defined edge", "vertices", key.GetVertices(false), "faces", len(d.over[key]))
			pairs, leftovers := m.pairOverDefined(d.over[key])
			for _, p := range pairs {
				link(p[0], p[1])
			}
			for _, u := range leftovers {
				link(u)
			}
		}
	}
	m.Errors.OverusedEdgesFound = overused
	m.edgesBuilt = true
}

/*
pairOverDefined greedily pairs the faces walking one vertex pair, best agreeing normals first. Only faces walking
the pair in opposite directions can be paired; faces left over become single sided edges.
*/
func (m *Mesh) pairOverDefined(uses []faceUse) (pairs [][2]faceUse, leftovers []faceUse) {
	type candidate struct {
		i, j int
		cos  float64
	}
	var (
		cands []candidate
		used  = make([]bool, len(uses))
	)
	for i := range uses {
		for j := i + 1; j < len(uses); j++ {
			if uses[i].from == uses[j].from {
				continue
			}
			cands = append(cands, candidate{i, j,
				geometry.SafeCos(m.FaceNormal(uses[i].face), m.FaceNormal(uses[j].face))})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].cos > cands[b].cos })
	for _, c := range cands {
		if used[c.i] || used[c.j] {
			continue
		}
		used[c.i], used[c.j] = true, true
		pairs = append(pairs, [2]faceUse{uses[c.i], uses[c.j]})
	}
	for i, u := range uses {
		if !used[i] {
			leftovers = append(leftovers, u)
		}
	}
	return
}
