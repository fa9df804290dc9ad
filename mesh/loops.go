package mesh

import (
	"math"
	"sort"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// PathEntry is one step of an EdgePath, Forward when the edge is walked From->To
type PathEntry struct {
	Edge    int
	Forward bool
}

/*
EdgePath is a directed walk along edges. Consecutive entries share a vertex, and a closed path ends at the vertex
it started from.
*/
type EdgePath struct {
	Entries []PathEntry
	Closed  bool
}

func (p *EdgePath) Len() int { return len(p.Entries) }

func (pe PathEntry) ends(m *Mesh) (from, to int) {
	e := m.Edges[pe.Edge]
	if pe.Forward {
		return e.From, e.To
	}
	return e.To, e.From
}

func (p *EdgePath) StartVertex(m *Mesh) int {
	from, _ := p.Entries[0].ends(m)
	return from
}

func (p *EdgePath) EndVertex(m *Mesh) int {
	_, to := p.Entries[len(p.Entries)-1].ends(m)
	return to
}

// Vertices lists the vertices in walking order, the start vertex is not repeated at the end of a closed path
func (p *EdgePath) Vertices(m *Mesh) (verts []int) {
	for _, pe := range p.Entries {
		from, _ := pe.ends(m)
		verts = append(verts, from)
	}
	if !p.Closed && len(p.Entries) != 0 {
		verts = append(verts, p.EndVertex(m))
	}
	return
}

// Reverse walks the path the other way round
func (p *EdgePath) Reverse() {
	n := len(p.Entries)
	for i := 0; i < n/2; i++ {
		p.Entries[i], p.Entries[n-1-i] = p.Entries[n-1-i], p.Entries[i]
	}
	for i := range p.Entries {
		p.Entries[i].Forward = !p.Entries[i].Forward
	}
}

// IsValid checks that consecutive entries connect and that a closed path returns to its start
func (p *EdgePath) IsValid(m *Mesh) bool {
	if len(p.Entries) == 0 {
		return false
	}
	for i := 1; i < len(p.Entries); i++ {
		_, to := p.Entries[i-1].ends(m)
		if from, _ := p.Entries[i].ends(m); from != to {
			return false
		}
	}
	return !p.Closed || p.EndVertex(m) == p.StartVertex(m)
}

/*
BuildLoops chains an unordered set of edges into directed paths and returns the closed loops and the open
segments separately.

Walks are seeded at hub vertices, where three or more of the remaining edges meet, before anywhere else; a hub
falls back to an ordinary vertex once only two of its edges are left. At each vertex the walk continues along the
remaining edge that bends least from the incoming direction. When a walk stalls before closing, it is extended
backward from its seed. Closed walks that pass through a vertex twice are split into simple loops.
*/
func BuildLoops(m *Mesh, edges []int) (closed, open []*EdgePath) {
	var (
		buckets = make(types.VertexBuckets)
		used    = make(map[int]bool, len(edges))
	)
	for _, ei := range edges {
		e := m.Edges[ei]
		buckets.AddEdge(ei, [2]int{e.From, e.To})
	}
	consume := func(ei int) {
		e := m.Edges[ei]
		used[ei] = true
		buckets.RemoveEdge(ei, [2]int{e.From, e.To})
	}
	direction := func(pe PathEntry) r3.Vec {
		v := m.EdgeVector(pe.Edge)
		if !pe.Forward {
			v = r3.Scale(-1, v)
		}
		return v
	}
	// next picks the unused edge leaving vert that best continues the incoming direction
	next := func(vert int, incoming r3.Vec) (pe PathEntry, ok bool) {
		best := math.Inf(-1)
		for _, ei := range buckets[vert] {
			cand := PathEntry{Edge: ei, Forward: m.Edges[ei].From == vert}
			if c := geometry.SafeCos(incoming, direction(cand)); c > best {
				best, pe, ok = c, cand, true
			}
		}
		return
	}
	for {
		seed, ok := pickSeed(m, buckets, edges, used)
		if !ok {
			break
		}
		consume(seed.Edge)
		path := &EdgePath{Entries: []PathEntry{seed}}
		start := path.StartVertex(m)
		for path.EndVertex(m) != start {
			pe, ok := next(path.EndVertex(m), direction(path.Entries[len(path.Entries)-1]))
			if !ok {
				break
			}
			consume(pe.Edge)
			path.Entries = append(path.Entries, pe)
		}
		if path.EndVertex(m) != start {
			// Stalled, so grow the walk backward from the seed
			for path.StartVertex(m) != path.EndVertex(m) {
				first := path.Entries[0]
				pe, ok := next(path.StartVertex(m), r3.Scale(-1, direction(first)))
				if !ok {
					break
				}
				consume(pe.Edge)
				pe.Forward = !pe.Forward
				path.Entries = append([]PathEntry{pe}, path.Entries...)
			}
		}
		if path.StartVertex(m) == path.EndVertex(m) {
			path.Closed = true
			closed = append(closed, splitSelfIntersections(m, path)...)
		} else {
			open = append(open, path)
		}
	}
	return
}

// pickSeed returns the first unused edge at the lowest numbered hub, or else the first unused edge
func pickSeed(m *Mesh, buckets types.VertexBuckets, edges []int, used map[int]bool) (pe PathEntry, ok bool) {
	hub := -1
	for v := range buckets {
		if buckets.Valence(v) >= 3 && (hub < 0 || v < hub) {
			hub = v
		}
	}
	if hub >= 0 {
		b := append([]int(nil), buckets[hub]...)
		sort.Ints(b)
		return PathEntry{Edge: b[0], Forward: m.Edges[b[0]].From == hub}, true
	}
	for _, ei := range edges {
		if !used[ei] {
			return PathEntry{Edge: ei, Forward: true}, true
		}
	}
	return
}

/*
splitSelfIntersections cuts a closed walk that revisits a vertex into simple loops. Walking the entries, every
return to a vertex already on the current stack closes the loop between the two visits, which is removed; what is
left at the end is the remainder loop.
*/
func splitSelfIntersections(m *Mesh, path *EdgePath) (loops []*EdgePath) {
	var (
		stack []PathEntry
		at    = make(map[int]int) // vertex -> position in stack of the entry leaving it
	)
	for _, pe := range path.Entries {
		from, _ := pe.ends(m)
		if pos, found := at[from]; found {
			loop := &EdgePath{Entries: append([]PathEntry(nil), stack[pos:]...), Closed: true}
			loops = append(loops, loop)
			for _, ce := range stack[pos:] {
				f, _ := ce.ends(m)
				delete(at, f)
			}
			stack = stack[:pos]
		}
		at[from] = len(stack)
		stack = append(stack, pe)
	}
	if len(stack) != 0 {
		loops = append(loops, &EdgePath{Entries: stack, Closed: true})
	}
	return
}
