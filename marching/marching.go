package marching

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/notargets/gotess/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxCornerReuse is the number of times a cached corner sample is reused before it is evicted
const MaxCornerReuse = 7

/*
Field is a sampled volume. Sample reports false for points outside its valid domain, such points count as outside.
Offset returns where along p0->p1 the surface crosses, as a fraction of the distance, given the samples at both
ends; it is only called for a pair with one inside and one outside sample.
*/
type Field[V any] interface {
	Bounds() r3.Box
	Sample(p r3.Vec) (v V, ok bool)
	Inside(v V) bool
	Offset(from, to V, p0, p1 r3.Vec) float64
}

// Lattice is the regular grid of sample points covering a box padded by a margin
type Lattice struct {
	Origin r3.Vec
	Step   float64
	N      [3]int // Points along x, y and z
}

func NewLattice(bounds r3.Box, step, margin float64) (l Lattice, err error) {
	if step <= 0 || math.IsNaN(step) {
		err = fmt.Errorf("grid step must be positive, have %g", step)
		return
	}
	if margin < 0 {
		err = fmt.Errorf("margin must not be negative, have %g", margin)
		return
	}
	size := bounds.Size()
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		err = fmt.Errorf("empty bounds %v", bounds)
		return
	}
	l = Lattice{
		Origin: r3.Sub(bounds.Min, r3.Vec{X: margin, Y: margin, Z: margin}),
		Step:   step,
	}
	for d, extent := range [3]float64{size.X, size.Y, size.Z} {
		l.N[d] = int(math.Ceil((extent+2*margin)/step-1e-9)) + 1
		if l.N[d] < 2 {
			l.N[d] = 2
		}
	}
	return
}

func (l Lattice) Point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: l.Origin.X + float64(i)*l.Step,
		Y: l.Origin.Y + float64(j)*l.Step,
		Z: l.Origin.Z + float64(k)*l.Step,
	}
}

func (l Lattice) Index(i, j, k int) int { return i + l.N[0]*(j+l.N[1]*k) }

func (l Lattice) Cells() int { return (l.N[0] - 1) * (l.N[1] - 1) * (l.N[2] - 1) }

// Result is the extracted surface, triangles index into Vertices and are wound with normals pointing outside
type Result struct {
	Vertices  []r3.Vec
	Triangles [][3]int
}

/*
MarchingCubes extracts the boundary of the inside region of a field as a triangle mesh. Solid is whatever the field
was derived from and is carried along untouched.
*/
type MarchingCubes[S any, V any] struct {
	Solid    S
	Field    Field[V]
	GridStep float64
	Margin   float64
	Logger   *slog.Logger
}

func New[S any, V any](solid S, field Field[V], gridStep, margin float64) *MarchingCubes[S, V] {
	return &MarchingCubes[S, V]{
		Solid:    solid,
		Field:    field,
		GridStep: gridStep,
		Margin:   margin,
	}
}

type corner[V any] struct {
	value  V
	valid  bool
	inside bool
	uses   int
}

type march[V any] struct {
	field    Field[V]
	lattice  Lattice
	cache    map[int]*corner[V]
	evicted  int
	edgeVert [3]map[int]int // Per direction, lower corner index -> vertex
	result   *Result
}

// Generate walks every cell of the lattice and returns the triangles of the iso-surface
func (mc *MarchingCubes[S, V]) Generate() (res *Result, err error) {
	if mc.Field == nil {
		err = fmt.Errorf("marching cubes needs a field")
		return
	}
	var (
		lattice Lattice
		tables  = CubeTables()
	)
	if lattice, err = NewLattice(mc.Field.Bounds(), mc.GridStep, mc.Margin); err != nil {
		return
	}
	mr := &march[V]{
		field:   mc.Field,
		lattice: lattice,
		cache:   make(map[int]*corner[V]),
		result:  &Result{},
	}
	for d := range mr.edgeVert {
		mr.edgeVert[d] = make(map[int]int)
	}
	var (
		ids     [8]int
		corners [8]*corner[V]
	)
	for k := 0; k < lattice.N[2]-1; k++ {
		for j := 0; j < lattice.N[1]-1; j++ {
			for i := 0; i < lattice.N[0]-1; i++ {
				config := 0
				for c, o := range CornerOffset {
					ids[c] = lattice.Index(i+o[0], j+o[1], k+o[2])
					corners[c] = mr.sample(ids[c], i+o[0], j+o[1], k+o[2])
					if corners[c].inside {
						config |= 1 << c
					}
				}
				for _, tri := range tables.FaceVertexIndicesTable[config] {
					var t [3]int
					for n, e := range tri {
						t[n] = mr.edgeVertex(e, ids, corners)
					}
					mr.result.Triangles = append(mr.result.Triangles, t)
				}
			}
		}
	}
	res = mr.result
	mc.logger().Debug("marching cubes done", "lattice", lattice.N, "cells", lattice.Cells(),
		"vertices", len(res.Vertices), "triangles", len(res.Triangles), "cornersEvicted", mr.evicted)
	return
}

// sample returns the cached corner, evaluating it on first access and dropping it after its last reuse
func (mr *march[V]) sample(id, i, j, k int) (c *corner[V]) {
	var found bool
	if c, found = mr.cache[id]; found {
		c.uses++
		if c.uses >= MaxCornerReuse {
			delete(mr.cache, id)
			mr.evicted++
		}
		return
	}
	c = &corner[V]{}
	c.value, c.valid = mr.field.Sample(mr.lattice.Point(i, j, k))
	c.inside = c.valid && mr.field.Inside(c.value)
	mr.cache[id] = c
	return
}

// edgeVertex returns the vertex on a cut cube edge, shared with the other cells along the same lattice edge
func (mr *march[V]) edgeVertex(e int, ids [8]int, corners [8]*corner[V]) (vi int) {
	a, b := EdgeCorners[e][0], EdgeCorners[e][1]
	if ids[b] < ids[a] {
		a, b = b, a
	}
	var (
		dir = edgeDirection(a, b)
		key = ids[a]
	)
	if v, found := mr.edgeVert[dir][key]; found {
		return v
	}
	var (
		ca, cb = corners[a], corners[b]
		p0     = mr.cornerPoint(ids[a])
		p1     = mr.cornerPoint(ids[b])
		t      = 0.5
	)
	if ca.valid && cb.valid {
		t = clampOffset(mr.field.Offset(ca.value, cb.value, p0, p1))
	}
	vi = len(mr.result.Vertices)
	mr.result.Vertices = append(mr.result.Vertices, r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0))))
	mr.edgeVert[dir][key] = vi
	return
}

func (mr *march[V]) cornerPoint(id int) r3.Vec {
	var (
		n = mr.lattice.N
		i = id % n[0]
		j = (id / n[0]) % n[1]
		k = id / (n[0] * n[1])
	)
	return mr.lattice.Point(i, j, k)
}

func edgeDirection(a, b int) int {
	oa, ob := CornerOffset[a], CornerOffset[b]
	for d := 0; d < 3; d++ {
		if oa[d] != ob[d] {
			return d
		}
	}
	panic("corners do not differ")
}

func clampOffset(t float64) float64 {
	switch {
	case math.IsNaN(t):
		return 0.5
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Mesh runs Generate and builds a repaired mesh from the triangles
func (mc *MarchingCubes[S, V]) Mesh(opts mesh.BuildOptions) (m *mesh.Mesh, err error) {
	var res *Result
	if res, err = mc.Generate(); err != nil {
		return
	}
	if len(res.Triangles) == 0 {
		err = fmt.Errorf("field has no surface inside %v", mc.Field.Bounds())
		return
	}
	faces := make([][]int, len(res.Triangles))
	for i, tri := range res.Triangles {
		faces[i] = []int{tri[0], tri[1], tri[2]}
	}
	if opts.Logger == nil {
		opts.Logger = mc.Logger
	}
	opts.CopyElementsPassedToConstructor = false
	return mesh.NewMesh(res.Vertices, faces, opts)
}

func (mc *MarchingCubes[S, V]) logger() *slog.Logger {
	if mc.Logger != nil {
		return mc.Logger
	}
	return slog.Default()
}
