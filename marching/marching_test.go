package marching

import (
	"math"
	"math/rand"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	"github.com/notargets/gotess/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTables(t *testing.T) {
	tb := CubeTables()
	assert.Same(t, tb, CubeTables())
	assert.Zero(t, tb.NumFacesTable[0])
	assert.Zero(t, tb.NumFacesTable[255])
	assert.Zero(t, tb.CubeEdgeFlagsTable[0])
	assert.Equal(t, 1, tb.NumFacesTable[1])
	assert.Equal(t, uint16(1<<0|1<<3|1<<8), tb.CubeEdgeFlagsTable[1])
	for config := 0; config < 256; config++ {
		tris := tb.FaceVertexIndicesTable[config]
		require.Len(t, tris, tb.NumFacesTable[config], "config %d", config)
		var used uint16
		for _, tri := range tris {
			for _, e := range tri {
				used |= 1 << e
			}
		}
		assert.Equal(t, tb.CubeEdgeFlagsTable[config], used, "config %d", config)
	}
	// A lone inside corner is cut off by a triangle facing away from it
	a, b, c := edgeMidpoint(tb.FaceVertexIndicesTable[1][0][0]), edgeMidpoint(tb.FaceVertexIndicesTable[1][0][1]),
		edgeMidpoint(tb.FaceVertexIndicesTable[1][0][2])
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	assert.Greater(t, r3.Dot(n, r3.Vec{X: 1, Y: 1, Z: 1}), 0.)
	// Two diagonal corners of the bottom face are separated
	assert.Equal(t, 2, tb.NumFacesTable[1<<0|1<<2])
}

func TestRandomVoxelsWatertight(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		g, err := NewVoxelGrid(5, 5, 5, r3.Vec{}, 1)
		require.NoError(t, err)
		for i := range g.Cells {
			g.Cells[i] = rnd.Float64() < 0.5
		}
		m, err := NewVoxelMarcher(g).Mesh(mesh.BuildOptions{PredefineAllEdges: true})
		require.NoError(t, err)
		require.Empty(t, m.Errors.SingleSidedEdges, "trial %d", trial)
		assert.Zero(t, m.Errors.OverusedEdgesFound)
		for ei, e := range m.Edges {
			// Neighbors agree on the winding when they walk the shared edge in opposite directions
			f := m.Faces[e.OtherFace]
			walksBack := false
			for slot, v := range f.Vertices {
				if v == e.To && f.Vertices[(slot+1)%3] == e.From {
					walksBack = true
				}
			}
			assert.True(t, walksBack, "trial %d edge %d", trial, ei)
		}
		assert.Greater(t, m.Volume(), 0.)
	}
}

func TestRandomVoxelsManifold(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		g, err := NewVoxelGrid(6, 6, 6, r3.Vec{}, 1)
		require.NoError(t, err)
		for i := range g.Cells {
			g.Cells[i] = rnd.Float64() < 0.5
		}
		mc := NewVoxelMarcher(g)
		res, err := mc.Generate()
		require.NoError(t, err)
		walks := make(map[[2]int]int)
		for _, tri := range res.Triangles {
			for j := 0; j < 3; j++ {
				walks[[2]int{tri[j], tri[(j+1)%3]}]++
			}
		}
		for e, n := range walks {
			require.Equal(t, 1, n, "trial %d edge %v", trial, e)
			require.Equal(t, 1, walks[[2]int{e[1], e[0]}], "trial %d edge %v", trial, e)
		}
		m, err := mc.Mesh(mesh.BuildOptions{PredefineAllEdges: true})
		require.NoError(t, err)
		require.Zero(t, m.Errors.OverusedEdgesFound, "trial %d", trial)
		require.Empty(t, m.Errors.SingleSidedEdges, "trial %d", trial)
	}
}

// A fan apex never shares a cube face with a loop point it is not adjacent to
func TestFanApexFirst(t *testing.T) {
	tb := CubeTables()
	for config := 0; config < 256; config++ {
		for _, loop := range configLoops(config) {
			loop = fanApexFirst(loop)
			for i := 2; i < len(loop)-1; i++ {
				assert.False(t, shareFace(loop[0], loop[i]), "config %d loop %v", config, loop)
			}
		}
		for _, tri := range tb.FaceVertexIndicesTable[config] {
			assert.NotEqual(t, tri[1], tri[2])
		}
	}
	// e0 and e3 both lie on the bottom face
	assert.True(t, shareFace(0, 3))
	assert.False(t, shareFace(0, 6))
}

func newBlock(t *testing.T, n, lo, hi int) *VoxelGrid {
	t.Helper()
	g, err := NewVoxelGrid(n, n, n, r3.Vec{}, 1)
	require.NoError(t, err)
	for k := lo; k <= hi; k++ {
		for j := lo; j <= hi; j++ {
			for i := lo; i <= hi; i++ {
				g.Set(i, j, k, true)
			}
		}
	}
	return g
}

func TestVoxelBlock(t *testing.T) {
	for _, g := range []*VoxelGrid{
		newBlock(t, 6, 2, 3), // isolated in an empty grid
		newBlock(t, 2, 0, 1), // filling the grid, the margin closes it
	} {
		mc := NewVoxelMarcher(g)
		res, err := mc.Generate()
		require.NoError(t, err)
		assert.Len(t, res.Triangles, 44)
		assert.Len(t, res.Vertices, 24)

		m, err := mc.Mesh(mesh.DefaultBuildOptions())
		require.NoError(t, err)
		assert.True(t, m.Errors.NoErrors(), m.Errors.String())
		assert.True(t, m.IsClosed())
		assert.Len(t, m.Edges, 66)
		assert.Zero(t, m.Errors.FacesFlipped)
		// A 2x2x2 cube grown by half a voxel with chamfered edges and corners
		assert.InDelta(t, 17./3., m.Volume(), 1e-9)
		assert.Same(t, g, mc.Solid)
	}
}

func TestVoxelGridAccess(t *testing.T) {
	_, err := NewVoxelGrid(0, 1, 1, r3.Vec{}, 1)
	assert.Error(t, err)
	_, err = NewVoxelGrid(1, 1, 1, r3.Vec{}, 0)
	assert.Error(t, err)
	g, err := NewVoxelGrid(3, 4, 5, r3.Vec{X: 1}, 0.5)
	require.NoError(t, err)
	g.Set(2, 3, 4, true)
	assert.True(t, g.At(2, 3, 4))
	assert.False(t, g.At(3, 3, 4))
	assert.Panics(t, func() { g.Set(3, 0, 0, true) })
	v, ok := g.Sample(r3.Vec{X: 2, Y: 1.5, Z: 2})
	assert.True(t, ok)
	assert.True(t, v)
	_, ok = g.Sample(r3.Vec{X: 0.5})
	assert.False(t, ok)
	assert.Equal(t, r3.Vec{X: 2, Y: 1.5, Z: 2}, g.Bounds().Max)
}

func TestVoxelRefine(t *testing.T) {
	var (
		radius = 1.0
		inside = func(p r3.Vec) bool { return r3.Norm(p) < radius }
	)
	g, err := NewVoxelGrid(12, 12, 12, r3.Vec{X: -1.375, Y: -1.375, Z: -1.375}, 0.25)
	require.NoError(t, err)
	assert.Greater(t, g.Fill(inside), 0)
	g.Refine = inside
	res, err := NewVoxelMarcher(g).Generate()
	require.NoError(t, err)
	require.NotEmpty(t, res.Vertices)
	for _, p := range res.Vertices {
		assert.InDelta(t, radius, r3.Norm(p), 1e-5)
	}
}

func TestSphere(t *testing.T) {
	var (
		radius = 1.0
		exact  = 4. / 3. * math.Pi * radius * radius * radius
		f      = SphereFunction(r3.Vec{X: 0.3, Y: -0.2, Z: 0.1}, radius)
	)
	mc := NewImplicitMarcher(f, 0.12)
	m, err := mc.Mesh(mesh.DefaultBuildOptions())
	require.NoError(t, err)
	assert.Empty(t, m.Errors.SingleSidedEdges)
	assert.True(t, m.IsClosed())
	assert.InEpsilon(t, exact, m.Volume(), 0.05)
	assert.Len(t, m.ConnectedBodies(), 1)
	for _, v := range m.Vertices {
		assert.InDelta(t, radius, r3.Norm(r3.Sub(v.Position, r3.Vec{X: 0.3, Y: -0.2, Z: 0.1})), 0.02)
	}
}

func TestFromSDF3(t *testing.T) {
	s, err := sdf.Sphere3D(1)
	require.NoError(t, err)
	mc := NewSDFMarcher(s, 0.12)
	m, err := mc.Mesh(mesh.DefaultBuildOptions())
	require.NoError(t, err)
	assert.True(t, m.IsClosed())
	assert.InEpsilon(t, 4./3.*math.Pi, m.Volume(), 0.05)
}

func TestGenerateErrors(t *testing.T) {
	f := SphereFunction(r3.Vec{}, 1)
	_, err := New[ImplicitFunction, float64](f, f, 0, 0).Generate()
	assert.Error(t, err)
	_, err = New[ImplicitFunction, float64](f, f, 0.5, -1).Generate()
	assert.Error(t, err)
	_, err = New[ImplicitFunction, float64](f, nil, 0.5, 0).Generate()
	assert.Error(t, err)

	// A field that is nowhere inside has no surface to mesh
	empty := ImplicitFunction{F: func(r3.Vec) float64 { return 1 }, Box: f.Box}
	res, err := NewImplicitMarcher(empty, 0.5).Generate()
	require.NoError(t, err)
	assert.Empty(t, res.Triangles)
	_, err = NewImplicitMarcher(empty, 0.5).Mesh(mesh.DefaultBuildOptions())
	assert.Error(t, err)

	// NaN samples are outside
	holey := ImplicitFunction{F: func(p r3.Vec) float64 {
		if p.X > 0 {
			return math.NaN()
		}
		return f.F(p)
	}, Box: f.Box}
	res, err = NewImplicitMarcher(holey, 0.12).Generate()
	require.NoError(t, err)
	for _, p := range res.Vertices {
		assert.LessOrEqual(t, p.X, 0.12)
	}
}

func TestLattice(t *testing.T) {
	l, err := NewLattice(r3.Box{Max: r3.Vec{X: 1, Y: 2, Z: 0}}, 0.5, 0.25)
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 6, 2}, l.N)
	assert.Equal(t, r3.Vec{X: -0.25, Y: -0.25, Z: -0.25}, l.Origin)
	assert.Equal(t, r3.Vec{X: 0.25, Y: 0.75, Z: 0.25}, l.Point(1, 2, 1))
	assert.Equal(t, 1+4*(2+6*1), l.Index(1, 2, 1))
	assert.Equal(t, 3*5*1, l.Cells())
	_, err = NewLattice(r3.Box{Min: r3.Vec{X: 1}}, 0.5, 0)
	assert.Error(t, err)
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, 0.5, clampOffset(math.NaN()))
	assert.Equal(t, 0., clampOffset(-2))
	assert.Equal(t, 1., clampOffset(3))
	assert.Equal(t, 0.25, clampOffset(0.25))
	assert.Equal(t, 0.5, linearZero(2, 2))
	assert.Equal(t, 0.25, linearZero(-1, 3))
}
