package marching

import (
	"math"
	"testing"

	"github.com/notargets/gotess/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquareLayers(n int, dz float64) (layers []CrossSection) {
	square := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	// Reverse order, the stack sorts them
	for i := n - 1; i >= 0; i-- {
		layers = append(layers, CrossSection{Z: float64(i) * dz, Polygons: [][][2]float64{square}})
	}
	return
}

func TestCrossSectionCube(t *testing.T) {
	s, err := NewCrossSectionStack(unitSquareLayers(6, 0.2), 0.2, 0.3, 2)
	require.NoError(t, err)
	assert.Equal(t, 0., s.Layers[0].Z)
	assert.False(t, s.Snap)
	assert.InDelta(t, 0.6, s.Band, 1e-12)
	assert.Equal(t, [3]int{9, 9, 9}, s.Lattice.N)

	mc := NewCrossSectionMarcher(s)
	res, err := mc.Generate()
	require.NoError(t, err)
	assert.Len(t, res.Triangles, 296)

	m, err := mc.Mesh(mesh.DefaultBuildOptions())
	require.NoError(t, err)
	assert.True(t, m.IsClosed())
	assert.Zero(t, m.Errors.FacesFlipped)
	bb := m.Bounds()
	for _, v := range []float64{bb.Min.X, bb.Min.Y, bb.Min.Z} {
		assert.InDelta(t, 0, v, 1e-9)
	}
	for _, v := range []float64{bb.Max.X, bb.Max.Y, bb.Max.Z} {
		assert.InDelta(t, 1, v, 1e-9)
	}
	// The unit cube less its chamfered edges and corners
	assert.InDelta(t, 0.945333333333, m.Volume(), 1e-9)
}

func TestCrossSectionSnap(t *testing.T) {
	s, err := NewCrossSectionStack(unitSquareLayers(6, 0.2), 0.2, 0.2, 0)
	require.NoError(t, err)
	assert.True(t, s.Snap)
	// Snapped levels read the layer grids directly
	v, ok := s.Sample(s.Lattice.Point(3, 3, 2))
	assert.True(t, ok)
	assert.Equal(t, s.grids[1][3+s.Lattice.N[0]*3], v)
	res, err := NewCrossSectionMarcher(s).Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Triangles)

	// Half steps between layers fall between lattice levels
	s, err = NewCrossSectionStack(unitSquareLayers(3, 0.5), 0.2, 0.2, 0)
	require.NoError(t, err)
	assert.False(t, s.Snap)

	_, ok = s.Sample(s.Lattice.Point(0, 0, 0))
	assert.False(t, ok)
	v, ok = s.Sample(s.Lattice.Point(3, 3, 3))
	assert.True(t, ok)
	assert.InDelta(t, -0.4, v, 1e-9)
}

func TestSignedDistance2D(t *testing.T) {
	var (
		square = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		outer  = [][2]float64{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
		hole   = [][2]float64{{1, 1}, {1, 3}, {3, 3}, {3, 1}}
	)
	assert.InDelta(t, -0.5, signedDistance2D([2]float64{0.5, 0.5}, [][][2]float64{square}, 3), 1e-12)
	assert.InDelta(t, 1, signedDistance2D([2]float64{2, 0.5}, [][][2]float64{square}, 3), 1e-12)
	assert.True(t, math.IsInf(signedDistance2D([2]float64{10, 10}, [][][2]float64{square}, 3), 1))
	assert.True(t, math.IsInf(signedDistance2D([2]float64{0.5, 0.5}, [][][2]float64{outer}, 0.1), -1))

	withHole := [][][2]float64{outer, hole}
	assert.InDelta(t, 1, signedDistance2D([2]float64{2, 2}, withHole, 3), 1e-12)
	assert.InDelta(t, -0.5, signedDistance2D([2]float64{0.5, 2}, withHole, 3), 1e-12)
	assert.InDelta(t, 0.25, segmentDistance2([2]float64{0.5, 0.5}, [2]float64{0, 0}, [2]float64{1, 0}), 1e-12)
}

func TestCrossSectionErrors(t *testing.T) {
	_, err := NewCrossSectionStack(unitSquareLayers(1, 0.2), 0.2, 0.2, 0)
	assert.Error(t, err)

	layers := unitSquareLayers(3, 0.2)
	layers[0].Z = 0.5
	_, err = NewCrossSectionStack(layers, 0.2, 0.2, 0)
	assert.Error(t, err)

	layers = unitSquareLayers(2, 0.2)
	layers[1].Polygons = [][][2]float64{{{0, 0}, {1, 0}}}
	_, err = NewCrossSectionStack(layers, 0.2, 0.2, 0)
	assert.Error(t, err)

	_, err = NewCrossSectionStack([]CrossSection{{Z: 0}, {Z: 1}}, 0.2, 0.2, 0)
	assert.Error(t, err)
	_, err = NewCrossSectionStack(unitSquareLayers(2, 0.2), 0, 0.2, 0)
	assert.Error(t, err)
}
