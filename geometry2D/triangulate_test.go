package geometry2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkTriangulation(t *testing.T, pts [][2]float64, tris [][3]int) {
	t.Helper()
	require.Len(t, tris, len(pts)-2)
	var total float64
	boundary := make(map[[2]int]int)
	for _, tri := range tris {
		a := orient(pts[tri[0]], pts[tri[1]], pts[tri[2]])
		assert.GreaterOrEqual(t, a, 0.0, "triangle %v is clockwise", tri)
		total += 0.5 * a
		for j := 0; j < 3; j++ {
			boundary[[2]int{tri[j], tri[(j+1)%3]}]++
		}
	}
	assert.InDelta(t, SignedArea(pts), total, 1e-9)
	for i := range pts {
		assert.Equal(t, 1, boundary[[2]int{i, (i + 1) % len(pts)}], "boundary edge %d not covered", i)
	}
}

func TestEarClip(t *testing.T) {
	{ // Convex square
		pts := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		tris, err := EarClip(pts)
		require.NoError(t, err)
		checkTriangulation(t, pts, tris)
	}
	{ // L shape with a reflex vertex
		pts := [][2]float64{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
		tris, err := EarClip(pts)
		require.NoError(t, err)
		checkTriangulation(t, pts, tris)
		assert.InDelta(t, 3, SignedArea(pts), 1e-12)
	}
	{ // Collinear points along one side
		pts := [][2]float64{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {0, 1}}
		tris, err := EarClip(pts)
		require.NoError(t, err)
		assert.Len(t, tris, 3)
	}
	_, err := EarClip([][2]float64{{0, 0}, {1, 0}})
	assert.Error(t, err)
}

func TestLegalize(t *testing.T) {
	//  A long thin quad split along its long diagonal is illegal
	pts := [][2]float64{{0, 0}, {4, -0.5}, {8, 0}, {4, 0.5}}
	tris := [][3]int{{0, 1, 2}, {0, 2, 3}}
	tris = Legalize(pts, tris)
	checkTriangulation(t, pts, tris)
	for _, tri := range tris {
		has1, has3 := false, false
		for _, v := range tri {
			has1 = has1 || v == 1
			has3 = has3 || v == 3
		}
		assert.True(t, has1 && has3, "expected the short diagonal 1-3 after flipping, have %v", tris)
	}
}

func TestLegalizeRepeatable(t *testing.T) {
	// Points on a circle, every diagonal is on the edge of legality
	var pts [][2]float64
	for i := 0; i < 9; i++ {
		a := 2 * math.Pi * float64(i) / 9
		pts = append(pts, [2]float64{math.Cos(a), math.Sin(a)})
	}
	clipped, err := EarClip(pts)
	require.NoError(t, err)
	first := Legalize(pts, append([][3]int(nil), clipped...))
	checkTriangulation(t, pts, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Legalize(pts, append([][3]int(nil), clipped...)))
	}
}

func TestIsIllegalEdge(t *testing.T) {
	// Point well inside the circumcircle of the unit right triangle
	assert.True(t, IsIllegalEdge(0.6, 0.6, 0, 0, 1, 0, 0, 1))
	assert.False(t, IsIllegalEdge(3, 3, 0, 0, 1, 0, 0, 1))
}

func TestTriangulate(t *testing.T) {
	pts := [][2]float64{{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}}
	tris, err := Triangulate(pts)
	require.NoError(t, err)
	checkTriangulation(t, pts, tris)

	// Clockwise input is rejected, the caller decides the winding
	rev := make([][2]float64, len(pts))
	for i := range pts {
		rev[i] = pts[len(pts)-1-i]
	}
	_, err = Triangulate(rev)
	assert.Error(t, err)
}
