package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Unit cube, corners numbered counter-clockwise around the bottom then the top
func cubeVertices() []r3.Vec {
	return []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
}

// Two outward wound triangles per side: bottom, top, front, back, left, right
func cubeFaces() [][]int {
	return [][]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{3, 7, 6}, {3, 6, 2},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
}

func plainOptions() BuildOptions {
	return BuildOptions{PredefineAllEdges: true}
}

func newCube(t *testing.T, opts BuildOptions) *Mesh {
	t.Helper()
	m, err := NewMesh(cubeVertices(), cubeFaces(), opts)
	require.NoError(t, err)
	return m
}

// findEdge returns the path entry walking the edge a->b
func findEdge(t *testing.T, m *Mesh, a, b int) PathEntry {
	t.Helper()
	for ei, e := range m.Edges {
		if e.From == a && e.To == b {
			return PathEntry{Edge: ei, Forward: true}
		}
		if e.From == b && e.To == a {
			return PathEntry{Edge: ei, Forward: false}
		}
	}
	t.Fatalf("no edge %d-%d", a, b)
	return PathEntry{}
}

// checkConsistency verifies every index and back reference of the mesh
func checkConsistency(t *testing.T, m *Mesh) {
	t.Helper()
	for i, v := range m.Vertices {
		assert.Equal(t, i, v.IndexInList, "vertex index")
		for _, fi := range v.Faces {
			require.Less(t, fi, len(m.Faces))
			assert.True(t, m.Faces[fi].hasVertex(i), "vertex %d lists face %d which does not use it", i, fi)
		}
		for _, ei := range v.Edges {
			require.Less(t, ei, len(m.Edges))
			e := m.Edges[ei]
			assert.True(t, e.From == i || e.To == i, "vertex %d lists edge %d which does not touch it", i, ei)
		}
	}
	for fi, f := range m.Faces {
		assert.Equal(t, fi, f.IndexInList, "face index")
		require.Len(t, f.Edges, len(f.Vertices))
		for _, v := range f.Vertices {
			assert.Contains(t, m.Vertices[v].Faces, fi)
		}
		for slot, ei := range f.Edges {
			if ei < 0 {
				continue
			}
			var (
				e    = m.Edges[ei]
				a, b = f.Vertices[slot], f.Vertices[(slot+1)%len(f.Vertices)]
			)
			assert.True(t, (e.From == a && e.To == b) || (e.From == b && e.To == a),
				"face %d slot %d holds edge %d-%d, expected %d-%d", fi, slot, e.From, e.To, a, b)
			// Exactly one of the two roles
			assert.True(t, (e.OwnedFace == fi) != (e.OtherFace == fi), "face %d role on edge %d", fi, ei)
		}
	}
	for ei, e := range m.Edges {
		assert.Equal(t, ei, e.IndexInList, "edge index")
		for _, fi := range []int{e.OwnedFace, e.OtherFace} {
			if fi >= 0 {
				require.Less(t, fi, len(m.Faces))
				assert.Contains(t, m.Faces[fi].Edges, ei)
			}
		}
		if e.OwnedFace >= 0 {
			assert.True(t, m.walksForward(e.OwnedFace, ei), "owner of edge %d walks it backward", ei)
		}
	}
}
