package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceNeighbors(t *testing.T) {
	// Two triangles sharing the edge 1-2, and a third touching only at vertex 3
	faces := [][]int{{0, 1, 2}, {2, 1, 3}, {3, 4, 5}}
	FToV, err := FaceVertexIncidence(faces, 6)
	require.NoError(t, err)
	FToF := SharedVertexCounts(FToV)
	assert.Equal(t, 3., FToF.At(0, 0))
	assert.Equal(t, 2., FToF.At(0, 1))
	assert.Equal(t, 1., FToF.At(1, 2))
	assert.Equal(t, 0., FToF.At(0, 2))

	nbrs, err := FaceNeighbors(faces, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1}, {0}, nil}, nbrs)

	nbrs, err = FaceNeighbors(faces, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, nbrs[1])

	_, err = FaceNeighbors([][]int{{0, 1, 7}}, 6, 2)
	assert.Error(t, err)
}
