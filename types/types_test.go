package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{100, 0})
		assert.Equal(t, EdgeKey(100*(1<<32)), en)
		assert.Equal(t, [2]int{0, 100}, en.GetVertices(false))
		assert.Equal(t, [2]int{100, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 100001})
		assert.Equal(t, EdgeKey(100001*(1<<32)+100), en)
		assert.Equal(t, [2]int{100, 100001}, en.GetVertices(false))

		// Test maximum/minimum indices
		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
}

func TestEdgeKeySymmetry(t *testing.T) {
	seen := make(map[EdgeKey][2]int)
	for a := 0; a < 40; a++ {
		for b := 0; b < 40; b++ {
			assert.Equal(t, NewEdgeKey([2]int{a, b}), NewEdgeKey([2]int{b, a}))
			if a > b {
				continue
			}
			key := NewEdgeKey([2]int{a, b})
			if prev, ok := seen[key]; ok {
				t.Fatalf("checksum collision between %v and %v", prev, [2]int{a, b})
			}
			seen[key] = [2]int{a, b}
		}
	}
}

func TestVertexBuckets(t *testing.T) {
	vb := make(VertexBuckets)
	vb.AddEdge(0, [2]int{1, 2})
	vb.AddEdge(1, [2]int{2, 3})
	vb.AddEdge(2, [2]int{2, 4})
	assert.Equal(t, 3, vb.Valence(2))
	assert.Equal(t, 1, vb.Valence(1))
	vb.RemoveEdge(0, [2]int{1, 2})
	assert.Equal(t, 2, vb.Valence(2))
	assert.Equal(t, 0, vb.Valence(1))
	_, ok := vb[1]
	assert.False(t, ok)
}
