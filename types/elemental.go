package types

import (
	"fmt"
	"math"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values.
It is the edge checksum used during topology construction: two faces that walk the same vertex pair in either
direction produce the same key.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

/*
VertexBuckets maps every vertex to the edges incident to it. Edges are identified by the caller's own integer
label (usually an index into an edge array) so that several distinct edges sharing the same vertex pair can live in
the same bucket.
*/
type VertexBuckets map[int][]int

func (vb VertexBuckets) AddEdge(label int, verts [2]int) {
	for i := 0; i < 2; i++ {
		vb[verts[i]] = append(vb[verts[i]], label)
	}
}

// RemoveEdge drops the label from both vertex buckets, deleting buckets that become empty
func (vb VertexBuckets) RemoveEdge(label int, verts [2]int) {
	for i := 0; i < 2; i++ {
		b := vb[verts[i]]
		for j, l := range b {
			if l == label {
				b = append(b[:j], b[j+1:]...)
				break
			}
		}
		if len(b) == 0 {
			delete(vb, verts[i])
		} else {
			vb[verts[i]] = b
		}
	}
}

// Valence is the number of edges still attached to the vertex
func (vb VertexBuckets) Valence(vert int) int {
	return len(vb[vert])
}
