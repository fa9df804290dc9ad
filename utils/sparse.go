package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
)

/*
FaceVertexIncidence builds the sparse face to vertex matrix, FToV[f][v] = 1 when face f uses vertex v.
Faces that repeat a vertex still count it once.
*/
func FaceVertexIncidence(faces [][]int, nVerts int) (FToV *sparse.CSR, err error) {
	SpFToV_Tmp := sparse.NewDOK(len(faces), nVerts)
	for f, verts := range faces {
		for _, v := range verts {
			if v < 0 || v >= nVerts {
				err = fmt.Errorf("face %d references vertex %d, outside of [0,%d)", f, v, nVerts)
				return
			}
			SpFToV_Tmp.Set(f, v, 1)
		}
	}
	FToV = SpFToV_Tmp.ToCSR()
	return
}

/*
SharedVertexCounts is FToF = FToV * FToV^T, the number of vertices each pair of faces has in common. For a
triangulated surface an off diagonal value of 2 means the two faces share an edge, 1 means they touch at a corner.
*/
func SharedVertexCounts(FToV *sparse.CSR) (FToF *sparse.CSR) {
	nr, _ := FToV.Dims()
	FToF = sparse.NewCSR(nr, nr, nil, nil, nil)
	FToF.Mul(FToV, FToV.T())
	return
}

// FaceNeighbors lists, for each face, the other faces sharing at least minShared vertices with it, in ascending order
func FaceNeighbors(faces [][]int, nVerts, minShared int) (nbrs [][]int, err error) {
	var (
		FToV *sparse.CSR
	)
	if FToV, err = FaceVertexIncidence(faces, nVerts); err != nil {
		return
	}
	nbrs = make([][]int, len(faces))
	if len(faces) == 0 {
		return
	}
	FToF := SharedVertexCounts(FToV)
	FToF.DoNonZero(func(i, j int, v float64) {
		if i != j && int(v+0.5) >= minShared {
			nbrs[i] = append(nbrs[i], j)
		}
	})
	for i := range nbrs {
		sort.Ints(nbrs[i])
	}
	return
}
