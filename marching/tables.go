package marching

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

/*
Cube numbering used by every table:

	corners c0(0,0,0) c1(1,0,0) c2(1,1,0) c3(0,1,0) c4(0,0,1) c5(1,0,1) c6(1,1,1) c7(0,1,1)
	edges   e0 c0-c1  e1 c1-c2  e2 c2-c3  e3 c3-c0
	        e4 c4-c5  e5 c5-c6  e6 c6-c7  e7 c7-c4
	        e8 c0-c4  e9 c1-c5  e10 c2-c6 e11 c3-c7

Bit i of a cube configuration is set when corner i is inside.
*/
var (
	CornerOffset = [8][3]int{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	EdgeCorners = [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	// Corners of each cube face in cyclic order
	cubeFaces = [6][4]int{
		{0, 1, 2, 3}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {3, 2, 6, 7},
		{0, 3, 7, 4}, {1, 2, 6, 5},
	}
)

// Tables is the immutable lookup data for all 256 cube configurations
type Tables struct {
	CubeEdgeFlagsTable     [256]uint16   // Bit e set when edge e joins an inside and an outside corner
	NumFacesTable          [256]int      // Triangles emitted for the configuration
	FaceVertexIndicesTable [256][][3]int // Triangles as edge numbers, wound with the normal pointing outside
}

// CubeTables returns the tables, generating them on first use
var CubeTables = sync.OnceValue(buildTables)

func buildTables() (t *Tables) {
	t = &Tables{}
	for config := 0; config < 256; config++ {
		for e, c := range EdgeCorners {
			if isInside(config, c[0]) != isInside(config, c[1]) {
				t.CubeEdgeFlagsTable[config] |= 1 << e
			}
		}
		for _, loop := range configLoops(config) {
			loop = fanApexFirst(loop)
			for i := 1; i+1 < len(loop); i++ {
				t.FaceVertexIndicesTable[config] = append(t.FaceVertexIndicesTable[config],
					[3]int{loop[0], loop[i], loop[i+1]})
			}
		}
		t.NumFacesTable[config] = len(t.FaceVertexIndicesTable[config])
	}
	return
}

func isInside(config, corner int) bool { return config&(1<<corner) != 0 }

func edgeBetween(a, b int) int {
	for e, c := range EdgeCorners {
		if (c[0] == a && c[1] == b) || (c[0] == b && c[1] == a) {
			return e
		}
	}
	panic("corners do not share a cube edge")
}

func cornerPosition(c int) r3.Vec {
	o := CornerOffset[c]
	return r3.Vec{X: float64(o[0]), Y: float64(o[1]), Z: float64(o[2])}
}

func edgeMidpoint(e int) r3.Vec {
	c := EdgeCorners[e]
	return r3.Scale(0.5, r3.Add(cornerPosition(c[0]), cornerPosition(c[1])))
}

/*
configLoops walks the iso-surface of one configuration as closed loops of crossed edges. Each cube face
contributes segments joining its crossed edges; a face with two diagonally opposite inside corners cuts each of
them off separately. Every crossed edge lies on two faces, so chaining the segments closes into loops. Each loop
is wound so that its normal agrees with the inside to outside direction across its edges.
*/
func configLoops(config int) (loops [][]int) {
	var links [12][]int
	link := func(a, b int) {
		links[a] = append(links[a], b)
		links[b] = append(links[b], a)
	}
	for _, q := range cubeFaces {
		var (
			fe      [4]int
			crossed []int
		)
		for i := 0; i < 4; i++ {
			fe[i] = edgeBetween(q[i], q[(i+1)%4])
			if isInside(config, q[i]) != isInside(config, q[(i+1)%4]) {
				crossed = append(crossed, fe[i])
			}
		}
		switch len(crossed) {
		case 2:
			link(crossed[0], crossed[1])
		case 4:
			for i := 0; i < 4; i++ {
				if isInside(config, q[i]) {
					link(fe[(i+3)%4], fe[i])
				}
			}
		}
	}
	var visited [12]bool
	for start := 0; start < 12; start++ {
		if visited[start] || len(links[start]) == 0 {
			continue
		}
		var (
			loop       []int
			prev, edge = -1, start
		)
		for !visited[edge] {
			visited[edge] = true
			loop = append(loop, edge)
			next := links[edge][0]
			if next == prev {
				next = links[edge][1]
			}
			prev, edge = edge, next
		}
		orientLoop(config, loop)
		loops = append(loops, loop)
	}
	return
}

func orientLoop(config int, loop []int) {
	var normal, outward r3.Vec
	for i, e := range loop {
		a, b := edgeMidpoint(e), edgeMidpoint(loop[(i+1)%len(loop)])
		normal = r3.Add(normal, r3.Cross(a, b))
		c := EdgeCorners[e]
		in, out := c[0], c[1]
		if !isInside(config, in) {
			in, out = out, in
		}
		outward = r3.Add(outward, r3.Sub(cornerPosition(out), cornerPosition(in)))
	}
	if r3.Dot(normal, outward) < 0 {
		for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
			loop[i], loop[j] = loop[j], loop[i]
		}
	}
}

// faceOfEdges lists the two cube faces each edge lies on
var faceOfEdges = sync.OnceValue(func() (faces [12][]int) {
	for f, q := range cubeFaces {
		for i := 0; i < 4; i++ {
			e := edgeBetween(q[i], q[(i+1)%4])
			faces[e] = append(faces[e], f)
		}
	}
	return
})

func shareFace(a, b int) bool {
	faces := faceOfEdges()
	for _, fa := range faces[a] {
		for _, fb := range faces[b] {
			if fa == fb {
				return true
			}
		}
	}
	return false
}

/*
fanApexFirst rotates the loop so the fan starts at a point that shares no cube face with any point it is not
already joined to. A diagonal lying in a cube face would be generated by the neighbor cell as well.
*/
func fanApexFirst(loop []int) []int {
	n := len(loop)
	for s := 0; s < n; s++ {
		free := true
		for i := 2; i < n-1 && free; i++ {
			free = !shareFace(loop[s], loop[(s+i)%n])
		}
		if free {
			return append(append(make([]int, 0, n), loop[s:]...), loop[:s]...)
		}
	}
	return loop
}
