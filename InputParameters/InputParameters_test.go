package InputParameters

import (
	"math"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/notargets/gotess/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openCube = []byte(`
Title: "cube without a top"
Units: mm
Vertices:
  - [0, 0, 0]
  - [1, 0, 0]
  - [1, 1, 0]
  - [0, 1, 0]
  - [0, 0, 1]
  - [1, 0, 1]
  - [1, 1, 1]
  - [0, 1, 1]
Faces:
  - [0, 2, 1]
  - [0, 3, 2]
  - [0, 1, 5]
  - [0, 5, 4]
  - [1, 2, 6]
  - [1, 6, 5]
  - [2, 3, 7]
  - [2, 7, 6]
  - [3, 0, 4]
  - [3, 4, 7]
`)

func TestBuildParameters(t *testing.T) {
	bp := NewBuildParameters()
	require.NoError(t, bp.Parse([]byte("RepairHoles: false\nUnits: inch\nVertexTolerance: 1.0e-4\n")))
	assert.False(t, bp.RepairHoles)
	// Absent keys keep the defaults
	assert.True(t, bp.RepairBadFaces)
	assert.True(t, bp.CheckIntegrity)
	assert.Equal(t, mesh.DefaultLazyEdgeFaceLimit, bp.LazyEdgeFaceLimit)

	opts, err := bp.ToOptions()
	require.NoError(t, err)
	assert.False(t, opts.AutomaticallyRepairHoles)
	assert.True(t, opts.AutomaticallyRepairBadFaces)
	assert.Equal(t, mesh.Inch, opts.Units)
	assert.Equal(t, 1.0e-4, opts.VertexTolerance)

	bp.Units = "furlong"
	_, err = bp.ToOptions()
	assert.Error(t, err)
	bp.Units, bp.VertexTolerance = "", -1
	_, err = bp.ToOptions()
	assert.Error(t, err)
}

func TestMeshDocument(t *testing.T) {
	md := &MeshDocument{}
	require.NoError(t, md.Parse(openCube))
	assert.Equal(t, "cube without a top", md.Title)
	require.Len(t, md.Vertices, 8)
	require.Len(t, md.Faces, 10)

	m, err := md.Mesh(mesh.DefaultBuildOptions())
	require.NoError(t, err)
	assert.Equal(t, mesh.Millimeter, m.Units)
	assert.True(t, m.IsClosed())
	assert.Equal(t, 1, m.Errors.HolesPatched)
	assert.InDelta(t, 1, m.Volume(), 1e-12)

	// Write the repaired mesh and read it back
	path := filepath.Join(t.TempDir(), "cube.yaml")
	require.NoError(t, NewMeshDocument(m).Write(path))
	back, err := ReadMeshDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "millimeter", back.Units)
	assert.Len(t, back.Faces, 12)
	assert.Len(t, back.Colors, 12)
	m2, err := back.Mesh(mesh.DefaultBuildOptions())
	require.NoError(t, err)
	assert.True(t, m2.Errors.NoErrors())
	assert.Zero(t, m2.Errors.HolesPatched)
	assert.Equal(t, m.Faces[3].PaintColor(), m2.Faces[3].PaintColor())
	assert.InDelta(t, 1, m2.Volume(), 1e-12)

	_, err = ReadMeshDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	md.Units = "parsec"
	_, err = md.Mesh(mesh.DefaultBuildOptions())
	assert.Error(t, err)
}

func v3Of(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func TestMarchParameters(t *testing.T) {
	mp := &MarchParameters{}
	require.NoError(t, mp.Parse([]byte(`
Title: "drilled block"
GridStep: 0.1
Operation: difference
Shapes:
  - Kind: box
    Size: [2, 2, 2]
  - Kind: cylinder
    Radius: 0.5
    Height: 3
  - Kind: sphere
    Radius: 0.25
    Center: [5, 0, 0]
Build:
  RepairHoles: false
`)))
	assert.Equal(t, 0.1, mp.GridStep)
	require.Len(t, mp.Shapes, 3)
	assert.Equal(t, [3]float64{5, 0, 0}, mp.Shapes[2].Center)
	require.NotNil(t, mp.Build)
	assert.False(t, mp.Build.RepairHoles)
	assert.True(t, mp.Build.RepairBadFaces)

	s, err := mp.Solid()
	require.NoError(t, err)
	// Inside the box, inside the drilled hole, and outside everything
	assert.Less(t, s.Evaluate(v3Of(0.75, 0.75, 0)), 0.)
	assert.Greater(t, s.Evaluate(v3Of(0, 0, 0)), 0.)
	assert.Greater(t, s.Evaluate(v3Of(3, 0, 0)), 0.)

	mp.Operation = "intersection"
	s, err = mp.Solid()
	require.NoError(t, err)
	assert.Greater(t, s.Evaluate(v3Of(0.75, 0.75, 0)), 0.)

	mp.Operation = "union"
	s, err = mp.Solid()
	require.NoError(t, err)
	assert.InDelta(t, -0.25, s.Evaluate(v3Of(5, 0, 0)), 1e-9)

	mp.Operation = "xor"
	_, err = mp.Solid()
	assert.Error(t, err)
	mp.Operation = ""
	mp.Shapes = append(mp.Shapes, ShapeSpec{Kind: "torus"})
	_, err = mp.Solid()
	assert.Error(t, err)
	mp.Shapes = nil
	_, err = mp.Solid()
	assert.Error(t, err)

	single := ShapeSpec{Kind: "Sphere", Radius: 2}
	s, err = single.SDF3()
	require.NoError(t, err)
	assert.InDelta(t, -2, s.Evaluate(v3Of(0, 0, 0)), 1e-12)
	assert.False(t, math.IsNaN(s.Evaluate(v3Of(1, 1, 1))))
}
