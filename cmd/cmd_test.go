package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/gotess/InputParameters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A unit cube missing its top two triangles
var holedCube = []byte(`
Title: "holed cube"
Vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0], [0, 0, 1], [1, 0, 1], [1, 1, 1], [0, 1, 1]]
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

func writeHoledCube(t *testing.T) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "holed.yaml")
	require.NoError(t, os.WriteFile(path, holedCube, 0644))
	return
}

func TestRepairMesh(t *testing.T) {
	path := writeHoledCube(t)
	m, err := RepairMesh(path, InputParameters.NewBuildParameters())
	require.NoError(t, err)
	assert.True(t, m.IsClosed())
	assert.Equal(t, 1, m.Errors.HolesPatched)
	assert.Len(t, m.Faces, 12)

	bp := InputParameters.NewBuildParameters()
	bp.RepairHoles = false
	m, err = RepairMesh(path, bp)
	require.NoError(t, err)
	assert.False(t, m.IsClosed())
	assert.Len(t, m.Errors.SingleSidedEdges, 4)

	m, err = InspectMesh(path)
	require.NoError(t, err)
	assert.Len(t, m.Faces, 10)
	assert.Len(t, m.Errors.SingleSidedEdges, 4)

	_, err = RepairMesh(filepath.Join(t.TempDir(), "none.yaml"), bp)
	assert.Error(t, err)
}

func TestRepairCommand(t *testing.T) {
	var (
		path = writeHoledCube(t)
		out  = filepath.Join(t.TempDir(), "fixed.yaml")
	)
	rootCmd.SetArgs([]string{"repair", path, "-o", out})
	require.NoError(t, rootCmd.Execute())

	md, err := InputParameters.ReadMeshDocument(out)
	require.NoError(t, err)
	assert.Len(t, md.Faces, 12)

	rootCmd.SetArgs([]string{"info", out})
	assert.NoError(t, rootCmd.Execute())
}

func TestMarchSolid(t *testing.T) {
	mp := &InputParameters.MarchParameters{}
	require.NoError(t, mp.Parse([]byte(`
Title: "ball"
GridStep: 0.12
Shapes:
  - Kind: sphere
    Radius: 1
    Center: [1, 2, 3]
`)))
	m, err := MarchSolid(mp)
	require.NoError(t, err)
	assert.True(t, m.IsClosed())
	assert.InEpsilon(t, 4./3.*math.Pi, m.Volume(), 0.05)
	c := m.Center()
	assert.InDelta(t, 2, c.Y, 0.02)

	mp.GridStep = 0
	_, err = MarchSolid(mp)
	assert.Error(t, err)
}
