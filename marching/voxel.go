package marching

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BisectionSteps is the number of halvings used to locate a surface crossing with a refinement function
const BisectionSteps = 20

/*
VoxelGrid is a dense boolean grid of voxels, sampled at the voxel centers. Refine, when set, is the exact inside
test of the solid the voxels were made from and is used to move surface points from the midpoint of a cut lattice
edge onto the true boundary.
*/
type VoxelGrid struct {
	Nx, Ny, Nz int
	Origin     r3.Vec // Center of voxel (0, 0, 0)
	Spacing    float64
	Cells      []bool // Indexed i + Nx*(j + Ny*k)
	Refine     func(p r3.Vec) bool
}

func NewVoxelGrid(nx, ny, nz int, origin r3.Vec, spacing float64) (g *VoxelGrid, err error) {
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("voxel grid dimensions must be positive, have %dx%dx%d", nx, ny, nz)
		return
	}
	if spacing <= 0 {
		err = fmt.Errorf("voxel spacing must be positive, have %g", spacing)
		return
	}
	g = &VoxelGrid{
		Nx: nx, Ny: ny, Nz: nz,
		Origin:  origin,
		Spacing: spacing,
		Cells:   make([]bool, nx*ny*nz),
	}
	return
}

func (g *VoxelGrid) index(i, j, k int) int { return i + g.Nx*(j+g.Ny*k) }

func (g *VoxelGrid) inRange(i, j, k int) bool {
	return i >= 0 && i < g.Nx && j >= 0 && j < g.Ny && k >= 0 && k < g.Nz
}

func (g *VoxelGrid) Set(i, j, k int, filled bool) {
	if !g.inRange(i, j, k) {
		panic(fmt.Errorf("voxel (%d,%d,%d) outside of %dx%dx%d grid", i, j, k, g.Nx, g.Ny, g.Nz))
	}
	g.Cells[g.index(i, j, k)] = filled
}

// At is false for voxels outside the grid
func (g *VoxelGrid) At(i, j, k int) bool {
	return g.inRange(i, j, k) && g.Cells[g.index(i, j, k)]
}

// Fill sets every voxel whose center is inside according to the predicate
func (g *VoxelGrid) Fill(inside func(p r3.Vec) bool) (filled int) {
	for k := 0; k < g.Nz; k++ {
		for j := 0; j < g.Ny; j++ {
			for i := 0; i < g.Nx; i++ {
				if inside(g.Center(i, j, k)) {
					g.Cells[g.index(i, j, k)] = true
					filled++
				}
			}
		}
	}
	return
}

func (g *VoxelGrid) Center(i, j, k int) r3.Vec {
	return r3.Add(g.Origin, r3.Scale(g.Spacing, r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}))
}

func (g *VoxelGrid) Bounds() r3.Box {
	return r3.Box{Min: g.Origin, Max: g.Center(g.Nx-1, g.Ny-1, g.Nz-1)}
}

// Sample reads the voxel nearest to p, points beyond the grid are not valid
func (g *VoxelGrid) Sample(p r3.Vec) (filled, ok bool) {
	var (
		d       = r3.Scale(1/g.Spacing, r3.Sub(p, g.Origin))
		i, j, k = int(math.Round(d.X)), int(math.Round(d.Y)), int(math.Round(d.Z))
	)
	if !g.inRange(i, j, k) {
		return
	}
	return g.Cells[g.index(i, j, k)], true
}

func (g *VoxelGrid) Inside(filled bool) bool { return filled }

// Offset is the midpoint, or the bisected crossing of Refine when one is set
func (g *VoxelGrid) Offset(from, to bool, p0, p1 r3.Vec) float64 {
	if g.Refine == nil || from == to {
		return 0.5
	}
	lo, hi := 0., 1.
	for n := 0; n < BisectionSteps; n++ {
		mid := 0.5 * (lo + hi)
		if g.Refine(r3.Add(p0, r3.Scale(mid, r3.Sub(p1, p0)))) == from {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// NewVoxelMarcher marches the grid at its own spacing with one voxel of empty margin
func NewVoxelMarcher(g *VoxelGrid) *MarchingCubes[*VoxelGrid, bool] {
	return New[*VoxelGrid, bool](g, g, g.Spacing, g.Spacing)
}
