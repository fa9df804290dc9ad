package marching

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gotess/geometry"
	"github.com/notargets/gotess/geometry2D"
	"github.com/notargets/gotess/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// LayerAlignmentTolerance is the relative slack allowed when deciding whether the grid step divides the layer spacing
const LayerAlignmentTolerance = 1.0e-6

/*
CrossSection is one planar slice of a solid at height Z. Outer boundaries run counter-clockwise and holes clockwise,
so the solid is always to the left of a directed polygon edge.
*/
type CrossSection struct {
	Z        float64
	Polygons [][][2]float64
}

/*
CrossSectionStack samples a solid described by equally spaced cross sections. Each layer carries a signed distance
grid over the marching lattice, negative inside; cells farther than Band from every polygon edge hold ±Inf. Between
layers values are snapped to the nearest layer when the lattice lands on the layers, and interpolated otherwise.
*/
type CrossSectionStack struct {
	Layers  []CrossSection
	Band    float64
	Lattice Lattice
	Snap    bool // The grid step divides the layer spacing and the lattice levels fall on the layers

	spacing float64
	margin  float64
	grids   [][]float64 // Per layer, indexed i + N[0]*j
	bounds  r3.Box
}

/*
NewCrossSectionStack computes the layer distance grids for marching at the given step and margin. Layers are sorted
by height and must be equally spaced. The grids are computed in parallel over lattice columns; parallelDegree <= 0
uses every CPU.
*/
func NewCrossSectionStack(layers []CrossSection, step, margin float64, parallelDegree int) (s *CrossSectionStack,
	err error) {
	if len(layers) < 2 {
		err = fmt.Errorf("need at least 2 cross sections, have %d", len(layers))
		return
	}
	s = &CrossSectionStack{
		Layers: append([]CrossSection(nil), layers...),
		Band:   3 * step,
		margin: margin,
	}
	sort.Slice(s.Layers, func(i, j int) bool { return s.Layers[i].Z < s.Layers[j].Z })
	s.spacing = s.Layers[1].Z - s.Layers[0].Z
	for i := 1; i < len(s.Layers); i++ {
		dz := s.Layers[i].Z - s.Layers[i-1].Z
		if s.spacing <= 0 || math.Abs(dz-s.spacing) > LayerAlignmentTolerance*s.spacing {
			err = fmt.Errorf("cross sections must be equally spaced, layer %d is %g above the previous, expected %g",
				i, dz, s.spacing)
			return
		}
	}
	var pts [][2]float64
	for li, layer := range s.Layers {
		for pi, poly := range layer.Polygons {
			if len(poly) < 3 {
				err = fmt.Errorf("layer %d polygon %d has %d points, need at least 3", li, pi, len(poly))
				return
			}
			pts = append(pts, poly...)
		}
	}
	if len(pts) == 0 {
		err = fmt.Errorf("cross sections are empty")
		return
	}
	s.bounds = r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: s.Layers[0].Z},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: s.Layers[len(s.Layers)-1].Z},
	}
	for _, p := range pts {
		s.bounds.Min.X, s.bounds.Max.X = math.Min(s.bounds.Min.X, p[0]), math.Max(s.bounds.Max.X, p[0])
		s.bounds.Min.Y, s.bounds.Max.Y = math.Min(s.bounds.Min.Y, p[1]), math.Max(s.bounds.Max.Y, p[1])
	}
	if s.Lattice, err = NewLattice(s.bounds, step, margin); err != nil {
		return
	}
	var (
		ratio = s.spacing / step
		first = (s.Layers[0].Z - s.Lattice.Origin.Z) / step
	)
	s.Snap = math.Abs(ratio-math.Round(ratio)) <= LayerAlignmentTolerance*ratio &&
		math.Abs(first-math.Round(first)) <= LayerAlignmentTolerance*math.Max(1, first)
	s.grids = make([][]float64, len(s.Layers))
	for li := range s.Layers {
		s.grids[li] = s.distanceGrid(s.Layers[li].Polygons, parallelDegree)
	}
	return
}

// distanceGrid fills one layer, each lattice column is independent
func (s *CrossSectionStack) distanceGrid(polys [][][2]float64, parallelDegree int) (grid []float64) {
	var (
		nx, ny = s.Lattice.N[0], s.Lattice.N[1]
	)
	grid = make([]float64, nx*ny)
	utils.ParallelFor(parallelDegree, nx, func(i int) {
		for j := 0; j < ny; j++ {
			p := s.Lattice.Point(i, j, 0)
			grid[i+nx*j] = signedDistance2D([2]float64{p.X, p.Y}, polys, s.Band)
		}
	})
	return
}

/*
signedDistance2D sweeps the directed polygon edges once, tracking the nearest edge and the winding number of the
point. The result is negative inside, and ±Inf beyond band.
*/
func signedDistance2D(p [2]float64, polys [][][2]float64, band float64) float64 {
	var (
		d2      = math.Inf(1)
		winding int
	)
	for _, poly := range polys {
		for n := range poly {
			a, b := poly[n], poly[(n+1)%len(poly)]
			d2 = math.Min(d2, segmentDistance2(p, a, b))
			// Crossings of the ray to +x: upward edges with p on their left count +1, downward with p on the right -1
			if a[1] <= p[1] {
				if b[1] > p[1] && geometry2D.SignedArea([][2]float64{a, b, p}) > 0 {
					winding++
				}
			} else if b[1] <= p[1] && geometry2D.SignedArea([][2]float64{a, b, p}) < 0 {
				winding--
			}
		}
	}
	sign := 1.
	if winding != 0 {
		sign = -1
	}
	d := math.Sqrt(d2)
	if d > band {
		return math.Inf(int(sign))
	}
	return sign * d
}

func segmentDistance2(p, a, b [2]float64) float64 {
	d := geometry.DistanceToSegment(r3.Vec{X: p[0], Y: p[1]}, r3.Vec{X: a[0], Y: a[1]}, r3.Vec{X: b[0], Y: b[1]})
	return d * d
}

func (s *CrossSectionStack) Bounds() r3.Box { return s.bounds }

// Sample is valid between the first and last layer, over the lattice the grids were computed on
func (s *CrossSectionStack) Sample(p r3.Vec) (v float64, ok bool) {
	var (
		l     = s.Lattice
		i     = int(math.Round((p.X - l.Origin.X) / l.Step))
		j     = int(math.Round((p.Y - l.Origin.Y) / l.Step))
		z0    = s.Layers[0].Z
		last  = len(s.Layers) - 1
		slack = LayerAlignmentTolerance * s.spacing
	)
	if i < 0 || i >= l.N[0] || j < 0 || j >= l.N[1] || p.Z < z0-slack || p.Z > s.Layers[last].Z+slack {
		return
	}
	var (
		cell = i + l.N[0]*j
		f    = (p.Z - z0) / s.spacing
		near = int(math.Round(f))
	)
	if s.Snap || math.Abs(f-float64(near)) <= LayerAlignmentTolerance {
		return s.grids[near][cell], true
	}
	lo := int(math.Floor(f))
	if lo >= last {
		lo = last - 1
	}
	var (
		w      = f - float64(lo)
		va, vb = s.grids[lo][cell], s.grids[lo+1][cell]
	)
	if math.IsInf(va, 0) || math.IsInf(vb, 0) {
		return s.grids[near][cell], true
	}
	return (1-w)*va + w*vb, true
}

func (s *CrossSectionStack) Inside(v float64) bool { return v < 0 }

// Offset interpolates the signed distances, a value beyond the band counts as sitting on the band
func (s *CrossSectionStack) Offset(from, to float64, p0, p1 r3.Vec) float64 {
	if math.IsInf(from, 0) {
		from = math.Copysign(s.Band, from)
	}
	if math.IsInf(to, 0) {
		to = math.Copysign(s.Band, to)
	}
	return linearZero(from, to)
}

// NewCrossSectionMarcher marches the stack on the lattice its grids were computed for
func NewCrossSectionMarcher(s *CrossSectionStack) *MarchingCubes[*CrossSectionStack, float64] {
	return New[*CrossSectionStack, float64](s, s, s.Lattice.Step, s.margin)
}
