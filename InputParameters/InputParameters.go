package InputParameters

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/ghodss/yaml"
	"github.com/notargets/gotess/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh build parameters obtained from the YAML input file, absent keys keep their defaults
type BuildParameters struct {
	RepairHoles       bool    `json:"RepairHoles"`
	RepairBadFaces    bool    `json:"RepairBadFaces"`
	PredefineEdges    bool    `json:"PredefineEdges"`
	CheckIntegrity    bool    `json:"CheckIntegrity"`
	CopyElements      bool    `json:"CopyElements"`
	FindNonsmooth     bool    `json:"FindNonsmoothEdges"`
	VertexTolerance   float64 `json:"VertexTolerance"`
	LazyEdgeFaceLimit int     `json:"LazyEdgeFaceLimit"`
	Units             string  `json:"Units"`
}

func NewBuildParameters() (bp *BuildParameters) {
	o := mesh.DefaultBuildOptions()
	return &BuildParameters{
		RepairHoles:       o.AutomaticallyRepairHoles,
		RepairBadFaces:    o.AutomaticallyRepairBadFaces,
		PredefineEdges:    o.PredefineAllEdges,
		CheckIntegrity:    o.CheckModelIntegrity,
		CopyElements:      o.CopyElementsPassedToConstructor,
		FindNonsmooth:     o.FindNonsmoothEdges,
		LazyEdgeFaceLimit: o.LazyEdgeFaceLimit,
	}
}

func (bp *BuildParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, bp)
}

func (bp *BuildParameters) ToOptions() (opts mesh.BuildOptions, err error) {
	if opts.Units, err = mesh.ParseUnits(bp.Units); err != nil {
		return
	}
	if bp.VertexTolerance < 0 {
		err = fmt.Errorf("vertex tolerance must not be negative, have %g", bp.VertexTolerance)
		return
	}
	opts.AutomaticallyRepairHoles = bp.RepairHoles
	opts.AutomaticallyRepairBadFaces = bp.RepairBadFaces
	opts.PredefineAllEdges = bp.PredefineEdges
	opts.CheckModelIntegrity = bp.CheckIntegrity
	opts.CopyElementsPassedToConstructor = bp.CopyElements
	opts.FindNonsmoothEdges = bp.FindNonsmooth
	opts.VertexTolerance = bp.VertexTolerance
	opts.LazyEdgeFaceLimit = bp.LazyEdgeFaceLimit
	return
}

func (bp *BuildParameters) Print() {
	fmt.Printf("[%v]\t\t\t= Repair Holes\n", bp.RepairHoles)
	fmt.Printf("[%v]\t\t\t= Repair Bad Faces\n", bp.RepairBadFaces)
	fmt.Printf("[%v]\t\t\t= Predefine Edges\n", bp.PredefineEdges)
	fmt.Printf("[%v]\t\t\t= Check Integrity\n", bp.CheckIntegrity)
	fmt.Printf("[%v]\t\t\t= Find Nonsmooth Edges\n", bp.FindNonsmooth)
	fmt.Printf("%8.5g\t\t= Vertex Tolerance\n", bp.VertexTolerance)
	fmt.Printf("[%d]\t\t\t= Lazy Edge Face Limit\n", bp.LazyEdgeFaceLimit)
	fmt.Printf("[%s]\t\t\t= Units\n", bp.Units)
}

/*
MeshDocument is the YAML form of a surface: vertex positions and faces as rings of vertex indices. Colors, when
present, holds one RGBA quadruple per face.
*/
type MeshDocument struct {
	Title    string       `json:"Title,omitempty"`
	Units    string       `json:"Units,omitempty"`
	Vertices [][3]float64 `json:"Vertices"`
	Faces    [][]int      `json:"Faces"`
	Colors   [][4]uint8   `json:"Colors,omitempty"`
}

func (md *MeshDocument) Parse(data []byte) error {
	return yaml.Unmarshal(data, md)
}

func ReadMeshDocument(path string) (md *MeshDocument, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	md = &MeshDocument{}
	if err = md.Parse(data); err != nil {
		err = fmt.Errorf("reading mesh %s: %w", path, err)
	}
	return
}

// NewMeshDocument captures the current state of a mesh
func NewMeshDocument(m *mesh.Mesh) (md *MeshDocument) {
	md = &MeshDocument{
		Vertices: make([][3]float64, len(m.Vertices)),
		Faces:    make([][]int, len(m.Faces)),
		Colors:   make([][4]uint8, len(m.Faces)),
	}
	if m.Units != mesh.Unspecified {
		md.Units = m.Units.String()
	}
	for i, v := range m.Vertices {
		md.Vertices[i] = [3]float64{v.Position.X, v.Position.Y, v.Position.Z}
	}
	for i, f := range m.Faces {
		md.Faces[i] = append([]int(nil), f.Vertices...)
		c := f.PaintColor()
		md.Colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
	}
	return
}

func (md *MeshDocument) Marshal() ([]byte, error) {
	return yaml.Marshal(md)
}

func (md *MeshDocument) Write(path string) (err error) {
	var data []byte
	if data, err = md.Marshal(); err != nil {
		return
	}
	return os.WriteFile(path, data, 0644)
}

// Mesh builds the document, the document's units override the ones in opts when given
func (md *MeshDocument) Mesh(opts mesh.BuildOptions) (m *mesh.Mesh, err error) {
	if md.Units != "" {
		if opts.Units, err = mesh.ParseUnits(md.Units); err != nil {
			return
		}
	}
	if len(md.Colors) != 0 {
		opts.Colors = make([]color.RGBA, len(md.Colors))
		for i, c := range md.Colors {
			opts.Colors[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
		}
	}
	verts := make([]r3.Vec, len(md.Vertices))
	for i, p := range md.Vertices {
		verts[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return mesh.NewMesh(verts, md.Faces, opts)
}

// ShapeSpec is one sdfx primitive, centered on Center
type ShapeSpec struct {
	Kind   string     `json:"Kind"` // sphere, box or cylinder
	Center [3]float64 `json:"Center"`
	Radius float64    `json:"Radius"` // sphere and cylinder
	Size   [3]float64 `json:"Size"`   // box
	Height float64    `json:"Height"` // cylinder, along z
	Round  float64    `json:"Round"`  // edge rounding of box and cylinder
}

func (ss ShapeSpec) SDF3() (s sdf.SDF3, err error) {
	switch strings.ToLower(ss.Kind) {
	case "sphere":
		s, err = sdf.Sphere3D(ss.Radius)
	case "box":
		s, err = sdf.Box3D(v3.Vec{X: ss.Size[0], Y: ss.Size[1], Z: ss.Size[2]}, ss.Round)
	case "cylinder":
		s, err = sdf.Cylinder3D(ss.Height, ss.Radius, ss.Round)
	default:
		err = fmt.Errorf("unknown shape kind %q", ss.Kind)
	}
	if err != nil {
		return
	}
	if ss.Center != [3]float64{} {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: ss.Center[0], Y: ss.Center[1], Z: ss.Center[2]}))
	}
	return
}

// Marching cubes job parameters obtained from the YAML input file
type MarchParameters struct {
	Title     string           `json:"Title"`
	GridStep  float64          `json:"GridStep"`
	Margin    float64          `json:"Margin"`    // Zero uses one grid step
	Operation string           `json:"Operation"` // union (default), difference or intersection
	Shapes    []ShapeSpec      `json:"Shapes"`
	Build     *BuildParameters `json:"Build,omitempty"`
}

func (mp *MarchParameters) Parse(data []byte) (err error) {
	mp.Build = NewBuildParameters()
	return yaml.Unmarshal(data, mp)
}

// Solid combines the shapes, a difference subtracts every later shape from the first
func (mp *MarchParameters) Solid() (s sdf.SDF3, err error) {
	if len(mp.Shapes) == 0 {
		err = fmt.Errorf("no shapes to march")
		return
	}
	shapes := make([]sdf.SDF3, len(mp.Shapes))
	for i, ss := range mp.Shapes {
		if shapes[i], err = ss.SDF3(); err != nil {
			err = fmt.Errorf("shape %d: %w", i, err)
			return
		}
	}
	if len(shapes) == 1 {
		return shapes[0], nil
	}
	switch strings.ToLower(mp.Operation) {
	case "", "union":
		s = sdf.Union3D(shapes...)
	case "difference":
		s = sdf.Difference3D(shapes[0], sdf.Union3D(shapes[1:]...))
	case "intersection":
		s = shapes[0]
		for _, o := range shapes[1:] {
			s = sdf.Intersect3D(s, o)
		}
	default:
		err = fmt.Errorf("unknown operation %q", mp.Operation)
	}
	return
}

func (mp *MarchParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("%8.5f\t\t= Grid Step\n", mp.GridStep)
	fmt.Printf("%8.5f\t\t= Margin\n", mp.Margin)
	fmt.Printf("[%s]\t\t\t= Operation\n", mp.Operation)
	for i, ss := range mp.Shapes {
		fmt.Printf("Shapes[%d] = %s at %v\n", i, ss.Kind, ss.Center)
	}
	if mp.Build != nil {
		mp.Build.Print()
	}
}
