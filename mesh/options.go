package mesh

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
)

const (
	// SingleSidedThreshold is the fraction of single sided edges above which the merge tolerance is grown
	SingleSidedThreshold = 0.10
	// MaxToleranceAttempts is the number of tolerance expansions tried before giving up
	MaxToleranceAttempts = 6
	// MaxNormalAdoptionPasses bounds the propagation of normals into chains of degenerate faces
	MaxNormalAdoptionPasses = 10
	// NormalAdoptionCosine is how closely the two donor normals must agree before a degenerate face adopts them
	NormalAdoptionCosine = 0.99
	// FlatAngleTolerance is the fold in radians below which an edge is classified as flat
	FlatAngleTolerance = 1.0e-3
	// DefaultLazyEdgeFaceLimit is the face count above which edges are deferred unless predefined
	DefaultLazyEdgeFaceLimit = 50000
)

// Units is the declared length unit of the coordinates
type Units uint8

const (
	Unspecified Units = iota
	Millimeter
	Centimeter
	Meter
	Inch
	Foot
)

var unitNames = [...]string{"unspecified", "millimeter", "centimeter", "meter", "inch", "foot"}

func (u Units) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("Units(%d)", u)
}

// ParseUnits accepts the unit names case insensitively, along with the usual abbreviations
func ParseUnits(s string) (u Units, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		u = Unspecified
	case "mm", "millimeter", "millimeters":
		u = Millimeter
	case "cm", "centimeter", "centimeters":
		u = Centimeter
	case "m", "meter", "meters":
		u = Meter
	case "in", "inch", "inches":
		u = Inch
	case "ft", "foot", "feet":
		u = Foot
	default:
		err = fmt.Errorf("unknown length unit %q", s)
	}
	return
}

// BuildOptions controls how a mesh is assembled from raw faces
type BuildOptions struct {
	AutomaticallyRepairHoles        bool // Patch border loops left after defect resolution
	AutomaticallyRepairBadFaces     bool // Flip mismatched windings and give degenerate faces a normal
	PredefineAllEdges               bool // Build edges at construction regardless of mesh size
	CheckModelIntegrity             bool // Run the repair pipeline, otherwise edges are derived as found
	CopyElementsPassedToConstructor bool // Copy the caller's face index slices instead of taking them
	FindNonsmoothEdges              bool // Classify the curvature of every edge

	VertexTolerance   float64 // Merge tolerance, zero derives one from the model size
	LazyEdgeFaceLimit int     // Face count above which edges are deferred, zero never defers
	Units             Units
	Colors            []color.RGBA // Optional per face colors
	Logger            *slog.Logger // Defaults to slog.Default()
}

// DefaultBuildOptions turns on every repair
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		AutomaticallyRepairHoles:        true,
		AutomaticallyRepairBadFaces:     true,
		PredefineAllEdges:               false,
		CheckModelIntegrity:             true,
		CopyElementsPassedToConstructor: true,
		FindNonsmoothEdges:              true,
		LazyEdgeFaceLimit:               DefaultLazyEdgeFaceLimit,
	}
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
