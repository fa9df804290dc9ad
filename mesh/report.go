package mesh

import (
	"fmt"
	"strings"
)

/*
TessellationError is the repair report attached to a mesh. It is filled in as the topology is built and describes
both what was fixed and what could not be: SingleSidedEdges lists the edges still bordering a hole, and
DegenerateFaces the faces left without a usable normal. Neither is fatal, a mesh with a non empty report can still
be drawn and queried.
*/
type TessellationError struct {
	SingleSidedEdges     []int
	DegenerateFaces      []int
	OverusedEdgesFound   int
	VerticesMerged       int
	FacesRemoved         int // Faces collapsed by vertex merging
	FacesFlipped         int
	HolesPatched         int
	FacesAddedByPatching int
	ToleranceUsed        float64
	ToleranceAttempts    int
}

// NoErrors is true when the mesh is closed and every face has a normal
func (te *TessellationError) NoErrors() bool {
	return te == nil || (len(te.SingleSidedEdges) == 0 && len(te.DegenerateFaces) == 0)
}

func (te *TessellationError) Error() string { return te.String() }

func (te *TessellationError) String() string {
	if te == nil {
		return "no repair report"
	}
	var sb strings.Builder
	if te.NoErrors() {
		sb.WriteString("closed mesh")
	} else {
		sb.WriteString(fmt.Sprintf("open mesh: %d single sided edges, %d degenerate faces",
			len(te.SingleSidedEdges), len(te.DegenerateFaces)))
	}
	sb.WriteString(fmt.Sprintf("; repairs: %d overused edges, %d vertices merged, %d faces removed, "+
		"%d faces flipped, %d holes patched with %d faces; tolerance %g after %d attempts",
		te.OverusedEdgesFound, te.VerticesMerged, te.FacesRemoved, te.FacesFlipped,
		te.HolesPatched, te.FacesAddedByPatching, te.ToleranceUsed, te.ToleranceAttempts))
	return sb.String()
}
