/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/notargets/gotess/mesh"
	"github.com/spf13/cobra"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info <mesh.yaml>",
	Short: "Report the statistics and defects of a surface mesh without repairing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var m *mesh.Mesh
		if m, err = InspectMesh(args[0]); err != nil {
			return
		}
		m.Statistics().Print()
		fmt.Printf("Defects: %s\n", m.Errors.String())
		counts := make(map[mesh.CurvatureType]int)
		for ei, e := range m.Edges {
			m.EdgeInternalAngle(ei)
			counts[e.Curvature]++
		}
		for _, c := range []mesh.CurvatureType{mesh.Convex, mesh.Concave, mesh.SaddleOrFlat, mesh.Undefined} {
			fmt.Printf("  %s edges: %d\n", c, counts[c])
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}

// InspectMesh builds the mesh with the integrity check on and every repair off
func InspectMesh(path string) (m *mesh.Mesh, err error) {
	bp := buildParameters("info", nil)
	bp.RepairHoles, bp.RepairBadFaces = false, false
	bp.CheckIntegrity, bp.FindNonsmooth = true, true
	return RepairMesh(path, bp)
}
