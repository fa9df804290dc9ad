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
	"log/slog"

	"github.com/notargets/gotess/InputParameters"
	"github.com/notargets/gotess/mesh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RepairCmd represents the repair command
var RepairCmd = &cobra.Command{
	Use:   "repair <mesh.yaml>",
	Short: "Repair a surface mesh and report what was fixed",
	Long: `
Merges duplicate vertices, resolves over-defined edges, makes the face winding consistent and patches holes.
Settings come from the repair section of the config file, flags override them.

gotess repair cube.yaml -o fixed.yaml --holes=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var m *mesh.Mesh
		if m, err = RepairMesh(args[0], buildParameters("repair", nil)); err != nil {
			return
		}
		m.Statistics().Print()
		fmt.Printf("Repair: %s\n", m.Errors.String())
		return writeMesh(m, viper.GetString("repair.output"))
	},
}

func init() {
	rootCmd.AddCommand(RepairCmd)
	RepairCmd.Flags().StringP("output", "o", "", "YAML file for the repaired mesh")
	addBuildFlags(RepairCmd, "repair")
}

// addBuildFlags binds the mesh build flags of a command to viper keys under section
func addBuildFlags(cmd *cobra.Command, section string) {
	cmd.Flags().Bool("holes", true, "patch holes left after repair")
	cmd.Flags().Bool("badFaces", true, "flip mismatched faces and give degenerate faces a normal")
	cmd.Flags().Bool("checkIntegrity", true, "run the repair pipeline")
	cmd.Flags().Bool("predefineEdges", false, "build edges even for very large meshes")
	cmd.Flags().Bool("findNonsmooth", true, "classify the curvature of every edge")
	cmd.Flags().Float64("tolerance", 0, "vertex merge tolerance, 0 derives one from the model size")
	cmd.Flags().String("units", "", "length units of the coordinates")
	for _, name := range []string{"output", "holes", "badFaces", "checkIntegrity", "predefineEdges",
		"findNonsmooth", "tolerance", "units"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(section+"."+name, f)
		}
	}
}

// buildParameters overlays the viper keys that are set onto bp, or onto the defaults when bp is nil
func buildParameters(section string, bp *InputParameters.BuildParameters) *InputParameters.BuildParameters {
	if bp == nil {
		bp = InputParameters.NewBuildParameters()
	}
	setBool := func(key string, b *bool) {
		if viper.IsSet(section + "." + key) {
			*b = viper.GetBool(section + "." + key)
		}
	}
	setBool("holes", &bp.RepairHoles)
	setBool("badFaces", &bp.RepairBadFaces)
	setBool("checkIntegrity", &bp.CheckIntegrity)
	setBool("predefineEdges", &bp.PredefineEdges)
	setBool("findNonsmooth", &bp.FindNonsmooth)
	if key := section + ".tolerance"; viper.IsSet(key) {
		bp.VertexTolerance = viper.GetFloat64(key)
	}
	if key := section + ".units"; viper.IsSet(key) {
		bp.Units = viper.GetString(key)
	}
	return bp
}

// RepairMesh reads a mesh document and builds it with the repairs bp asks for
func RepairMesh(path string, bp *InputParameters.BuildParameters) (m *mesh.Mesh, err error) {
	var (
		md   *InputParameters.MeshDocument
		opts mesh.BuildOptions
	)
	if md, err = InputParameters.ReadMeshDocument(path); err != nil {
		return
	}
	if opts, err = bp.ToOptions(); err != nil {
		return
	}
	opts.Logger = slog.Default().With("mesh", path)
	if m, err = md.Mesh(opts); err != nil {
		return
	}
	// Lazily built edges are needed for the report
	m.MakeEdgesIfNonExistent()
	return
}

func writeMesh(m *mesh.Mesh, path string) (err error) {
	if path == "" {
		return
	}
	if err = InputParameters.NewMeshDocument(m).Write(path); err != nil {
		return
	}
	slog.Info("wrote mesh", "file", path, "faces", len(m.Faces))
	return
}
