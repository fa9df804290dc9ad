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
	"os"

	"github.com/notargets/gotess/InputParameters"
	"github.com/notargets/gotess/marching"
	"github.com/notargets/gotess/mesh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MarchCmd represents the march command
var MarchCmd = &cobra.Command{
	Use:   "march <params.yaml>",
	Short: "Extract the surface of a solid built from primitives",
	Long: `
Combines sphere, box and cylinder primitives and meshes the result with marching cubes, for example:

########################################
Title: "drilled block"
GridStep: 0.05
Operation: difference # union, difference or intersection
Shapes:
  - Kind: box
    Size: [2, 2, 2]
  - Kind: cylinder
    Radius: 0.5
    Height: 3
########################################

gotess march block.yaml -o block_mesh.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			data []byte
			mp   = &InputParameters.MarchParameters{}
			m    *mesh.Mesh
		)
		if data, err = os.ReadFile(args[0]); err != nil {
			return
		}
		if err = mp.Parse(data); err != nil {
			return
		}
		if step := viper.GetFloat64("march.gridStep"); step > 0 {
			mp.GridStep = step
		}
		mp.Build = buildParameters("march", mp.Build)
		if viper.GetBool("verbose") {
			mp.Print()
		}
		if m, err = MarchSolid(mp); err != nil {
			return
		}
		m.Statistics().Print()
		fmt.Printf("Repair: %s\n", m.Errors.String())
		return writeMesh(m, viper.GetString("march.output"))
	},
}

func init() {
	rootCmd.AddCommand(MarchCmd)
	MarchCmd.Flags().StringP("output", "o", "", "YAML file for the extracted mesh")
	MarchCmd.Flags().Float64P("gridStep", "s", 0, "lattice step, overrides GridStep of the parameters file")
	_ = viper.BindPFlag("march.gridStep", MarchCmd.Flags().Lookup("gridStep"))
	addBuildFlags(MarchCmd, "march")
}

// MarchSolid meshes the combined shapes of mp
func MarchSolid(mp *InputParameters.MarchParameters) (m *mesh.Mesh, err error) {
	var opts mesh.BuildOptions
	if mp.GridStep <= 0 {
		err = fmt.Errorf("grid step must be positive, have %g", mp.GridStep)
		return
	}
	solid, err := mp.Solid()
	if err != nil {
		return
	}
	if mp.Build == nil {
		mp.Build = InputParameters.NewBuildParameters()
	}
	if opts, err = mp.Build.ToOptions(); err != nil {
		return
	}
	mc := marching.NewSDFMarcher(solid, mp.GridStep)
	if mp.Margin > 0 {
		mc.Margin = mp.Margin
	}
	mc.Logger = slog.Default().With("job", mp.Title)
	return mc.Mesh(opts)
}
