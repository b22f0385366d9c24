package main

import (
	"github.com/spf13/cobra"
)

func newSceneCmd() *cobra.Command {
	var (
		sf  sceneFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Write a scene as JSON",
		Long: "scene writes the random scene for a seed, or converts a glTF scene,\n" +
			"to the JSON format accepted by --scene.",
		Example: "  raycast scene --seed 42 --out spheres.json\n" +
			"  raycast scene --scene room.glb --out room.json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf.resolveSeed(cmd.Flags())
			s, err := sf.load()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return s.Encode(cmd.OutOrStdout())
			}
			return s.Save(out)
		},
	}

	sf.register(cmd.Flags())
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output JSON path (- for stdout)")
	return cmd
}
