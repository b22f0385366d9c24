// raycast - CPU sphere ray caster
// Render scenes of spheres and lights to PNG, or preview them in the terminal.
//
// Commands:
//
//	render   - Cast one ray per pixel and write a PNG
//	preview  - Interactive terminal view with a movable point light
//	scene    - Write a generated random scene as JSON
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "raycast",
		Short: "CPU sphere ray caster",
		Long: "raycast renders scenes made of spheres and ambient, point and directional lights.\n" +
			"Scenes come from a JSON file, a glTF file, or a seeded random generator.",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newPreviewCmd(), newSceneCmd())
	return root
}
