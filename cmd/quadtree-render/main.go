// Command quadtree-render builds (or incrementally updates) a tile
// pyramid from a demo world directory.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/overviewer-go/quadtree/internal/demoworld"
	"github.com/overviewer-go/quadtree/internal/engine"
	"github.com/overviewer-go/quadtree/internal/imageio"
	"github.com/overviewer-go/quadtree/internal/worldapi"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		worldDir    string
		destDir     string
		tileTree    string
		format      string
		concurrency int
		depth       int
		lighting    bool
		night       bool
		spawn       bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "quadtree-render",
		Short: "Render a quadtree tile pyramid from a demo world directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}

			imgFormat, err := imageio.ParseFormat(format)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			world := demoworld.NewDirWorld(fs, worldDir)
			renderer := &demoworld.ColorRenderer{World: world}

			cfg := engine.Config{
				DestDir:       destDir,
				TileTree:      tileTree,
				Format:        imgFormat,
				DepthOverride: depth,
				Concurrency:   concurrency,
				RenderContext: worldapi.RenderContext{
					Lighting: lighting,
					Night:    night,
					Spawn:    spawn,
				},
			}

			start := time.Now()
			stats, err := engine.New(fs, world, renderer, cfg).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			fmt.Printf("Rendered tile pyramid at depth %d in %s\n", stats.Depth, time.Since(start).Round(time.Millisecond))
			fmt.Printf("Leaf tiles rendered:  %s\n", humanize.Comma(int64(stats.LeafTilesRendered)))
			fmt.Printf("Inner tiles rendered: %s\n", humanize.Comma(int64(stats.InnerTilesRendered)))
			return nil
		},
	}

	cmd.Flags().StringVar(&worldDir, "world", "", "demo world directory (required)")
	cmd.Flags().StringVar(&destDir, "dest", "", "output directory (required)")
	cmd.Flags().StringVar(&tileTree, "tiletree", "tiles", "tile tree subdirectory under dest")
	cmd.Flags().StringVar(&format, "format", "png", "tile image format: png or jpg")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of worker goroutines (1 disables pooling)")
	cmd.Flags().IntVar(&depth, "depth", -1, "override quadtree depth; -1 computes it from world bounds")
	cmd.Flags().BoolVar(&lighting, "lighting", false, "enable lighting in chunk renders")
	cmd.Flags().BoolVar(&night, "night", false, "render at night")
	cmd.Flags().BoolVar(&spawn, "spawn", false, "show spawn overlay")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.MarkFlagRequired("world")
	cmd.MarkFlagRequired("dest")

	return cmd
}
