// Command quadtree-info inspects an existing tile tree and reports its
// detected depth and blank-tile status without rendering anything.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/overviewer-go/quadtree/internal/quadtree"
)

func main() {
	var destDir, tileTree, format string

	cmd := &cobra.Command{
		Use:   "quadtree-info",
		Short: "Print the detected depth and status of an existing tile tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()

			depth := quadtree.DetectDepth(fs, destDir)
			if depth == -1 {
				fmt.Println("no config artifact found; this tree has not been rendered yet")
				return nil
			}
			fmt.Printf("detected depth: %d (%d leaf tiles at the finest zoom)\n", depth, pow4(depth))

			tiledir := destDir + "/" + tileTree
			blankPath := fmt.Sprintf("%s/blank.%s", tiledir, format)
			if ok, _ := afero.Exists(fs, blankPath); ok {
				fmt.Printf("blank tile present: %s\n", blankPath)
			} else {
				fmt.Printf("blank tile missing: %s\n", blankPath)
			}

			rootPath := fmt.Sprintf("%s/base.%s", tiledir, format)
			if info, err := fs.Stat(rootPath); err == nil {
				fmt.Printf("root tile: %s (last rendered %s)\n", rootPath, info.ModTime())
			} else {
				fmt.Printf("root tile missing: %s\n", rootPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&destDir, "dest", "", "output directory to inspect (required)")
	cmd.Flags().StringVar(&tileTree, "tiletree", "tiles", "tile tree subdirectory under dest")
	cmd.Flags().StringVar(&format, "format", "png", "tile image format: png or jpg")
	cmd.MarkFlagRequired("dest")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func pow4(n int) int {
	r := 1
	for i := 0; i < n; i++ {
		r *= 4
	}
	return r
}
