package render

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/imageio"
)

// innerSize is the fixed canvas dimension for both inner tiles and the
// resized children pasted into them.
const innerSize = 384

// childOffset is the paste offset of child digit d on the 384x384 inner
// canvas, each child resized to 192x192 first.
var childOffset = [4]image.Point{
	{X: 0, Y: 0},
	{X: innerSize / 2, Y: 0},
	{X: 0, Y: innerSize / 2},
	{X: innerSize / 2, Y: innerSize / 2},
}

// RenderInner renders (or deletes) the inner tile at destPath, compositing
// it from its (up to four) children at childPaths.
//
// childPaths[d] == "" means child d does not exist, so that quadrant has
// no child to composite.
func RenderInner(fs afero.Fs, format imageio.Format, destPath string, childPaths [4]string) error {
	// Step 1 — stat the target.
	targetInfo, statErr := fs.Stat(destPath)
	targetExists := statErr == nil
	var targetModTime int64
	if targetExists {
		targetModTime = targetInfo.ModTime().Unix()
	}

	// Step 2 — stat children, filter to those that exist, decide rerender.
	type existingChild struct {
		digit int
		path  string
	}
	var existing []existingChild
	needsRerender := !targetExists

	for d, p := range childPaths {
		if p == "" {
			continue
		}
		info, err := fs.Stat(p)
		if err != nil {
			continue // child vanished between enumeration and stat; treat as absent
		}
		existing = append(existing, existingChild{digit: d, path: p})
		if info.ModTime().Unix() > targetModTime {
			needsRerender = true
		}
	}

	// Step 3 — no children at all.
	if len(existing) == 0 {
		if targetExists {
			if err := fs.Remove(destPath); err != nil {
				return fmt.Errorf("render inner %s: remove empty tile: %w", destPath, err)
			}
		}
		return nil
	}

	// Step 4 — no rerender needed.
	if !needsRerender {
		return nil
	}

	// Step 5 — composite.
	if err := mkdirAllTolerant(fs, dirOf(destPath)); err != nil {
		return fmt.Errorf("render inner %s: mkdir: %w", destPath, err)
	}

	canvas := imageio.NewCanvas(innerSize, innerSize)
	for _, c := range existing {
		child, err := imageio.Open(fs, c.path, format)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"tile":  destPath,
				"child": c.path,
			}).Warnf("corrupt child tile, skipping: %v", err)
			continue
		}
		resized := imageio.ResizeHighQuality(child, innerSize/2, innerSize/2)
		imageio.Paste(canvas, resized, childOffset[c.digit])
	}

	if err := imageio.SaveAtomic(fs, destPath, canvas, format); err != nil {
		return fmt.Errorf("render inner %s: save: %w", destPath, err)
	}
	return nil
}
