// Package render implements the leaf and inner tile renderers: the two
// operations that actually produce pixels, driven by the topology and
// scheduling decisions made in internal/quadtree and internal/engine.
package render

import (
	"fmt"
	"image"

	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/imageio"
	"github.com/overviewer-go/quadtree/internal/quadtree"
	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// leafWidth and leafHeight are the pixel width of one grid column and the
// pixel height of one grid row. A canonical leaf spans 2 columns x 4 rows
// of the staggered grid, giving a 384x384 tile.
const (
	leafWidth  = 192
	leafHeight = 96
)

// RenderLeaf renders (or deletes) the leaf tile at destPath, covering
// chunk window [colstart,colend] x [rowstart,rowend]. chunks is the
// candidate list from quadtree.ChunksInWindow for that same window.
//
// Returns the number of chunks actually rendered (0 if the tile was
// deleted or left untouched).
func RenderLeaf(
	fs afero.Fs,
	world worldapi.World,
	renderer worldapi.ChunkRenderer,
	ctx worldapi.RenderContext,
	format imageio.Format,
	chunks []quadtree.ChunkCandidate,
	colstart, colend, rowstart, rowend int,
	destPath string,
) (int, error) {
	// Step 1 — existence filter.
	live := make([]quadtree.ChunkCandidate, 0, len(chunks))
	regions := map[string]worldapi.Region{}
	for _, c := range chunks {
		region, ok := regions[c.RegionPath]
		if !ok {
			r, err := world.LoadRegion(c.RegionPath)
			if err != nil {
				return 0, fmt.Errorf("render leaf %s: load region %s: %w", destPath, c.RegionPath, err)
			}
			region = r
			regions[c.RegionPath] = region
		}
		if region.ChunkExists(c.ChunkX, c.ChunkY) {
			live = append(live, c)
		}
	}

	// Step 2 — tile-file mtime.
	info, statErr := fs.Stat(destPath)
	tileExists := statErr == nil
	var tileModTime int64
	if tileExists {
		tileModTime = info.ModTime().Unix()
	}

	// Step 3 — empty handling.
	if len(live) == 0 {
		if tileExists {
			if err := fs.Remove(destPath); err != nil {
				return 0, fmt.Errorf("render leaf %s: remove empty tile: %w", destPath, err)
			}
		}
		return 0, nil
	}

	// Step 4 — parent directory creation, tolerant of races.
	if err := mkdirAllTolerant(fs, dirOf(destPath)); err != nil {
		return 0, fmt.Errorf("render leaf %s: mkdir: %w", destPath, err)
	}

	// Step 5 — freshness check.
	needsRerender := !tileExists
	regionModTimes := map[string]int64{}
	if !needsRerender {
		for _, c := range live {
			regionMod, cached := regionModTimes[c.RegionPath]
			if !cached {
				info, err := fs.Stat(c.RegionPath)
				if err != nil {
					return 0, fmt.Errorf("render leaf %s: stat region %s: %w", destPath, c.RegionPath, err)
				}
				regionMod = info.ModTime().Unix()
				regionModTimes[c.RegionPath] = regionMod
			}
			if regionMod <= tileModTime {
				continue
			}
			region := regions[c.RegionPath]
			ts, err := region.ChunkTimestamp(c.ChunkX, c.ChunkY)
			if err != nil {
				return 0, fmt.Errorf("render leaf %s: chunk timestamp: %w", destPath, err)
			}
			if ts > tileModTime {
				needsRerender = true
				break
			}
		}
	}
	if !needsRerender {
		return 0, nil
	}

	// Step 6 — render.
	width := leafWidth * (colend - colstart)
	height := leafHeight * (rowend - rowstart)
	canvas := imageio.NewCanvas(width, height)

	for _, c := range live {
		xpos := -leafWidth + (c.Col-colstart)*leafWidth
		ypos := -leafHeight + (c.Row-rowstart)*leafHeight
		offset := image.Pt(xpos, ypos)
		if err := renderer.RenderChunk(c.ChunkX, c.ChunkY, canvas, offset, ctx); err != nil {
			return 0, fmt.Errorf("render leaf %s: chunk %d,%d: %w", destPath, c.ChunkX, c.ChunkY, err)
		}
	}

	if err := imageio.SaveAtomic(fs, destPath, canvas, format); err != nil {
		return 0, fmt.Errorf("render leaf %s: save: %w", destPath, err)
	}
	return len(live), nil
}
