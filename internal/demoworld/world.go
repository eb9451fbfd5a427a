// Package demoworld is a minimal reference implementation of
// worldapi.World, worldapi.Region and worldapi.ChunkRenderer, backed by
// one JSON file per 32x32 chunk region under a directory tree. It exists
// so the engine and its CLI can be exercised end to end without a real
// Minecraft world or GeoTIFF source.
package demoworld

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// regionSize is the number of chunks along one edge of a region, matching
// Minecraft's own 32x32 region grouping.
const regionSize = 32

// chunkData is one chunk's entry in a region file.
type chunkData struct {
	Timestamp int64    `json:"timestamp"`
	Color     [4]uint8 `json:"color"`
}

type regionFile struct {
	Chunks map[string]chunkData `json:"chunks"`
}

// DirWorld maps the staggered (col, row) grid to region files under its
// world directory, one JSON document per region at regions/<rx>_<ry>.json.
type DirWorld struct {
	fs  afero.Fs
	dir string

	mu      sync.Mutex
	regions map[string]*DirRegion
}

// NewDirWorld returns a DirWorld reading region files from dir on fs.
func NewDirWorld(fs afero.Fs, dir string) *DirWorld {
	return &DirWorld{fs: fs, dir: dir, regions: map[string]*DirRegion{}}
}

// Bounds scans every region file under dir and returns the tightest
// (col, row) bounding box covering every chunk found.
func (w *DirWorld) Bounds() worldapi.Bounds {
	bounds := worldapi.Bounds{}
	first := true

	paths, err := afero.Glob(w.fs, w.dir+"/regions/*.json")
	if err != nil {
		return bounds
	}
	for _, path := range paths {
		region, err := w.LoadRegion(path)
		if err != nil {
			continue
		}
		dr := region.(*DirRegion)
		for key := range dr.doc.Chunks {
			var chunkX, chunkY int
			if _, err := fmt.Sscanf(key, "%d,%d", &chunkX, &chunkY); err != nil {
				continue
			}
			col, row := ConvertCoords(chunkX, chunkY)
			if first {
				bounds = worldapi.Bounds{MinCol: col, MaxCol: col, MinRow: row, MaxRow: row}
				first = false
				continue
			}
			bounds.MinCol = min(bounds.MinCol, col)
			bounds.MaxCol = max(bounds.MaxCol, col)
			bounds.MinRow = min(bounds.MinRow, row)
			bounds.MaxRow = max(bounds.MaxRow, row)
		}
	}
	return bounds
}

// ConvertCoords is the forward isometric-grid transform: chunk (x, y) ->
// staggered grid (col, row). UnconvertCoords is its inverse.
func ConvertCoords(chunkX, chunkY int) (col, row int) {
	return chunkX - chunkY, chunkX + chunkY
}

// UnconvertCoords is the inverse of ConvertCoords.
func (w *DirWorld) UnconvertCoords(col, row int) (chunkX, chunkY int) {
	return floorDiv(col+row, 2), floorDiv(row-col, 2)
}

// RegionPath returns the path of the region file covering chunk-region
// coordinates (rx, ry), and whether it exists on disk.
func (w *DirWorld) RegionPath(rx, ry int) (string, bool) {
	path := fmt.Sprintf("%s/regions/%d_%d.json", w.dir, rx, ry)
	if ok, err := afero.Exists(w.fs, path); err != nil || !ok {
		return "", false
	}
	return path, true
}

// LoadRegion parses (or returns a cached parse of) the region file at
// path.
func (w *DirWorld) LoadRegion(path string) (worldapi.Region, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if r, ok := w.regions[path]; ok {
		return r, nil
	}

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("load region %s: %w", path, err)
	}
	var doc regionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse region %s: %w", path, err)
	}
	r := &DirRegion{doc: doc}
	w.regions[path] = r
	return r, nil
}

// DirRegion answers existence and timestamp queries from a parsed region
// document already held in memory.
type DirRegion struct {
	doc regionFile
}

func (r *DirRegion) ChunkExists(chunkX, chunkY int) bool {
	_, ok := r.doc.Chunks[chunkKey(chunkX, chunkY)]
	return ok
}

func (r *DirRegion) ChunkTimestamp(chunkX, chunkY int) (int64, error) {
	c, ok := r.doc.Chunks[chunkKey(chunkX, chunkY)]
	if !ok {
		return 0, fmt.Errorf("chunk %d,%d not present in region", chunkX, chunkY)
	}
	return c.Timestamp, nil
}

func chunkKey(chunkX, chunkY int) string {
	return fmt.Sprintf("%d,%d", chunkX, chunkY)
}

// ColorRenderer paints each chunk's configured placeholder color into the
// destination canvas, standing in for a real chunk renderer.
type ColorRenderer struct {
	World *DirWorld
}

func (r *ColorRenderer) RenderChunk(chunkX, chunkY int, dst draw.Image, offset image.Point, ctx worldapi.RenderContext) error {
	rx, ry := floorDiv(chunkX, regionSize), floorDiv(chunkY, regionSize)
	path, ok := r.World.RegionPath(rx, ry)
	if !ok {
		return fmt.Errorf("no region for chunk %d,%d", chunkX, chunkY)
	}
	region, err := r.World.LoadRegion(path)
	if err != nil {
		return err
	}
	dr := region.(*DirRegion)
	c, ok := dr.doc.Chunks[chunkKey(chunkX, chunkY)]
	if !ok {
		return fmt.Errorf("chunk %d,%d missing from region %s", chunkX, chunkY, path)
	}
	col := color.RGBA{R: c.Color[0], G: c.Color[1], B: c.Color[2], A: c.Color[3]}

	r2 := image.Rect(offset.X, offset.Y, offset.X+192, offset.Y+192)
	draw.Draw(dst, r2, &image.Uniform{C: col}, image.Point{}, draw.Src)
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
