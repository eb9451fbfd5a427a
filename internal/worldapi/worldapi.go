// Package worldapi defines the contract between the quadtree engine and
// its external collaborators: the world model (chunk/region geometry) and
// the chunk renderer. Both are out of scope for this module — callers
// supply their own implementations; internal/demoworld ships a minimal
// reference implementation used by the CLI and by the engine's own tests.
package worldapi

import (
	"image"
	"image/draw"
)

// Bounds is the world's chunk-grid bounding box: four signed integers in a
// coordinate system where a chunk occupies grid cell (col, row) only when
// col ≡ row (mod 2). Rows are twice as dense as columns.
type Bounds struct {
	MinCol, MaxCol int
	MinRow, MaxRow int
}

// World is the read-only collaborator that yields world geometry. All
// methods must be safe for concurrent use — the pipeline calls them from
// many worker goroutines at once, and never mutates anything it reads.
type World interface {
	// Bounds returns the world's chunk-grid bounding box.
	Bounds() Bounds

	// UnconvertCoords translates a staggered grid cell (col, row) into the
	// chunk coordinate system (chunkx, chunky).
	UnconvertCoords(col, row int) (chunkX, chunkY int)

	// RegionPath returns the path of the region file covering chunk-region
	// coordinates (rx, ry) = (chunkx div 32, chunky div 32), and whether one
	// exists. A defaulting lookup: ok is false when no region is mapped.
	RegionPath(rx, ry int) (path string, ok bool)

	// LoadRegion opens (or returns a cached handle for) the region at path.
	LoadRegion(path string) (Region, error)
}

// Region answers per-chunk existence and freshness queries for a single
// region file. Implementations are expected to cache their own parse so
// that repeated LoadRegion calls for the same path are cheap.
type Region interface {
	// ChunkExists reports whether the region actually contains data for
	// (chunkx, chunky) — a region's chunk-coordinate extent may contain
	// cells that were never populated.
	ChunkExists(chunkX, chunkY int) bool

	// ChunkTimestamp returns the chunk's last-modified time as a Unix
	// timestamp in seconds.
	ChunkTimestamp(chunkX, chunkY int) (int64, error)
}

// RenderContext carries the lighting/night/spawn flags passed through to
// the chunk renderer unchanged on every call.
type RenderContext struct {
	Lighting bool
	Night    bool
	Spawn    bool
}

// ChunkRenderer draws a single chunk onto dst at the given pixel offset.
type ChunkRenderer interface {
	RenderChunk(chunkX, chunkY int, dst draw.Image, offset image.Point, ctx RenderContext) error
}
