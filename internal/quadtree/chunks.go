package quadtree

import "github.com/overviewer-go/quadtree/internal/worldapi"

// ChunkCandidate is one chunk that may contribute pixels to a leaf tile.
type ChunkCandidate struct {
	Col, Row       int
	ChunkX, ChunkY int
	RegionPath     string
}

// ChunksInWindow enumerates the chunks relevant to rendering a leaf tile
// spanning [colstart, colend] × [rowstart, rowend] (inclusive).
//
// Two asymmetries are intentional and compensate for the staggered-grid
// geometry; don't "simplify" them away:
//   - the row range extends 16 rows further north (rowstart-16) than the
//     tile itself, because tall structures can extend upward into this
//     tile from chunks far to the south;
//   - the column range is inclusive of colend (not colend-1), which pulls
//     in the edge column from the tile's right neighbor.
func ChunksInWindow(world worldapi.World, colstart, colend, rowstart, rowend int) []ChunkCandidate {
	var out []ChunkCandidate
	for row := rowstart - 16; row <= rowend; row++ {
		for col := colstart; col <= colend; col++ {
			// Chunks occupy only cells where col ≡ row (mod 2); otherwise
			// the staggered grid would double-count.
			if mod2(row) != mod2(col) {
				continue
			}

			chunkX, chunkY := world.UnconvertCoords(col, row)
			rx, ry := floorDiv(chunkX, 32), floorDiv(chunkY, 32)
			path, ok := world.RegionPath(rx, ry)
			if !ok {
				continue
			}

			out = append(out, ChunkCandidate{
				Col: col, Row: row,
				ChunkX: chunkX, ChunkY: chunkY,
				RegionPath: path,
			})
		}
	}
	return out
}

// mod2 is Euclidean mod 2 (always 0 or 1); Go's % keeps the sign of the
// dividend, which would break the parity check for negative coordinates.
func mod2(x int) int {
	m := x % 2
	if m < 0 {
		m += 2
	}
	return m
}

// floorDiv is integer division rounding toward negative infinity, needed
// for mapping negative chunk coordinates onto their containing region.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
