// Package quadtree implements the coordinate model and tree topology
// manager: depth selection, path↔window translation, chunk-window
// enumeration, and in-place grow/shrink rebalancing of the on-disk tile
// tree. It knows nothing about pixels — that's internal/render.
package quadtree

import (
	"fmt"

	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// MaxDepth is the hard cap on quadtree depth. A world whose bounds would
// require exceeding it is a fatal configuration error.
const MaxDepth = 15

// ErrMapTooLarge is returned by ComputeDepth when the world's bounds
// exceed what MaxDepth levels can represent.
var ErrMapTooLarge = fmt.Errorf("world bounds exceed maximum quadtree depth (%d); use an explicit depth override", MaxDepth)

// ComputeDepth returns the smallest non-negative p such that
// 2^p ≥ max(|mincol|, |maxcol|) and 2·2^p ≥ max(|minrow|, |maxrow|),
// capped at MaxDepth. Exceeding the cap returns ErrMapTooLarge.
func ComputeDepth(b worldapi.Bounds) (int, error) {
	colMag := absMax(b.MinCol, b.MaxCol)
	rowMag := absMax(b.MinRow, b.MaxRow)

	for p := 0; p <= MaxDepth; p++ {
		xradius := 1 << p
		yradius := 2 << p
		if xradius >= colMag && yradius >= rowMag {
			return p, nil
		}
	}
	return 0, ErrMapTooLarge
}

// EffectiveBounds returns the symmetric tile window for depth p:
// mincol = -2^p, maxcol = 2^p, minrow = -2·2^p, maxrow = 2·2^p.
func EffectiveBounds(p int) worldapi.Bounds {
	xradius := 1 << p
	yradius := 2 << p
	return worldapi.Bounds{MinCol: -xradius, MaxCol: xradius, MinRow: -yradius, MaxRow: yradius}
}

func absMax(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
