package quadtree

import (
	"strconv"
	"strings"

	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// Path is a sequence of base-4 digits {0,1,2,3} addressing a quadtree
// node, rooted at the world's effective bounds. Length 0 addresses the
// root ("base"); length p addresses a leaf.
//
// Digit semantics at each level: 0 = (-x,-y), 1 = (+x,-y), 2 = (-x,+y),
// 3 = (+x,+y).
type Path []int

// Append returns a new Path with digit d appended.
func (p Path) Append(d int) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = d
	return next
}

// Dir returns the slash-joined directory containing this path's file —
// i.e. all digits but the last, joined with "/". Empty for length-0 and
// length-1 paths (both live directly in the tile directory).
func (p Path) Dir() string {
	if len(p) <= 1 {
		return ""
	}
	return p[:len(p)-1].Join()
}

// Name returns the file stem for this path: "base" for the root, or the
// last digit otherwise.
func (p Path) Name() string {
	if len(p) == 0 {
		return "base"
	}
	return strconv.Itoa(p[len(p)-1])
}

// Join renders the full digit sequence joined with "/", e.g. "1/3/0".
func (p Path) Join() string {
	parts := make([]string, len(p))
	for i, d := range p {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "/")
}

// IterateBase4 calls fn for every path of exactly length d, in base-4
// order (digit 0 varies slowest).
func IterateBase4(d int, fn func(Path)) {
	path := make(Path, d)
	var rec func(i int)
	rec = func(i int) {
		if i == d {
			cp := make(Path, d)
			copy(cp, path)
			fn(cp)
			return
		}
		for digit := 0; digit < 4; digit++ {
			path[i] = digit
			rec(i + 1)
		}
	}
	rec(0)
}

// WindowOfPath walks bounds from (MinCol, MinRow) halving the remaining
// (xsize, ysize) at each digit: for digit d, add the current xsize to col
// if d ∈ {1,3}, add the current ysize to row if d ∈ {2,3}, then halve both
// sizes.
func WindowOfPath(bounds worldapi.Bounds, path Path) (colstart, rowstart int) {
	col, row := bounds.MinCol, bounds.MinRow
	xsize, ysize := bounds.MaxCol, bounds.MaxRow

	for _, d := range path {
		if d == 1 || d == 3 {
			col += xsize
		}
		if d == 2 || d == 3 {
			row += ysize
		}
		xsize /= 2
		ysize /= 2
	}
	return col, row
}

// LeafWindow returns the chunk-coordinate window a leaf tile at path
// covers. Leaf windows always span 2 columns × 4 rows, regardless of the
// tree's depth — the halved xsize/ysize from WindowOfPath converge to
// exactly that width when len(path) == p, but the leaf renderer always
// uses this fixed +2/+4 span.
func LeafWindow(bounds worldapi.Bounds, path Path) (colstart, colend, rowstart, rowend int) {
	colstart, rowstart = WindowOfPath(bounds, path)
	return colstart, colstart + 2, rowstart, rowstart + 4
}
