package quadtree

import (
	"sort"
	"testing"

	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// fakeWorld implements worldapi.World with an identity-ish coordinate
// mapping and a fixed set of mapped regions, enough to exercise
// ChunksInWindow's loop bounds and parity filter.
type fakeWorld struct {
	mappedRegions map[[2]int]bool
}

func (w *fakeWorld) Bounds() worldapi.Bounds { return worldapi.Bounds{} }

func (w *fakeWorld) UnconvertCoords(col, row int) (int, int) {
	return col, row
}

func (w *fakeWorld) RegionPath(rx, ry int) (string, bool) {
	if w.mappedRegions[[2]int{rx, ry}] {
		return "region.json", true
	}
	return "", false
}

func (w *fakeWorld) LoadRegion(path string) (worldapi.Region, error) {
	return nil, nil
}

func TestChunksInWindowParity(t *testing.T) {
	world := &fakeWorld{mappedRegions: map[[2]int]bool{{-1, -1}: true}}
	got := ChunksInWindow(world, -5, -3, -5, -3)
	for _, c := range got {
		if mod2(c.Col) != mod2(c.Row) {
			t.Errorf("candidate %+v violates col/row parity invariant", c)
		}
	}
}

func TestChunksInWindowBoundsAsymmetry(t *testing.T) {
	// Map every region so nothing is filtered by RegionPath, isolating the
	// loop-bound asymmetries themselves.
	world := &allMappedWorld{}

	colstart, colend, rowstart, rowend := 0, 2, 0, 4
	got := ChunksInWindow(world, colstart, colend, rowstart, rowend)

	rows := map[int]bool{}
	cols := map[int]bool{}
	for _, c := range got {
		rows[c.Row] = true
		cols[c.Col] = true
	}

	if !rows[rowstart-16] {
		t.Errorf("expected row range to extend to rowstart-16=%d, got rows %v", rowstart-16, sortedKeys(rows))
	}
	if rows[rowstart-17] {
		t.Errorf("row range extended past rowstart-16")
	}
	if !rows[rowend] {
		t.Errorf("expected row range to include rowend=%d", rowend)
	}
	if rows[rowend+1] {
		t.Errorf("row range extended past rowend")
	}
	if !cols[colend] {
		t.Errorf("expected col range to include colend=%d (inclusive asymmetry)", colend)
	}
	if cols[colend+1] {
		t.Errorf("col range extended past colend")
	}
}

type allMappedWorld struct{}

func (allMappedWorld) Bounds() worldapi.Bounds                       { return worldapi.Bounds{} }
func (allMappedWorld) UnconvertCoords(col, row int) (int, int)       { return col, row }
func (allMappedWorld) RegionPath(rx, ry int) (string, bool)          { return "region.json", true }
func (allMappedWorld) LoadRegion(path string) (worldapi.Region, error) { return nil, nil }

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func TestChunksInWindowUnmappedRegionExcluded(t *testing.T) {
	world := &fakeWorld{mappedRegions: map[[2]int]bool{}}
	got := ChunksInWindow(world, 0, 2, 0, 4)
	if len(got) != 0 {
		t.Errorf("expected no candidates with no mapped regions, got %d", len(got))
	}
}

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{31, 32, 0},
		{32, 32, 1},
		{-1, 32, -1},
		{-32, 32, -1},
		{-33, 32, -2},
	}
	for _, tc := range cases {
		if got := floorDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("floorDiv(%d, %d) = %d; want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
