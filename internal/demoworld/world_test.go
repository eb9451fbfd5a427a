package demoworld

import (
	"image"
	"testing"

	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/worldapi"
)

func newTestCanvas(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func pt(x, y int) image.Point { return image.Pt(x, y) }

func emptyCtx() worldapi.RenderContext { return worldapi.RenderContext{} }

func writeRegion(t *testing.T, fs afero.Fs, path, body string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing region %s: %v", path, err)
	}
}

func TestConvertUnconvertRoundTrip(t *testing.T) {
	cases := [][2]int{{0, 0}, {5, 3}, {-5, 3}, {5, -3}, {-5, -3}, {100, -100}}
	w := NewDirWorld(afero.NewMemMapFs(), "/world")
	for _, c := range cases {
		col, row := ConvertCoords(c[0], c[1])
		x, y := w.UnconvertCoords(col, row)
		if x != c[0] || y != c[1] {
			t.Errorf("round trip (%d,%d) -> (%d,%d) -> (%d,%d); want original", c[0], c[1], col, row, x, y)
		}
	}
}

func TestDirWorldRegionLookupAndCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeRegion(t, fs, "/world/regions/0_0.json", `{"chunks":{"1,1":{"timestamp":100,"color":[1,2,3,255]}}}`)

	w := NewDirWorld(fs, "/world")
	path, ok := w.RegionPath(0, 0)
	if !ok {
		t.Fatal("expected region 0_0 to be found")
	}

	region, err := w.LoadRegion(path)
	if err != nil {
		t.Fatalf("LoadRegion: %v", err)
	}
	if !region.ChunkExists(1, 1) {
		t.Error("expected chunk (1,1) to exist")
	}
	if region.ChunkExists(2, 2) {
		t.Error("did not expect chunk (2,2) to exist")
	}
	ts, err := region.ChunkTimestamp(1, 1)
	if err != nil || ts != 100 {
		t.Errorf("ChunkTimestamp(1,1) = (%d, %v); want (100, nil)", ts, err)
	}

	// second load must return the same cached instance
	region2, err := w.LoadRegion(path)
	if err != nil {
		t.Fatalf("LoadRegion (cached): %v", err)
	}
	if region != region2 {
		t.Error("expected LoadRegion to return a cached instance")
	}
}

func TestDirWorldRegionPathMissing(t *testing.T) {
	w := NewDirWorld(afero.NewMemMapFs(), "/world")
	if _, ok := w.RegionPath(9, 9); ok {
		t.Error("expected missing region to report ok=false")
	}
}

func TestColorRendererPaints(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeRegion(t, fs, "/world/regions/0_0.json", `{"chunks":{"3,3":{"timestamp":1,"color":[10,20,30,255]}}}`)
	w := NewDirWorld(fs, "/world")
	r := &ColorRenderer{World: w}

	canvas := newTestCanvas(192, 192)
	if err := r.RenderChunk(3, 3, canvas, pt(0, 0), emptyCtx()); err != nil {
		t.Fatalf("RenderChunk: %v", err)
	}
	red, green, blue, _ := canvas.At(10, 10).RGBA()
	if red>>8 != 10 || green>>8 != 20 || blue>>8 != 30 {
		t.Errorf("painted color = (%d,%d,%d); want (10,20,30)", red>>8, green>>8, blue>>8)
	}
}

func TestColorRendererMissingChunk(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeRegion(t, fs, "/world/regions/0_0.json", `{"chunks":{}}`)
	w := NewDirWorld(fs, "/world")
	r := &ColorRenderer{World: w}

	canvas := newTestCanvas(192, 192)
	if err := r.RenderChunk(3, 3, canvas, pt(0, 0), emptyCtx()); err == nil {
		t.Error("expected error for a chunk missing from its region")
	}
}
