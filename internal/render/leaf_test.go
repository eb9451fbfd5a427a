package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/imageio"
	"github.com/overviewer-go/quadtree/internal/quadtree"
	"github.com/overviewer-go/quadtree/internal/worldapi"
)

type fakeRegion struct {
	exists     map[[2]int]bool
	timestamps map[[2]int]int64
}

func (r *fakeRegion) ChunkExists(chunkX, chunkY int) bool {
	return r.exists[[2]int{chunkX, chunkY}]
}

func (r *fakeRegion) ChunkTimestamp(chunkX, chunkY int) (int64, error) {
	return r.timestamps[[2]int{chunkX, chunkY}], nil
}

type fakeWorld struct {
	regions map[string]*fakeRegion
}

func (w *fakeWorld) Bounds() worldapi.Bounds                 { return worldapi.Bounds{} }
func (w *fakeWorld) UnconvertCoords(col, row int) (int, int) { return col, row }
func (w *fakeWorld) RegionPath(rx, ry int) (string, bool)    { return "", false }
func (w *fakeWorld) LoadRegion(path string) (worldapi.Region, error) {
	return w.regions[path], nil
}

type solidRenderer struct{ c color.RGBA }

func (s solidRenderer) RenderChunk(chunkX, chunkY int, dst draw.Image, offset image.Point, ctx worldapi.RenderContext) error {
	r := image.Rect(offset.X, offset.Y, offset.X+192, offset.Y+192)
	draw.Draw(dst, r, &image.Uniform{C: s.c}, image.Point{}, draw.Src)
	return nil
}

type failingRenderer struct{ err error }

func (f failingRenderer) RenderChunk(chunkX, chunkY int, dst draw.Image, offset image.Point, ctx worldapi.RenderContext) error {
	return f.err
}

func setRegionMtime(t *testing.T, fs afero.Fs, path string, when time.Time) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte("region"), 0o644); err != nil {
		t.Fatalf("seeding region file: %v", err)
	}
	if err := fs.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestRenderLeaf_EmptyDeletesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/tiles/0.png", []byte("stale"), 0o644)

	world := &fakeWorld{regions: map[string]*fakeRegion{}}
	n, err := RenderLeaf(fs, world, solidRenderer{}, worldapi.RenderContext{}, imageio.FormatPNG,
		nil, 0, 2, 0, 4, "/tiles/0.png")
	if err != nil {
		t.Fatalf("RenderLeaf: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 chunks rendered, got %d", n)
	}
	if ok, _ := afero.Exists(fs, "/tiles/0.png"); ok {
		t.Error("expected stale tile to be deleted")
	}
}

func TestRenderLeaf_RendersAndSkipsUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	past := time.Unix(1000, 0)
	setRegionMtime(t, fs, "/world/r.0.0.region", past)

	region := &fakeRegion{
		exists:     map[[2]int]bool{{5, 5}: true},
		timestamps: map[[2]int]int64{{5, 5}: 500},
	}
	world := &fakeWorld{regions: map[string]*fakeRegion{"/world/r.0.0.region": region}}
	chunks := []quadtree.ChunkCandidate{
		{Col: 0, Row: 0, ChunkX: 5, ChunkY: 5, RegionPath: "/world/r.0.0.region"},
	}

	n, err := RenderLeaf(fs, world, solidRenderer{c: color.RGBA{R: 255, A: 255}}, worldapi.RenderContext{},
		imageio.FormatPNG, chunks, 0, 2, 0, 4, "/tiles/0.png")
	if err != nil {
		t.Fatalf("RenderLeaf: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 chunk rendered, got %d", n)
	}
	if ok, _ := afero.Exists(fs, "/tiles/0.png"); !ok {
		t.Fatal("expected tile to be written")
	}

	// Second run: region mtime unchanged and <= tile mtime, should skip
	// (no error, and n == 0 since it bails before touching the canvas).
	n, err = RenderLeaf(fs, world, solidRenderer{}, worldapi.RenderContext{}, imageio.FormatPNG,
		chunks, 0, 2, 0, 4, "/tiles/0.png")
	if err != nil {
		t.Fatalf("RenderLeaf (second run): %v", err)
	}
	if n != 0 {
		t.Errorf("expected second run to be a no-op, got n=%d", n)
	}
}

func TestRenderLeaf_FiltersNonexistentChunks(t *testing.T) {
	fs := afero.NewMemMapFs()
	setRegionMtime(t, fs, "/world/r.region", time.Unix(1, 0))

	region := &fakeRegion{exists: map[[2]int]bool{}} // nothing actually exists
	world := &fakeWorld{regions: map[string]*fakeRegion{"/world/r.region": region}}
	chunks := []quadtree.ChunkCandidate{
		{Col: 0, Row: 0, ChunkX: 1, ChunkY: 1, RegionPath: "/world/r.region"},
	}

	n, err := RenderLeaf(fs, world, solidRenderer{}, worldapi.RenderContext{}, imageio.FormatPNG,
		chunks, 0, 2, 0, 4, "/tiles/0.png")
	if err != nil {
		t.Fatalf("RenderLeaf: %v", err)
	}
	if n != 0 {
		t.Errorf("expected existence filter to drop the chunk, got n=%d", n)
	}
}

func TestRenderLeaf_ChunkRenderErrorAbortsTile(t *testing.T) {
	fs := afero.NewMemMapFs()
	setRegionMtime(t, fs, "/world/r.region", time.Unix(1, 0))

	region := &fakeRegion{
		exists:     map[[2]int]bool{{5, 5}: true},
		timestamps: map[[2]int]int64{{5, 5}: 500},
	}
	world := &fakeWorld{regions: map[string]*fakeRegion{"/world/r.region": region}}
	chunks := []quadtree.ChunkCandidate{
		{Col: 0, Row: 0, ChunkX: 5, ChunkY: 5, RegionPath: "/world/r.region"},
	}

	wantErr := errors.New("corrupt chunk")
	n, err := RenderLeaf(fs, world, failingRenderer{err: wantErr}, worldapi.RenderContext{},
		imageio.FormatPNG, chunks, 0, 2, 0, 4, "/tiles/0.png")
	if !errors.Is(err, wantErr) {
		t.Fatalf("RenderLeaf error = %v; want it to wrap %v", err, wantErr)
	}
	if n != 0 {
		t.Errorf("expected 0 on failure, got n=%d", n)
	}
	if ok, _ := afero.Exists(fs, "/tiles/0.png"); ok {
		t.Error("expected no tile to be written when a chunk render fails")
	}
}
