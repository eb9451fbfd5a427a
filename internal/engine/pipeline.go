// Package engine orchestrates the pipeline: topology reconciliation,
// batched submission of leaf and inner tile renders to a worker pool, and
// the bounded in-flight result window that keeps memory use flat
// regardless of map size.
package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/overviewer-go/quadtree/internal/imageio"
	"github.com/overviewer-go/quadtree/internal/quadtree"
	"github.com/overviewer-go/quadtree/internal/render"
	"github.com/overviewer-go/quadtree/internal/worldapi"
)

// defaultBatchSize is the number of tiles bundled into a single pool
// task.
const defaultBatchSize = 50

// fifoHighWatermark and fifoLowWatermark bound the pipeline's in-flight
// result queue: once it grows past ceil(10000/B), it's drained down to
// ceil(500/B) before more work is submitted, keeping memory flat
// regardless of map size.
func fifoHighWatermark(batchSize int) int { return ceilDiv(10000, batchSize) }
func fifoLowWatermark(batchSize int) int  { return ceilDiv(500, batchSize) }

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Config configures a single pipeline run.
type Config struct {
	// DestDir is the top-level output directory; the config artifact
	// (maxZoom) and the tile tree both live under it.
	DestDir string
	// TileTree is the subdirectory of DestDir holding the tile tree.
	TileTree string
	Format   imageio.Format
	// DepthOverride forces a specific quadtree depth; -1 computes it
	// from the world's bounds.
	DepthOverride int
	// Concurrency is the number of worker goroutines. 1 uses InlinePool.
	Concurrency int
	// BatchSize overrides defaultBatchSize; 0 uses the default.
	BatchSize     int
	RenderContext worldapi.RenderContext
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return defaultBatchSize
}

func (c Config) tileDir() string {
	return c.DestDir + "/" + c.TileTree
}

// Stats summarizes a completed run.
type Stats struct {
	Depth              int
	LeafTilesRendered  int
	InnerTilesRendered int
}

// Engine drives one pipeline run against a world and a chunk renderer.
type Engine struct {
	fs       afero.Fs
	world    worldapi.World
	renderer worldapi.ChunkRenderer
	cfg      Config
}

// New returns an Engine ready to Run.
func New(fs afero.Fs, world worldapi.World, renderer worldapi.ChunkRenderer, cfg Config) *Engine {
	return &Engine{fs: fs, world: world, renderer: renderer, cfg: cfg}
}

// Run executes the full pipeline: topology reconciliation, leaf tiles,
// inner tiles level by level, and finally the root tile.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	p, err := e.resolveDepth()
	if err != nil {
		return Stats{}, err
	}
	tiledir := e.cfg.tileDir()
	ext := e.cfg.Format.Ext()

	if err := e.reconcileTopology(p, tiledir, ext); err != nil {
		return Stats{}, fmt.Errorf("reconcile topology: %w", err)
	}
	if err := quadtree.EnsureBlankTile(e.fs, tiledir, func() ([]byte, error) {
		return imageio.Encode(imageio.NewCanvas(1, 1), e.cfg.Format)
	}, ext); err != nil {
		return Stats{}, fmt.Errorf("ensure blank tile: %w", err)
	}

	pool, closePool := e.newPool(ctx)
	defer closePool()

	bounds := quadtree.EffectiveBounds(p)

	logrus.Infof("rendering highest zoom level: %d tiles across %d levels", pow4(p), p)
	leafCount, err := e.renderLeaves(ctx, pool, bounds, p, tiledir, ext)
	if err != nil {
		return Stats{}, fmt.Errorf("render leaves: %w", err)
	}

	innerCount := 0
	for zoom := p - 1; zoom >= 1; zoom-- {
		level := p - zoom + 1
		n, err := e.renderInnerLevel(ctx, pool, zoom, level, tiledir, ext)
		if err != nil {
			return Stats{}, fmt.Errorf("render level %d: %w", level, err)
		}
		innerCount += n
	}

	// Phase 3 — root, rendered inline.
	rootPaths := render.InnerChildPaths(tiledir, "base", ext)
	if err := render.RenderInner(e.fs, e.cfg.Format, render.InnerTilePath(tiledir, "base", ext), rootPaths); err != nil {
		return Stats{}, fmt.Errorf("render root tile: %w", err)
	}

	if err := quadtree.WriteDepthConfig(e.fs, e.cfg.DestDir, p); err != nil {
		return Stats{}, fmt.Errorf("write depth config: %w", err)
	}

	return Stats{Depth: p, LeafTilesRendered: leafCount, InnerTilesRendered: innerCount}, nil
}

func (e *Engine) resolveDepth() (int, error) {
	if e.cfg.DepthOverride >= 0 {
		return e.cfg.DepthOverride, nil
	}
	return quadtree.ComputeDepth(e.world.Bounds())
}

// reconcileTopology compares the detected on-disk depth to the required
// depth p and grows or shrinks the tree one level at a time until they
// match. Shrinking loops single levels rather than refusing multi-level
// decreases (see DESIGN.md).
func (e *Engine) reconcileTopology(p int, tiledir, ext string) error {
	detected := quadtree.DetectDepth(e.fs, e.cfg.DestDir)
	if detected == -1 {
		return nil
	}
	if p > detected {
		logrus.Warn("map has expanded beyond its previous bounds; rearranging tiles")
		for i := 0; i < p-detected; i++ {
			if err := quadtree.Grow(e.fs, tiledir, ext); err != nil {
				return err
			}
		}
	} else if p < detected {
		logrus.Warn("map has shrunk; rearranging tiles")
		for i := 0; i < detected-p; i++ {
			if err := quadtree.Shrink(e.fs, tiledir, ext); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) newPool(ctx context.Context) (Pool, func()) {
	if e.cfg.Concurrency <= 1 {
		pool := NewInlinePool(ctx)
		return pool, pool.Close
	}
	pool := NewThreadPool(ctx, e.cfg.Concurrency)
	return pool, pool.Close
}

type leafJob struct {
	chunks                             []quadtree.ChunkCandidate
	colstart, colend, rowstart, rowend int
	dest                               string
}

func (e *Engine) renderLeaves(ctx context.Context, pool Pool, bounds worldapi.Bounds, p int, tiledir, ext string) (int, error) {
	total := pow4(p)
	batchSize := e.cfg.batchSize()

	var futures []Future
	var batch []leafJob
	complete := 0
	var firstErr error

	flush := func() {
		if len(batch) == 0 {
			return
		}
		jobs := batch
		batch = nil
		futures = append(futures, pool.Submit(func(ctx context.Context) (int, error) {
			return e.runLeafBatch(jobs)
		}))
		if len(futures) > fifoHighWatermark(batchSize) {
			for len(futures) > fifoLowWatermark(batchSize) && firstErr == nil {
				n, err := futures[0].Get()
				futures = futures[1:]
				if err != nil && firstErr == nil {
					firstErr = err
				}
				complete += n
				reportProgress(complete, total, 1, false)
			}
		}
	}

	quadtree.IterateBase4(p, func(path quadtree.Path) {
		if firstErr != nil {
			return
		}
		colstart, colend, rowstart, rowend := quadtree.LeafWindow(bounds, path)
		chunks := quadtree.ChunksInWindow(e.world, colstart, colend, rowstart, rowend)
		dest := leafDestPath(tiledir, path) + "." + ext
		batch = append(batch, leafJob{chunks, colstart, colend, rowstart, rowend, dest})
		if len(batch) >= batchSize {
			flush()
		}
	})
	flush()

	for len(futures) > 0 && firstErr == nil {
		n, err := futures[0].Get()
		futures = futures[1:]
		if err != nil && firstErr == nil {
			firstErr = err
		}
		complete += n
		reportProgress(complete, total, 1, false)
	}
	reportProgress(complete, total, 1, true)

	if firstErr != nil {
		return complete, firstErr
	}
	return complete, ctx.Err()
}

func (e *Engine) runLeafBatch(jobs []leafJob) (int, error) {
	count := 0
	for _, j := range jobs {
		n, err := render.RenderLeaf(e.fs, e.world, e.renderer, e.cfg.RenderContext, e.cfg.Format,
			j.chunks, j.colstart, j.colend, j.rowstart, j.rowend, j.dest)
		if err != nil {
			return count, err
		}
		if n > 0 {
			count++
		}
	}
	return count, nil
}

type innerJob struct {
	dest, name string
}

func (e *Engine) renderInnerLevel(ctx context.Context, pool Pool, zoom, level int, tiledir, ext string) (int, error) {
	total := pow4(zoom)
	batchSize := e.cfg.batchSize()

	var futures []Future
	var batch []innerJob
	complete := 0
	var firstErr error

	flush := func() {
		if len(batch) == 0 {
			return
		}
		jobs := batch
		batch = nil
		futures = append(futures, pool.Submit(func(ctx context.Context) (int, error) {
			return e.runInnerBatch(jobs, ext)
		}))
		if len(futures) > fifoHighWatermark(batchSize) {
			for len(futures) > fifoLowWatermark(batchSize) && firstErr == nil {
				n, err := futures[0].Get()
				futures = futures[1:]
				if err != nil && firstErr == nil {
					firstErr = err
				}
				complete += n
				reportProgress(complete, total, level, false)
			}
		}
	}

	logrus.Infof("starting inner tile level with %d tiles", total)
	quadtree.IterateBase4(zoom, func(path quadtree.Path) {
		if firstErr != nil {
			return
		}
		dest := tiledir
		if len(path) > 1 {
			dest = tiledir + "/" + path[:len(path)-1].Join()
		}
		name := path.Name()
		batch = append(batch, innerJob{dest, name})
		if len(batch) >= batchSize {
			flush()
		}
	})
	flush()

	for len(futures) > 0 && firstErr == nil {
		n, err := futures[0].Get()
		futures = futures[1:]
		if err != nil && firstErr == nil {
			firstErr = err
		}
		complete += n
		reportProgress(complete, total, level, false)
	}
	reportProgress(complete, total, level, true)

	if firstErr != nil {
		return complete, firstErr
	}
	return complete, ctx.Err()
}

func (e *Engine) runInnerBatch(jobs []innerJob, ext string) (int, error) {
	count := 0
	for _, j := range jobs {
		childPaths := render.InnerChildPaths(j.dest, j.name, ext)
		target := render.InnerTilePath(j.dest, j.name, ext)
		if err := render.RenderInner(e.fs, e.cfg.Format, target, childPaths); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// leafDestPath addresses a leaf tile by its path digits under tiledir.
// An empty path addresses the tile tree root itself: a depth-0 map's
// single leaf is saved as "<tiledir>.<ext>", a sibling of the tiledir
// directory, not "base".
func leafDestPath(tiledir string, path quadtree.Path) string {
	if len(path) == 0 {
		return tiledir
	}
	return tiledir + "/" + path.Join()
}

func pow4(n int) int {
	r := 1
	for i := 0; i < n; i++ {
		r *= 4
	}
	return r
}
