package quadtree

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/afero"
)

// configFileName is the top-level artifact DetectDepth parses and
// WriteDepthConfig writes.
const configFileName = "quadtree.cfg"

var maxZoomPattern = regexp.MustCompile(`maxZoom:\s*(\d+)`)

// DetectDepth parses destdir's config artifact for a "maxZoom: N" line.
// Missing file, unreadable content, or unparseable digits all return -1,
// signaling that no prior run exists.
func DetectDepth(fs afero.Fs, destdir string) int {
	data, err := afero.ReadFile(fs, destdir+"/"+configFileName)
	if err != nil {
		return -1
	}
	m := maxZoomPattern.FindSubmatch(data)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return -1
	}
	return n
}

// WriteDepthConfig writes destdir's config artifact recording depth p, so
// that a subsequent run's DetectDepth observes the topology this run left
// behind.
func WriteDepthConfig(fs afero.Fs, destdir string, p int) error {
	content := fmt.Sprintf("maxZoom: %d\n", p)
	return afero.WriteFile(fs, destdir+"/"+configFileName, []byte(content), 0o644)
}

// quadrantRemap maps top-level quadrant d to the child digit its old
// contents become after growing one level: (3,2,1,0)[d].
var quadrantRemap = [4]int{3, 2, 1, 0}

// Grow expands tiledir by exactly one level. Each top-level quadrant d's
// existing file/subtree becomes child quadrantRemap[d] of a freshly
// created quadrant d; the newly-vacated top two levels are left for the
// pipeline to regenerate.
func Grow(fs afero.Fs, tiledir string, ext string) error {
	for d := 0; d < 4; d++ {
		oldFile := fmt.Sprintf("%s/%d.%s", tiledir, d, ext)
		oldDir := fmt.Sprintf("%s/%d", tiledir, d)
		newDir := fmt.Sprintf("%s/new%d", tiledir, d)
		newd := quadrantRemap[d]

		if err := fs.MkdirAll(newDir, 0o755); err != nil {
			return fmt.Errorf("grow: stage quadrant %d: %w", d, err)
		}

		if ok, err := afero.Exists(fs, oldFile); err != nil {
			return fmt.Errorf("grow: stat %s: %w", oldFile, err)
		} else if ok {
			dst := fmt.Sprintf("%s/%d.%s", newDir, newd, ext)
			if err := fs.Rename(oldFile, dst); err != nil {
				return fmt.Errorf("grow: move %s: %w", oldFile, err)
			}
		}

		if ok, err := afero.DirExists(fs, oldDir); err != nil {
			return fmt.Errorf("grow: stat %s: %w", oldDir, err)
		} else if ok {
			dst := fmt.Sprintf("%s/%d", newDir, newd)
			if err := fs.Rename(oldDir, dst); err != nil {
				return fmt.Errorf("grow: move %s: %w", oldDir, err)
			}
		}

		finalDir := fmt.Sprintf("%s/%d", tiledir, d)
		if err := fs.Rename(newDir, finalDir); err != nil {
			return fmt.Errorf("grow: finalize quadrant %d: %w", d, err)
		}
	}
	return nil
}

// Shrink contracts tiledir by exactly one level, the inverse of Grow: for
// each top-level quadrant d, if child quadrantRemap[d] exists, its file
// becomes the new top-level tiledir/d.<ext> and its subtree becomes the
// new tiledir/d/, exactly undoing the nesting Grow introduced. Quadrants
// with no such child are skipped and left as they are.
func Shrink(fs afero.Fs, tiledir string, ext string) error {
	for d := 0; d < 4; d++ {
		newd := quadrantRemap[d]
		childFile := fmt.Sprintf("%s/%d/%d.%s", tiledir, d, newd, ext)
		childDir := fmt.Sprintf("%s/%d/%d", tiledir, d, newd)
		stagingFile := fmt.Sprintf("%s/new%d.%s", tiledir, d, ext)
		stagingDir := fmt.Sprintf("%s/new%d", tiledir, d)
		oldDir := fmt.Sprintf("%s/%d", tiledir, d)
		finalFile := fmt.Sprintf("%s/%d.%s", tiledir, d, ext)

		hasFile, err := afero.Exists(fs, childFile)
		if err != nil {
			return fmt.Errorf("shrink: stat %s: %w", childFile, err)
		}
		hasDir, err := afero.DirExists(fs, childDir)
		if err != nil {
			return fmt.Errorf("shrink: stat %s: %w", childDir, err)
		}
		if !hasFile && !hasDir {
			continue
		}

		// Pull the surviving child out to a top-level staging name before
		// the rest of the old quadrant is discarded.
		if hasFile {
			if err := fs.Rename(childFile, stagingFile); err != nil {
				return fmt.Errorf("shrink: stage %s: %w", childFile, err)
			}
		}
		if hasDir {
			if err := fs.Rename(childDir, stagingDir); err != nil {
				return fmt.Errorf("shrink: stage %s: %w", childDir, err)
			}
		}

		if err := fs.RemoveAll(oldDir); err != nil {
			return fmt.Errorf("shrink: remove old quadrant %d: %w", d, err)
		}

		if hasFile {
			if err := fs.Rename(stagingFile, finalFile); err != nil {
				return fmt.Errorf("shrink: finalize file %d: %w", d, err)
			}
		}
		if hasDir {
			if err := fs.Rename(stagingDir, oldDir); err != nil {
				return fmt.Errorf("shrink: finalize quadrant %d: %w", d, err)
			}
		}
	}
	return nil
}

// EnsureBlankTile writes tiledir/blank.<ext>, a 1x1 fully transparent
// placeholder image, if it doesn't already exist.
func EnsureBlankTile(fs afero.Fs, tiledir string, encode func() ([]byte, error), ext string) error {
	path := fmt.Sprintf("%s/blank.%s", tiledir, ext)
	if ok, err := afero.Exists(fs, path); err != nil {
		return fmt.Errorf("blank tile: stat: %w", err)
	} else if ok {
		return nil
	}
	data, err := encode()
	if err != nil {
		return fmt.Errorf("blank tile: encode: %w", err)
	}
	if err := fs.MkdirAll(tiledir, 0o755); err != nil {
		return fmt.Errorf("blank tile: mkdir: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
