package render

import (
	"os"
	"path"

	"github.com/spf13/afero"
)

// dirOf returns the parent directory of a slash-separated path.
func dirOf(p string) string {
	return path.Dir(p)
}

// mkdirAllTolerant creates dir and any missing parents, treating a
// concurrent creation (another worker goroutine won the race) as success
// rather than an error — afero.MkdirAll already returns nil if the
// directory exists, but os.IsExist is checked too for backends that
// don't.
func mkdirAllTolerant(fs afero.Fs, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	err := fs.MkdirAll(dir, 0o755)
	if err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}
