package imageio

import (
	"image"

	"github.com/spf13/afero"
)

// SaveAtomic encodes img and writes it to path on fs. The image save
// either completes or the pre-existing file is left untouched: the new
// bytes are encoded in full, written to a temporary file beside the
// target, and only then renamed over the target path (no partial tile is
// ever visible to a concurrent reader of the old file).
func SaveAtomic(fs afero.Fs, path string, img image.Image, format Format) error {
	data, err := Encode(img, format)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return fs.Rename(tmp, path)
}

// Open reads and decodes an image from path on fs.
func Open(fs afero.Fs, path string, format Format) (image.Image, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}
