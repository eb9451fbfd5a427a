package imageio

import (
	"image"

	"golang.org/x/image/draw"
)

// Paste copies src onto dst at offset, overwriting whatever was there —
// pixels are replaced wholesale rather than alpha-compositing them. Used
// by the inner renderer (child onto parent): straight stitching, never
// alpha blending.
func Paste(dst draw.Image, src image.Image, offset image.Point) {
	r := src.Bounds().Add(offset.Sub(src.Bounds().Min))
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

// ResizeHighQuality scales src into a new w×h RGBA image using a
// Catmull-Rom filter, the high-quality resampling mode used when
// compositing an inner tile's children down to quadrant size.
func ResizeHighQuality(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
