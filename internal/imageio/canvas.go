// Package imageio wraps the stdlib image codecs and golang.org/x/image's
// scaler behind the small surface the quadtree renderers need: a fresh
// transparent canvas, encode/decode, and a high-quality resize.
package imageio

import (
	"image"
	"image/color"
)

// BackgroundColor is the fill color for a freshly constructed canvas.
// The alpha channel is always 0 (fully transparent); the RGB values are
// fixed only for deterministic output.
var BackgroundColor = color.RGBA{R: 38, G: 92, B: 255, A: 0}

// NewCanvas allocates a w×h RGBA image pre-filled with BackgroundColor.
func NewCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRGBA(img, BackgroundColor)
	return img
}

func fillRGBA(img *image.RGBA, c color.RGBA) {
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
