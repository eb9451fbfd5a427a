package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// Format is the tile encoding. Closed to the two formats the on-disk
// layout's {path}.{imgformat} contract names.
type Format int

const (
	// FormatPNG encodes tiles as PNG (default compression).
	FormatPNG Format = iota
	// FormatJPEG encodes tiles as JPEG at quality 95. Chroma is subsampled,
	// as Go's image/jpeg encoder always does; it cannot be turned off.
	FormatJPEG
)

// ParseFormat converts a string ("png", "jpg", "jpeg") into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return 0, fmt.Errorf("unsupported tile format %q (supported: png, jpg)", s)
	}
}

// Ext returns the file extension used in tile paths, without the dot
// prefix for "png"/"jpg" — matching the {path}.{imgformat} contract.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return "png"
	}
}

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	default:
		return "png"
	}
}

// Encode renders img to bytes in the given format. JPEG always uses
// quality 95; Go's jpeg encoder has no separate chroma-subsampling knob,
// so this is the closest match to a high-fidelity tile export.
func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
		if err != nil {
			return nil, err
		}
	default:
		enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Decode decodes previously-encoded tile bytes back into an image.
func Decode(data []byte, format Format) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		return jpeg.Decode(r)
	default:
		return png.Decode(r)
	}
}
