// Package preview renders a solved tile grid to a raster image for CLI
// debugging: one flat-colored block of pixels per cell, not a tile-art
// renderer.
package preview

import (
	"fmt"
	"image"
)

// Encoder encodes a rendered preview image into bytes for one image format.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	Format() string
	FileExtension() string
}

// NewEncoder returns an Encoder for the given format ("png", "jpeg"/"jpg",
// "webp"), using quality for the lossy formats (ignored by png).
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "png":
		return &PNGEncoder{}, nil
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "webp":
		return &WebPEncoder{Quality: quality}, nil
	default:
		return nil, fmt.Errorf("preview: unsupported image format %q (supported: png, jpeg, webp)", format)
	}
}
