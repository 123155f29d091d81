package preview

import (
	"fmt"
	"image"
	"image/color"
)

// Render draws tiles (row-major, width×height, matching internal/graph's
// y*width+x indexing) as a flat-colored raster: one pixel per cell if
// scale is 1, or a scale×scale block per cell otherwise, so small worlds
// are still visible at a readable size.
func Render(tiles []int, width, height, scale int, palette []color.RGBA) (*image.RGBA, error) {
	if len(tiles) != width*height {
		return nil, fmt.Errorf("preview: len(tiles)=%d does not match width*height=%d", len(tiles), width*height)
	}
	if scale < 1 {
		scale = 1
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("preview: palette is empty")
	}

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tile := tiles[y*width+x]
			c := palette[((tile%len(palette))+len(palette))%len(palette)]
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img, nil
}
