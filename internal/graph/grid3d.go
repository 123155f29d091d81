package graph

import "github.com/tilecollapse/wfc/internal/bitset"

// Grid3DSettings configures a rectangular 3D cuboid grid graph.
type Grid3DSettings struct {
	Width, Height, Depth int
	Periodic              bool
}

func index3D(x, y, z, width, height int) int {
	return z*width*height + y*width + x
}

// CoordAt3D returns the (x, y, z) grid coordinate for a node index built by
// NewGrid3D with the given width and height.
func CoordAt3D(index, width, height int) (x, y, z int) {
	z = index / (width * height)
	rem := index % (width * height)
	y = rem / width
	x = rem % width
	return
}

// NewGrid3D builds a Graph[bitset.Superposition] over a W×H×D cuboid grid,
// six directions per cell (direction.go's Direction3D), row-major indexed as
// z*W*H + y*W + x so that XY-planes are contiguous — matching the 2D grid's
// y*W+x convention for the planes that make up each layer.
func NewGrid3D(settings Grid3DSettings, fill bitset.Superposition) *Graph[bitset.Superposition] {
	w, h, d := settings.Width, settings.Height, settings.Depth
	g := New(w*h*d, fill)

	directions := [6]Direction3D{PosX, NegX, PosY, NegY, PosZ, NegZ}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := index3D(x, y, z, w, h)
				for _, dir := range directions {
					dx, dy, dz := dir.offset()
					nx, ny, nz := x+dx, y+dy, z+dz
					if settings.Periodic {
						nx = ((nx % w) + w) % w
						ny = ((ny % h) + h) % h
						nz = ((nz % d) + d) % d
					} else if nx < 0 || nx >= w || ny < 0 || ny >= h || nz < 0 || nz >= d {
						continue
					}
					g.AddEdge(idx, int(dir), index3D(nx, ny, nz, w, h))
				}
			}
		}
	}
	return g
}
