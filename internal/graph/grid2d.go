package graph

import "github.com/tilecollapse/wfc/internal/bitset"

// Grid2DSettings configures a rectangular 2D grid graph.
type Grid2DSettings struct {
	Width    int
	Height   int
	Periodic bool
}

// index2D is the single row-major indexing convention used throughout this
// module: index = y*W + x. spec §9 flags that the original implementation
// had two inconsistent constructors (y*W+x vs x*H+y); this package picks
// y*W+x and the chunked world orchestrator (internal/world) assumes it too.
func index2D(x, y, width int) int {
	return y*width + x
}

// CoordAt2D returns the (x, y) grid coordinate for a node index built by
// NewGrid2D with the given width.
func CoordAt2D(index, width int) (x, y int) {
	return index % width, index / width
}

// NewGrid2D builds a Graph[bitset.Superposition] over a W×H rectangular grid,
// every cell initialized to fill. Neighbours are emitted in the fixed order
// Up, Down, Left, Right (direction.go); out-of-bounds neighbours are skipped
// unless Periodic, in which case coordinates wrap modulo the grid size.
func NewGrid2D(settings Grid2DSettings, fill bitset.Superposition) *Graph[bitset.Superposition] {
	w, h := settings.Width, settings.Height
	g := New(w*h, fill)

	directions := [4]Direction2D{Up, Down, Left, Right}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := index2D(x, y, w)
			for _, dir := range directions {
				dx, dy := dir.offset()
				nx, ny := x+dx, y+dy
				if settings.Periodic {
					nx = ((nx % w) + w) % w
					ny = ((ny % h) + h) % h
				} else if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				g.AddEdge(idx, int(dir), index2D(nx, ny, w))
			}
		}
	}
	return g
}

// OverlapGrid2DSettings configures a dense overlap grid, used by
// algorithms (not the chunked world orchestrator, which uses plain grids
// per chunk) that need every cell within a Chebyshev radius of a
// given cell treated as a direct neighbour — mirrored from the original
// implementation's overlapping_graph.rs for completeness.
type OverlapGrid2DSettings struct {
	Width    int
	Height   int
	Overlap  int
	Periodic bool
}

// NewOverlapGrid2D builds a grid where each cell is connected to every cell
// within Overlap cells in both axes, itself included (offset 0,0 gives a
// self edge). The direction index encodes the
// relative offset: direction = (2*overlap+1)*(dx+overlap) + (dy+overlap).
func NewOverlapGrid2D(settings OverlapGrid2DSettings, fill bitset.Superposition) *Graph[bitset.Superposition] {
	w, h, o := settings.Width, settings.Height, settings.Overlap
	g := New(w*h, fill)
	span := 2*o + 1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := index2D(x, y, w)
			for dx := -o; dx <= o; dx++ {
				for dy := -o; dy <= o; dy++ {
					nx, ny := x+dx, y+dy
					if settings.Periodic {
						nx = ((nx % w) + w) % w
						ny = ((ny % h) + h) % h
					} else if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					direction := span*(dx+o) + (dy + o)
					g.AddEdge(idx, direction, index2D(nx, ny, w))
				}
			}
		}
	}
	return g
}
