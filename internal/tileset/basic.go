package tileset

import (
	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// basicTileCount and basicDirections mirror the built-in ground/terrain
// tileset from the original implementation (grid_wfc/src/basic_tileset.rs):
// a small air/dirt/grass vocabulary useful for smoke-testing the solver
// without loading an external tileset file.
const (
	basicTileCount  = 17
	basicDirections = 4
)

// edgeType is an opaque edge label; two tiles may sit next to each other in
// a direction iff their facing edges carry matching (or compatible) labels.
type edgeType int

const (
	edgeAir edgeType = iota
	edgeDirt
	edgeGrassDirt
	edgeDirtAir
	edgeDirtLeft
	edgeDirtRight
	edgeDirtTop
	edgeGrassDirtAir
)

// BasicTileset is a small built-in 2D ground tileset: 17 tiles covering
// open air, bare dirt, and grass-capped dirt with left/right/top transition
// pieces. It requires no external file and is useful for tests, examples,
// and CLI smoke runs.
type BasicTileset struct {
	constraints [][]bitset.Superposition
	weights     []uint32
}

// NewBasicTileset builds the tileset, deriving constraints from each tile's
// four edge labels (order: Up, Down, Left, Right) the same way the original
// implementation does: two tiles may be neighbours in direction d iff the
// facing edge of one equals the opposite-facing edge of the other, except
// that an edge labeled Air on any tile other than 0 admits only tile 0
// (open air) as its neighbour.
func NewBasicTileset() *BasicTileset {
	edges := [basicTileCount][4]edgeType{
		{edgeAir, edgeAir, edgeAir, edgeAir},
		{edgeAir, edgeDirtLeft, edgeAir, edgeGrassDirt},
		{edgeAir, edgeDirt, edgeGrassDirt, edgeGrassDirt},
		{edgeAir, edgeDirtRight, edgeGrassDirt, edgeAir},
		{edgeDirtLeft, edgeDirtLeft, edgeAir, edgeDirt},
		{edgeDirt, edgeDirt, edgeDirt, edgeDirt},
		{edgeDirtRight, edgeDirtRight, edgeDirt, edgeAir},
		{edgeAir, edgeDirt, edgeGrassDirt, edgeDirtTop},
		{edgeDirtLeft, edgeDirt, edgeDirtTop, edgeDirt},
		{edgeDirt, edgeAir, edgeDirtAir, edgeDirtAir},
		{edgeDirtRight, edgeDirt, edgeDirt, edgeDirtTop},
		{edgeAir, edgeDirt, edgeDirtTop, edgeGrassDirt},
		{edgeDirtLeft, edgeAir, edgeAir, edgeDirtAir},
		{edgeAir, edgeAir, edgeAir, edgeGrassDirtAir},
		{edgeAir, edgeAir, edgeGrassDirtAir, edgeGrassDirtAir},
		{edgeAir, edgeAir, edgeGrassDirtAir, edgeAir},
		{edgeDirtRight, edgeAir, edgeDirtAir, edgeAir},
	}

	constraints := make([][]bitset.Superposition, basicTileCount)
	for tile := 0; tile < basicTileCount; tile++ {
		row := make([]bitset.Superposition, basicDirections)
		for edgeIndex := 0; edgeIndex < basicDirections; edgeIndex++ {
			edge := edges[tile][edgeIndex]
			direction := graph.Direction2D(edgeIndex)
			var cell bitset.Superposition

			if edge == edgeAir && tile != 0 {
				cell.Add(0)
			} else {
				opp := int(direction.Opposite())
				for other := 0; other < basicTileCount; other++ {
					if edges[other][opp] == edge {
						cell.Add(other)
					}
				}
			}
			row[edgeIndex] = cell
		}
		constraints[tile] = row
	}

	// Tiles 8 and 10 clash visually when placed side by side; forbidden
	// explicitly, as in the original tileset.
	constraints[10][graph.Right].Remove(8)
	constraints[8][graph.Left].Remove(10)

	weights := make([]uint32, basicTileCount)
	for i := range weights {
		weights[i] = 1
	}

	return &BasicTileset{constraints: constraints, weights: weights}
}

func (t *BasicTileset) TileCount() int      { return basicTileCount }
func (t *BasicTileset) DirectionCount() int { return basicDirections }

func (t *BasicTileset) Constraints() [][]bitset.Superposition { return t.constraints }
func (t *BasicTileset) Weights() []uint32                     { return t.weights }

var _ TileSet = (*BasicTileset)(nil)
