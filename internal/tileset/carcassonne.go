package tileset

import (
	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// carcassonneEdgeType labels one edge of a base Carcassonne tile before
// rotation.
type carcassonneEdgeType int

const (
	edgeGrass carcassonneEdgeType = iota
	edgeRoad
	edgeCity
	edgeRiver
)

const carcassonneDirections = 4

// carcassonneBaseTiles are the 30 distinct Carcassonne tile faces, each
// listed as its four edges in Up, Down, Left, Right order. Rotating each one
// through all four quarter-turns yields the full CarcassonneTileset
// vocabulary, grounded on the original implementation's carcassonne_tileset.rs.
var carcassonneBaseTiles = [...][4]carcassonneEdgeType{
	{edgeGrass, edgeRoad, edgeRoad, edgeGrass},
	{edgeCity, edgeRoad, edgeCity, edgeCity},
	{edgeCity, edgeGrass, edgeCity, edgeGrass},
	{edgeCity, edgeRoad, edgeCity, edgeRoad},
	{edgeGrass, edgeGrass, edgeCity, edgeCity},
	{edgeCity, edgeGrass, edgeCity, edgeGrass},
	{edgeCity, edgeCity, edgeGrass, edgeGrass},
	{edgeCity, edgeGrass, edgeGrass, edgeGrass},
	{edgeCity, edgeRoad, edgeRoad, edgeGrass},
	{edgeCity, edgeRoad, edgeGrass, edgeRoad},
	{edgeCity, edgeRoad, edgeRoad, edgeRoad},
	{edgeCity, edgeGrass, edgeRoad, edgeRoad},
	{edgeRoad, edgeRoad, edgeGrass, edgeGrass},
	{edgeGrass, edgeRoad, edgeRoad, edgeGrass},
	{edgeGrass, edgeRoad, edgeRoad, edgeRoad},
	{edgeGrass, edgeGrass, edgeGrass, edgeGrass},
	{edgeGrass, edgeRoad, edgeGrass, edgeGrass},
	{edgeCity, edgeCity, edgeCity, edgeCity},
	{edgeCity, edgeGrass, edgeCity, edgeCity},
	{edgeGrass, edgeRiver, edgeGrass, edgeGrass},
	{edgeGrass, edgeRiver, edgeGrass, edgeRiver},
	{edgeGrass, edgeRoad, edgeRiver, edgeRiver},
	{edgeRoad, edgeRiver, edgeRiver, edgeRoad},
	{edgeRiver, edgeRiver, edgeGrass, edgeGrass},
	{edgeRiver, edgeRiver, edgeGrass, edgeGrass},
	{edgeRiver, edgeGrass, edgeGrass, edgeGrass},
	{edgeRiver, edgeRiver, edgeRoad, edgeCity},
	{edgeCity, edgeCity, edgeRiver, edgeRiver},
	{edgeRoad, edgeRoad, edgeRiver, edgeRiver},
	{edgeRiver, edgeCity, edgeRiver, edgeCity},
}

const carcassonneTileCount = 4 * len(carcassonneBaseTiles)

// CarcassonneTileset is the 120-tile Carcassonne-inspired tileset: the 30
// base tile faces, each present in all four rotations, with edges matched by
// type (grass/road/city/river) between adjacent tiles.
type CarcassonneTileset struct {
	constraints [][]bitset.Superposition
	weights     []uint32
}

// NewCarcassonneTileset builds the rotated tile vocabulary and derives
// adjacency the same way as the base tile: edge, matching edge types on
// facing sides.
func NewCarcassonneTileset() *CarcassonneTileset {
	rotated := make([][4]carcassonneEdgeType, 0, carcassonneTileCount)
	for rotation := 0; rotation < 4; rotation++ {
		for _, edges := range carcassonneBaseTiles {
			var out [4]carcassonneEdgeType
			for edgeIndex, edge := range edges {
				d := graph.Direction2D(edgeIndex).Rotate(rotation)
				out[d] = edge
			}
			rotated = append(rotated, out)
		}
	}

	constraints := make([][]bitset.Superposition, carcassonneTileCount)
	for tile, edges := range rotated {
		row := make([]bitset.Superposition, carcassonneDirections)
		for edgeIndex := 0; edgeIndex < carcassonneDirections; edgeIndex++ {
			opp := int(graph.Direction2D(edgeIndex).Opposite())
			var cell bitset.Superposition
			for other, otherEdges := range rotated {
				if otherEdges[opp] == edges[edgeIndex] {
					cell.Add(other)
				}
			}
			row[edgeIndex] = cell
		}
		constraints[tile] = row
	}

	weights := make([]uint32, carcassonneTileCount)
	for i := range weights {
		weights[i] = 1
	}

	return &CarcassonneTileset{constraints: constraints, weights: weights}
}

func (t *CarcassonneTileset) TileCount() int      { return carcassonneTileCount }
func (t *CarcassonneTileset) DirectionCount() int { return carcassonneDirections }

func (t *CarcassonneTileset) Constraints() [][]bitset.Superposition { return t.constraints }
func (t *CarcassonneTileset) Weights() []uint32                     { return t.weights }

var _ TileSet = (*CarcassonneTileset)(nil)
