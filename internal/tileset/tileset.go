// Package tileset defines the TileSet contract (spec §6) and the built-in
// tilesets shipped with this module. A TileSet is a small, immutable-after-
// construction capability — safe to share by reference across concurrently
// running solver tasks without synchronization (spec §9 "Polymorphic
// tilesets").
package tileset

import (
	"fmt"

	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// TileSet exposes adjacency constraints, weights, and sizing for one tile
// vocabulary. Implementations must be safe for concurrent read access from
// multiple goroutines; none of the methods below mutate receiver state.
type TileSet interface {
	// TileCount returns the number of distinct tile ids, at most
	// bitset.MaxTiles.
	TileCount() int

	// DirectionCount returns the number of direction indices the
	// constraint table is indexed by (4 for the 2D grid builders, 6 for
	// 3D).
	DirectionCount() int

	// Constraints returns, for tile t and direction d, the superposition
	// of tiles legal as the neighbour of t in direction d.
	// Constraints()[t][d] must never be mutated by callers.
	Constraints() [][]bitset.Superposition

	// Weights returns the non-negative integer weight of each tile, used
	// by weighted collapse and Shannon entropy.
	Weights() []uint32
}

// ErrInvalidTileset is returned by Validate when a tileset's constraint
// table is malformed, and by LoadMxgmnTileset when the file declares no
// tiles or more than bitset.MaxTiles.
type ErrInvalidTileset struct {
	Reason string
}

func (e *ErrInvalidTileset) Error() string {
	return fmt.Sprintf("invalid tileset: %s", e.Reason)
}

// Validate checks the tileset self-consistency invariant from spec §3 and
// §8 invariant 3: if constraints[a][d].Contains(b) then
// constraints[b][opposite(d)].Contains(a). opposite maps a direction index
// to its reverse; callers pass the mapping appropriate to their direction
// scheme (graph.Direction2D.Opposite or graph.Direction3D.Opposite).
//
// Neither the solver nor the constructors in this package call it:
// NewBasicTileset, NewCarcassonneTileset and LoadMxgmnTileset return their
// tables unchecked.
func Validate(ts TileSet, opposite func(d int) int) error {
	n := ts.TileCount()
	dirs := ts.DirectionCount()
	constraints := ts.Constraints()

	if len(constraints) != n {
		return &ErrInvalidTileset{Reason: fmt.Sprintf("constraint table has %d rows, want %d tiles", len(constraints), n)}
	}
	for a, row := range constraints {
		if len(row) != dirs {
			return &ErrInvalidTileset{Reason: fmt.Sprintf("tile %d has %d direction entries, want %d", a, len(row), dirs)}
		}
		for d, allowed := range row {
			for _, b := range allowed.TileIter() {
				if b < 0 || b >= n {
					return &ErrInvalidTileset{Reason: fmt.Sprintf("tile %d direction %d references out-of-range tile %d", a, d, b)}
				}
				rd := opposite(d)
				if rd < 0 || rd >= dirs {
					return &ErrInvalidTileset{Reason: fmt.Sprintf("opposite(%d) = %d is out of range", d, rd)}
				}
				if !constraints[b][rd].Contains(a) {
					return &ErrInvalidTileset{Reason: fmt.Sprintf(
						"asymmetric constraint: tile %d allows %d in direction %d, but tile %d does not allow %d in direction %d",
						a, b, d, b, a, rd)}
				}
			}
		}
	}
	return nil
}

// Opposite4 is the opposite-direction mapping for the 4-direction 2D grid
// scheme (graph.Direction2D), suitable to pass to Validate.
func Opposite4(d int) int {
	return int(graph.Direction2D(d).Opposite())
}

// Opposite6 is the opposite-direction mapping for the 6-direction 3D grid
// scheme (graph.Direction3D), suitable to pass to Validate.
func Opposite6(d int) int {
	return int(graph.Direction3D(d).Opposite())
}
