package tileset

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"

	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// mxgmnConfig mirrors the small subset of the MXGMN "simple tiled model"
// XML schema this loader understands: <tiles>, <neighbors>, and <subsets>.
// Grounded on the original implementation's mxgmn_tileset.rs, which parses
// the same schema with serde_xml_rs; this module has no XML dependency in
// its pack, so encoding/xml is used directly (see DESIGN.md).
type mxgmnConfig struct {
	XMLName   xml.Name       `xml:"set"`
	Tiles     mxgmnTiles     `xml:"tiles"`
	Neighbors mxgmnNeighbors `xml:"neighbors"`
	Subsets   mxgmnSubsets   `xml:"subsets"`
}

type mxgmnTiles struct {
	Tile []mxgmnTile `xml:"tile"`
}

type mxgmnTile struct {
	Name     string  `xml:"name,attr"`
	Symmetry string  `xml:"symmetry,attr"`
	Weight   float64 `xml:"weight,attr"`
}

type mxgmnNeighbors struct {
	Neighbor []mxgmnNeighbor `xml:"neighbor"`
}

type mxgmnNeighbor struct {
	Left  string `xml:"left,attr"`
	Right string `xml:"right,attr"`
}

type mxgmnSubsets struct {
	Subset []mxgmnSubset `xml:"subset"`
}

type mxgmnSubset struct {
	Name string         `xml:"name,attr"`
	Tile []mxgmnTileRef `xml:"tile"`
}

type mxgmnTileRef struct {
	Name string `xml:"name,attr"`
}

// MxgmnTileset is a tileset loaded from an MXGMN-style XML description: a
// flat list of named tiles with left/right adjacency pairs and a symmetry
// tag that decides whether an adjacency pair also implies the same pair
// with left and right swapped, for X/I/T-symmetric tiles. Up/down
// adjacency is unconstrained.
//
// Unlike BasicTileset and CarcassonneTileset, an MxgmnTileset is not
// guaranteed to satisfy the symmetric-neighbour invariant Validate checks:
// a <neighbor left="a" right="b"/> entry declares a is left-of b without
// implying b is left-of a, unless a or b's symmetry class (X, I, T) says
// otherwise. This mirrors the original loader and is intentional, not a bug
// — do not run Validate against tilesets produced here.
type MxgmnTileset struct {
	tileCount   int
	constraints [][]bitset.Superposition
	weights     []uint32
	names       []string
	subsets     map[string][]string
}

// LoadMxgmnTileset parses the XML file at path into a MxgmnTileset.
// Neighbor entries referencing a tile name absent from <tiles> are skipped
// with a logged warning rather than treated as a fatal error, matching the
// original loader's lenient behaviour.
func LoadMxgmnTileset(path string) (*MxgmnTileset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mxgmn tileset %q: %w", path, err)
	}

	var config mxgmnConfig
	if err := xml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing mxgmn tileset %q: %w", path, err)
	}

	tileCount := len(config.Tiles.Tile)
	if tileCount == 0 {
		return nil, &ErrInvalidTileset{Reason: fmt.Sprintf("%q defines no tiles", path)}
	}
	if tileCount > bitset.MaxTiles {
		return nil, &ErrInvalidTileset{Reason: fmt.Sprintf("%q defines %d tiles, exceeds capacity %d", path, tileCount, bitset.MaxTiles)}
	}

	ids := make(map[string]int, tileCount)
	names := make([]string, tileCount)
	weights := make([]uint32, tileCount)
	symmetry := make([]string, tileCount)
	for i, tile := range config.Tiles.Tile {
		ids[tile.Name] = i
		names[i] = tile.Name
		symmetry[i] = tile.Symmetry
		w := tile.Weight
		if w <= 0 {
			w = 1
		}
		weights[i] = uint32(w)
	}

	// Up and Down default to "anything goes"; Left and Right start empty and
	// are populated from <neighbors>, matching the original loader.
	constraints := make([][]bitset.Superposition, tileCount)
	for i := range constraints {
		row := make([]bitset.Superposition, 4)
		row[graph.Up] = bitset.Filled(tileCount)
		row[graph.Down] = bitset.Filled(tileCount)
		row[graph.Left] = bitset.Empty()
		row[graph.Right] = bitset.Empty()
		constraints[i] = row
	}

	for _, neighbor := range config.Neighbors.Neighbor {
		left, leftOK := ids[neighbor.Left]
		right, rightOK := ids[neighbor.Right]
		if !leftOK {
			log.Printf("mxgmn tileset %q: neighbor entry references unknown tile %q, skipping", path, neighbor.Left)
			continue
		}
		if !rightOK {
			log.Printf("mxgmn tileset %q: neighbor entry references unknown tile %q, skipping", path, neighbor.Right)
			continue
		}

		constraints[left][graph.Right].Add(right)
		constraints[right][graph.Left].Add(left)

		if isSymmetricSelfFacing(symmetry[left]) {
			constraints[left][graph.Left].Add(right)
		}
		if isSymmetricSelfFacing(symmetry[right]) {
			constraints[right][graph.Right].Add(left)
		}
	}

	subsets := make(map[string][]string, len(config.Subsets.Subset))
	for _, subset := range config.Subsets.Subset {
		tiles := make([]string, 0, len(subset.Tile))
		for _, t := range subset.Tile {
			tiles = append(tiles, t.Name)
		}
		subsets[subset.Name] = tiles
	}

	return &MxgmnTileset{
		tileCount:   tileCount,
		constraints: constraints,
		weights:     weights,
		names:       names,
		subsets:     subsets,
	}, nil
}

// isSymmetricSelfFacing reports whether a tile's symmetry class means an
// L-R adjacency also implies the matching L-R adjacency with sides swapped
// (used for X/I/T-symmetric tiles in the Wang-tile convention).
func isSymmetricSelfFacing(symmetry string) bool {
	switch symmetry {
	case "X", "I", "T":
		return true
	default:
		return false
	}
}

func (t *MxgmnTileset) TileCount() int      { return t.tileCount }
func (t *MxgmnTileset) DirectionCount() int { return 4 }

func (t *MxgmnTileset) Constraints() [][]bitset.Superposition { return t.constraints }
func (t *MxgmnTileset) Weights() []uint32                     { return t.weights }

// TileName returns the XML-declared name of a tile id, for preview/export
// labeling.
func (t *MxgmnTileset) TileName(id int) string { return t.names[id] }

// Subsets returns the named tile groupings declared in the <subsets> block
// (spec §5 supplement): tile subsets were present in the original
// implementation but dropped from the distilled specification.
func (t *MxgmnTileset) Subsets() map[string][]string { return t.subsets }

var _ TileSet = (*MxgmnTileset)(nil)
