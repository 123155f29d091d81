package world

import (
	"testing"

	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// singleTileTileset has exactly one tile that only ever neighbours itself.
type singleTileTileset struct{}

func (singleTileTileset) TileCount() int      { return 1 }
func (singleTileTileset) DirectionCount() int { return 4 }
func (singleTileTileset) Constraints() [][]bitset.Superposition {
	row := make([]bitset.Superposition, 4)
	for d := range row {
		row[d] = bitset.Single(0)
	}
	return [][]bitset.Superposition{row}
}
func (singleTileTileset) Weights() []uint32 { return []uint32{1} }

// checkerboardTileset has two tiles that must always differ from every
// neighbour, forcing a strict checkerboard pattern with only two global
// solutions (the two parity offsets).
type checkerboardTileset struct{}

func (checkerboardTileset) TileCount() int      { return 2 }
func (checkerboardTileset) DirectionCount() int { return 4 }
func (checkerboardTileset) Constraints() [][]bitset.Superposition {
	row := func(t int) []bitset.Superposition {
		r := make([]bitset.Superposition, 4)
		for d := range r {
			r[d] = bitset.Single(t)
		}
		return r
	}
	return [][]bitset.Superposition{row(1), row(0)}
}
func (checkerboardTileset) Weights() []uint32 { return []uint32{1, 1} }

func TestChunkBoundsClampToWorldExtent(t *testing.T) {
	w, err := New(Settings{
		Width: 10, Height: 10, ChunkSize: 4, Overlap: 2,
		TileSet: singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	loX, hiX, loY, hiY := w.ChunkBounds(ChunkCoord{X: 0, Y: 0})
	if loX != 0 || loY != 0 || hiX != 6 || hiY != 6 {
		t.Errorf("chunk (0,0) bounds = (%d,%d)-(%d,%d), want (0,0)-(6,6)", loX, loY, hiX, hiY)
	}

	loX, hiX, loY, hiY = w.ChunkBounds(ChunkCoord{X: 2, Y: 2})
	if loX != 6 || loY != 6 || hiX != 10 || hiY != 10 {
		t.Errorf("chunk (2,2) bounds = (%d,%d)-(%d,%d), want (6,6)-(10,10) (clamped to world extent)", loX, loY, hiX, hiY)
	}
}

func TestGenerateSingleTileFillsEveryCellDeterministic(t *testing.T) {
	w, err := New(Settings{
		Width: 9, Height: 9, ChunkSize: 3, Overlap: 1,
		Merging:  ChunkMerging{Policy: Full},
		Mode:     Deterministic,
		BaseSeed: 1,
		TileSet:  singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tiles, ok := w.Tiles()
	if !ok {
		t.Fatal("Tiles() reported ambiguous cells after a successful Generate")
	}
	for i, tile := range tiles {
		if tile != 0 {
			t.Errorf("cell %d = %d, want 0", i, tile)
		}
	}
}

func TestGenerateDeterministicReproducibleAcrossRuns(t *testing.T) {
	settings := Settings{
		Width: 12, Height: 8, ChunkSize: 4, Overlap: 1,
		Merging:  ChunkMerging{Policy: Full},
		Mode:     Deterministic,
		BaseSeed: 42,
		TileSet:  checkerboardTileset{},
	}

	first, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Generate(); err != nil {
		t.Fatalf("Generate (first): %v", err)
	}
	firstTiles, ok := first.Tiles()
	if !ok {
		t.Fatal("first.Tiles() ambiguous")
	}

	second, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Generate(); err != nil {
		t.Fatalf("Generate (second): %v", err)
	}
	secondTiles, ok := second.Tiles()
	if !ok {
		t.Fatal("second.Tiles() ambiguous")
	}

	for i := range firstTiles {
		if firstTiles[i] != secondTiles[i] {
			t.Fatalf("cell %d diverged across identical-settings runs: %d vs %d", i, firstTiles[i], secondTiles[i])
		}
	}
}

// TestGenerateOverlapMergeKeepsCheckerboardConsistentAcrossChunks verifies
// the invariant overlap merging exists for: with Overlap >= 1 and Full
// merging, every chunk sees its already-solved neighbours' boundary before
// it solves, so the strict alternate-with-every-neighbour constraint holds
// everywhere, including across chunk seams, not just within a chunk.
func TestGenerateOverlapMergeKeepsCheckerboardConsistentAcrossChunks(t *testing.T) {
	w, err := New(Settings{
		Width: 8, Height: 8, ChunkSize: 4, Overlap: 1,
		Merging:  ChunkMerging{Policy: Full},
		Mode:     Deterministic,
		BaseSeed: 7,
		TileSet:  checkerboardTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tiles, ok := w.Tiles()
	if !ok {
		t.Fatal("Tiles() ambiguous after a successful Generate")
	}

	at := func(x, y int) int { return tiles[y*w.settings.Width+x] }
	for y := 0; y < w.settings.Height; y++ {
		for x := 0; x < w.settings.Width; x++ {
			if x+1 < w.settings.Width && at(x, y) == at(x+1, y) {
				t.Errorf("horizontal neighbours (%d,%d) and (%d,%d) both = %d", x, y, x+1, y, at(x, y))
			}
			if y+1 < w.settings.Height && at(x, y) == at(x, y+1) {
				t.Errorf("vertical neighbours (%d,%d) and (%d,%d) both = %d", x, y, x, y+1, at(x, y))
			}
		}
	}
}

func TestGenerateNonDeterministicCompletesAndStaysConsistent(t *testing.T) {
	w, err := New(Settings{
		Width: 8, Height: 8, ChunkSize: 4, Overlap: 1,
		Merging:  ChunkMerging{Policy: Full},
		Mode:     NonDeterministic,
		BaseSeed: 3,
		TileSet:  checkerboardTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tiles, ok := w.Tiles()
	if !ok {
		t.Fatal("Tiles() ambiguous after a successful Generate")
	}
	at := func(x, y int) int { return tiles[y*w.settings.Width+x] }
	for y := 0; y < w.settings.Height; y++ {
		for x := 0; x < w.settings.Width; x++ {
			if x+1 < w.settings.Width && at(x, y) == at(x+1, y) {
				t.Errorf("horizontal neighbours (%d,%d) and (%d,%d) both = %d", x, y, x+1, y, at(x, y))
			}
			if y+1 < w.settings.Height && at(x, y) == at(x, y+1) {
				t.Errorf("vertical neighbours (%d,%d) and (%d,%d) both = %d", x, y, x, y+1, at(x, y))
			}
		}
	}
}

func TestMergeInteriorLeavesOverlapBandUntouched(t *testing.T) {
	w, err := New(Settings{
		Width: 6, Height: 3, ChunkSize: 3, Overlap: 1,
		Merging: ChunkMerging{Policy: Interior},
		TileSet: singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Pre-seed every cell to a sentinel so we can tell which ones the merge
	// touched: tile 5 isn't in this tileset, so Single(0) (what a real merge
	// writes) can never equal this sentinel.
	sentinel := bitset.FromTiles(0, 5)
	for i := range w.cells {
		w.cells[i] = sentinel
	}

	loX, hiX, loY, hiY := w.ChunkBounds(ChunkCoord{X: 0, Y: 0})
	width := hiX - loX
	height := hiY - loY
	result := &graph.Graph[int]{Nodes: make([]int, width*height)} // all zeros: tile 0 everywhere
	w.merge(ChunkCoord{X: 0, Y: 0}, loX, hiX, loY, hiY, result)

	coreLoX, coreHiX, _, _ := w.coreBounds(ChunkCoord{X: 0, Y: 0})
	for x := 0; x < w.settings.Width; x++ {
		got := w.cells[w.index(x, 0)]
		if x >= coreLoX && x < coreHiX {
			if !got.Equal(bitset.Single(0)) {
				t.Errorf("core cell x=%d not written by Interior merge: %v", x, got.TileIter())
			}
		} else if x < hiX {
			if !got.Equal(sentinel) {
				t.Errorf("overlap cell x=%d was overwritten by Interior merge: %v", x, got.TileIter())
			}
		}
	}
}

func TestSeedForDeterministicIsPureFunctionOfCoordinate(t *testing.T) {
	w, err := New(Settings{
		Width: 4, Height: 4, ChunkSize: 2, Mode: Deterministic, BaseSeed: 100,
		TileSet: singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := w.seedFor(ChunkCoord{X: 2, Y: 3})
	want := uint64(100) + 2*1000 + 3
	if got != want {
		t.Errorf("seedFor((2,3)) = %d, want %d", got, want)
	}
}

// TestSeedForUsesSameFormulaRegardlessOfMode guards against seeds being
// drawn from a live generator in NonDeterministic mode: both modes must
// derive a chunk's seed as the same pure function of BaseSeed and
// coordinate, so only scheduling differs between them.
func TestSeedForUsesSameFormulaRegardlessOfMode(t *testing.T) {
	w, err := New(Settings{
		Width: 4, Height: 4, ChunkSize: 2, Mode: NonDeterministic, BaseSeed: 100,
		TileSet: singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := w.seedFor(ChunkCoord{X: 2, Y: 3})
	want := uint64(100) + 2*1000 + 3
	if got != want {
		t.Errorf("seedFor((2,3)) = %d, want %d", got, want)
	}
}

// TestGenerateMixedMergeKeepsCheckerboardConsistentAcrossChunks exercises
// the spec-mandated chunked-consistency scenario with ChunkMerging::Mixed,
// the policy most likely to regress into degenerate Full/Interior behavior.
func TestGenerateMixedMergeKeepsCheckerboardConsistentAcrossChunks(t *testing.T) {
	w, err := New(Settings{
		Width: 32, Height: 32, ChunkSize: 16, Overlap: 2,
		Merging:  ChunkMerging{Policy: Mixed},
		Mode:     Deterministic,
		BaseSeed: 11,
		TileSet:  checkerboardTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tiles, ok := w.Tiles()
	if !ok {
		t.Fatal("Tiles() ambiguous after a successful Generate")
	}

	at := func(x, y int) int { return tiles[y*w.settings.Width+x] }
	for y := 0; y < w.settings.Height; y++ {
		for x := 0; x < w.settings.Width; x++ {
			if x+1 < w.settings.Width && at(x, y) == at(x+1, y) {
				t.Errorf("horizontal neighbours (%d,%d) and (%d,%d) both = %d", x, y, x+1, y, at(x, y))
			}
			if y+1 < w.settings.Height && at(x, y) == at(x, y+1) {
				t.Errorf("vertical neighbours (%d,%d) and (%d,%d) both = %d", x, y, x, y+1, at(x, y))
			}
		}
	}
}

// TestMergeMixedSkipsEdgeFacingAlreadyScheduledNeighbour verifies Mixed's
// actual rule: an overlap edge facing a neighbour that is already
// Scheduled or Done is left untouched, even though it's outside the chunk
// core and Mixed would otherwise write it.
func TestMergeMixedSkipsEdgeFacingAlreadyScheduledNeighbour(t *testing.T) {
	w, err := New(Settings{
		Width: 6, Height: 3, ChunkSize: 3, Overlap: 1,
		Merging: ChunkMerging{Policy: Mixed},
		TileSet: singleTileTileset{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sentinel := bitset.FromTiles(0, 5)
	for i := range w.cells {
		w.cells[i] = sentinel
	}
	// The right neighbour of chunk (0,0) is already Scheduled, so Mixed
	// must not write into the overlap band facing it.
	w.setState(ChunkCoord{X: 1, Y: 0}, ChunkScheduled)

	loX, hiX, loY, hiY := w.ChunkBounds(ChunkCoord{X: 0, Y: 0})
	width := hiX - loX
	height := hiY - loY
	result := &graph.Graph[int]{Nodes: make([]int, width*height)}
	w.merge(ChunkCoord{X: 0, Y: 0}, loX, hiX, loY, hiY, result)

	_, coreHiX, _, _ := w.coreBounds(ChunkCoord{X: 0, Y: 0})
	for x := coreHiX; x < hiX; x++ {
		got := w.cells[w.index(x, 0)]
		if !got.Equal(sentinel) {
			t.Errorf("overlap cell x=%d facing a Scheduled neighbour was overwritten by Mixed merge: %v", x, got.TileIter())
		}
	}
}
