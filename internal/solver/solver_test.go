package solver

import (
	"errors"
	"testing"

	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
)

// stubTileset is a minimal hand-built tileset.TileSet for solver tests that
// need exact control over the constraint table, rather than going through
// one of the internal/tileset constructors.
type stubTileset struct {
	tileCount   int
	dirs        int
	constraints [][]bitset.Superposition
	weights     []uint32
}

func (s *stubTileset) TileCount() int                        { return s.tileCount }
func (s *stubTileset) DirectionCount() int                    { return s.dirs }
func (s *stubTileset) Constraints() [][]bitset.Superposition { return s.constraints }
func (s *stubTileset) Weights() []uint32                     { return s.weights }

func fourDirRow(allowed bitset.Superposition) []bitset.Superposition {
	row := make([]bitset.Superposition, 4)
	for d := range row {
		row[d] = allowed
	}
	return row
}

// singleTileTileset has exactly one tile that only ever neighbours itself.
func singleTileTileset() *stubTileset {
	return &stubTileset{
		tileCount:   1,
		dirs:        4,
		constraints: [][]bitset.Superposition{fourDirRow(bitset.Single(0))},
		weights:     []uint32{1},
	}
}

// checkerboardTileset has two tiles, each only ever neighbouring the other.
func checkerboardTileset() *stubTileset {
	return &stubTileset{
		tileCount: 2,
		dirs:      4,
		constraints: [][]bitset.Superposition{
			fourDirRow(bitset.Single(1)),
			fourDirRow(bitset.Single(0)),
		},
		weights: []uint32{1, 1},
	}
}

// cliqueTileset has two tiles that only ever neighbour themselves, never
// each other — two disconnected adjacency cliques.
func cliqueTileset() *stubTileset {
	return &stubTileset{
		tileCount: 2,
		dirs:      4,
		constraints: [][]bitset.Superposition{
			fourDirRow(bitset.Single(0)),
			fourDirRow(bitset.Single(1)),
		},
		weights: []uint32{1, 1},
	}
}

// oddCycleTileset has two tiles that must always differ from their
// neighbour, over a 2-direction scheme. Placed around an odd cycle this is
// mathematically unsatisfiable regardless of collapse order (no 2-colouring
// of an odd cycle exists), and weights forces tile 0 to be picked whenever
// it's a candidate: SelectRandom's cumulative scan never reaches a
// zero-weight tile ahead of a nonzero one, so with weights {1, 0} tile 0
// wins deterministically whenever present.
func oddCycleTileset() *stubTileset {
	return &stubTileset{
		tileCount: 2,
		dirs:      2,
		constraints: [][]bitset.Superposition{
			{bitset.Single(1), bitset.Single(1)},
			{bitset.Single(0), bitset.Single(0)},
		},
		weights: []uint32{1, 0},
	}
}

func newTriangle(fill bitset.Superposition) *graph.Graph[bitset.Superposition] {
	g := graph.New(3, fill)
	g.AddEdge(0, 0, 1)
	g.AddEdge(1, 1, 0)
	g.AddEdge(1, 0, 2)
	g.AddEdge(2, 1, 1)
	g.AddEdge(2, 0, 0)
	g.AddEdge(0, 1, 2)
	return g
}

func assertConsistent(t *testing.T, ts *stubTileset, g *graph.Graph[int]) {
	t.Helper()
	for i, nbrs := range g.Neighbors {
		for _, nb := range nbrs {
			allowed := ts.constraints[g.Nodes[i]][nb.Direction]
			if !allowed.Contains(g.Nodes[nb.Index]) {
				t.Errorf("node %d = tile %d has illegal neighbour %d = tile %d in direction %d",
					i, g.Nodes[i], nb.Index, g.Nodes[nb.Index], nb.Direction)
			}
		}
	}
}

func TestSolveTrivialSingleTile(t *testing.T) {
	ts := singleTileTileset()
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: 4, Height: 4}, bitset.Filled(1))

	result, stats, err := Solve(ts, g, 0, Settings{Entropy: Scanline})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i, tile := range result.Nodes {
		if tile != 0 {
			t.Errorf("node %d = %d, want 0", i, tile)
		}
	}
	if stats.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", stats.Attempts)
	}
	if stats.BacktrackCount != 0 {
		t.Errorf("BacktrackCount = %d, want 0", stats.BacktrackCount)
	}
}

func TestSolvePeriodic1x1SelfSatisfies(t *testing.T) {
	ts := singleTileTileset()
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: 1, Height: 1, Periodic: true}, bitset.Filled(1))
	if len(g.Neighbors[0]) != 4 {
		t.Fatalf("expected 4 self-edges on a periodic 1x1 grid, got %d", len(g.Neighbors[0]))
	}

	result, _, err := Solve(ts, g, 0, Settings{Entropy: Scanline})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Nodes[0] != 0 {
		t.Errorf("node 0 = %d, want 0", result.Nodes[0])
	}
}

func TestSolveCheckerboard(t *testing.T) {
	ts := checkerboardTileset()
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: 4, Height: 4}, bitset.Filled(2))

	result, _, err := Solve(ts, g, 42, Settings{Entropy: TileCount})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	assertConsistent(t, ts, result)
	for i, tile := range result.Nodes {
		if tile != 0 && tile != 1 {
			t.Fatalf("node %d = %d, want 0 or 1", i, tile)
		}
	}
}

func TestSolveContradictoryPreSeededRegardlessOfSeed(t *testing.T) {
	ts := cliqueTileset()
	for _, seed := range []uint64{0, 1, 999} {
		g := graph.NewGrid2D(graph.Grid2DSettings{Width: 2, Height: 2}, bitset.Filled(2))
		g.Nodes[0] = bitset.Single(0) // (0,0) forced tile A
		g.Nodes[2] = bitset.Single(1) // (0,1) forced tile B, directly adjacent to (0,0)

		_, _, err := Solve(ts, g, seed, Settings{Entropy: TileCount})
		var contradiction *Contradiction
		if !errors.As(err, &contradiction) {
			t.Errorf("seed %d: err = %v, want *Contradiction", seed, err)
		}
	}
}

func TestSolveEmptyInitialSuperpositionIsImmediateContradiction(t *testing.T) {
	ts := singleTileTileset()
	g := graph.New(1, bitset.Empty())

	_, stats, err := Solve(ts, g, 0, Settings{Entropy: Scanline})
	var contradiction *Contradiction
	if !errors.As(err, &contradiction) {
		t.Fatalf("err = %v, want *Contradiction", err)
	}
	if contradiction.Node != 0 {
		t.Errorf("Contradiction.Node = %d, want 0", contradiction.Node)
	}
	if stats.BacktrackCount != 1 {
		t.Errorf("BacktrackCount = %d, want 1", stats.BacktrackCount)
	}
}

func TestSolveDeterministicAcrossRepeatedInvocations(t *testing.T) {
	ts := checkerboardTileset()
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: 4, Height: 4}, bitset.Filled(2))
	settings := Settings{Entropy: TileCount}

	first, _, err := Solve(ts, g, 7, settings)
	if err != nil {
		t.Fatalf("first Solve: %v", err)
	}
	second, _, err := Solve(ts, g, 7, settings)
	if err != nil {
		t.Fatalf("second Solve: %v", err)
	}
	for i := range first.Nodes {
		if first.Nodes[i] != second.Nodes[i] {
			t.Fatalf("node %d diverged across identical-seed runs: %d vs %d", i, first.Nodes[i], second.Nodes[i])
		}
	}
}

// TestSolveOddCycleExhaustsRestartsThenContradicts exercises the Restart
// heuristic end to end against a tileset that is genuinely unsatisfiable on
// a 3-cycle (no 2-colouring of an odd cycle exists), so every restart must
// fail the same way and the solve must report Contradiction only once the
// restart budget is exhausted.
func TestSolveOddCycleExhaustsRestartsThenContradicts(t *testing.T) {
	ts := oddCycleTileset()

	g := newTriangle(bitset.Filled(2))
	_, _, err := Solve(ts, g, 0, Settings{Entropy: Scanline, Backtracking: DisabledBacktracking()})
	var contradiction *Contradiction
	if !errors.As(err, &contradiction) {
		t.Fatalf("disabled backtracking: err = %v, want *Contradiction", err)
	}

	g = newTriangle(bitset.Filled(2))
	_, stats, err := Solve(ts, g, 0, Settings{
		Entropy:      Scanline,
		Backtracking: EnabledBacktracking(5, RestartHeuristic()),
	})
	if !errors.As(err, &contradiction) {
		t.Fatalf("enabled backtracking: err = %v, want *Contradiction", err)
	}
	if stats.Attempts != 6 {
		t.Errorf("Attempts = %d, want 6 (1 initial + 5 restarts)", stats.Attempts)
	}
	if stats.BacktrackCount != 6 {
		t.Errorf("BacktrackCount = %d, want 6", stats.BacktrackCount)
	}
}

func TestCascadeForbidsTriedTileAndReturnsImmediately(t *testing.T) {
	st := &solveState{hist: &history{}}
	f := frame{
		node:      0,
		triedTile: 0,
		before:    []bitset.Superposition{bitset.FromTiles(0, 1)},
	}

	node, ok := st.cascade(f)
	if !ok {
		t.Fatal("cascade reported no recovery, want success")
	}
	if node != 0 {
		t.Errorf("cascade returned node %d, want 0", node)
	}
	if !st.cells[0].Equal(bitset.Single(1)) {
		t.Errorf("cells[0] = %v, want {1}", st.cells[0].TileIter())
	}
}

func TestCascadePopsFurtherFrameWhenNodeEmptied(t *testing.T) {
	st := &solveState{
		hist: &history{frames: []frame{
			{node: 0, triedTile: 5, before: []bitset.Superposition{bitset.FromTiles(0, 5)}},
		}},
	}
	f := frame{
		node:      0,
		triedTile: 0,
		before:    []bitset.Superposition{bitset.Single(0)},
	}

	node, ok := st.cascade(f)
	if !ok {
		t.Fatal("cascade reported no recovery, want success via the earlier frame")
	}
	if node != 0 {
		t.Errorf("cascade returned node %d, want 0", node)
	}
	if !st.cells[0].Equal(bitset.Single(0)) {
		t.Errorf("cells[0] = %v, want {0}", st.cells[0].TileIter())
	}
	if st.hist.depth() != 0 {
		t.Errorf("history depth = %d, want 0 (the earlier frame was consumed)", st.hist.depth())
	}
}

func TestCascadeExhaustsHistory(t *testing.T) {
	st := &solveState{hist: &history{}}
	f := frame{
		node:      0,
		triedTile: 0,
		before:    []bitset.Superposition{bitset.Single(0)},
	}

	if _, ok := st.cascade(f); ok {
		t.Fatal("cascade reported success with no history left to fall back to")
	}
}

func TestPopFramesDiscardsIntermediate(t *testing.T) {
	st := &solveState{hist: &history{frames: []frame{
		{node: 1},
		{node: 2},
		{node: 3},
	}}}

	f, ok := st.popFrames(2)
	if !ok {
		t.Fatal("popFrames reported failure, want success")
	}
	if f.node != 2 {
		t.Errorf("popped frame node = %d, want 2 (the second-to-last pushed)", f.node)
	}
	if st.hist.depth() != 1 {
		t.Fatalf("history depth = %d, want 1", st.hist.depth())
	}
	remaining, _ := st.hist.pop()
	if remaining.node != 1 {
		t.Errorf("remaining frame node = %d, want 1", remaining.node)
	}
}

func TestPopUntilDegreeSkipsBelowThreshold(t *testing.T) {
	st := &solveState{hist: &history{frames: []frame{
		{node: 1, outDegree: 5},
		{node: 2, outDegree: 0},
	}}}

	f, ok := st.popUntilDegree(2)
	if !ok {
		t.Fatal("popUntilDegree reported failure, want success")
	}
	if f.node != 1 {
		t.Errorf("popUntilDegree returned node %d, want 1 (the frame with outDegree >= 2)", f.node)
	}
	if st.hist.depth() != 0 {
		t.Errorf("history depth = %d, want 0", st.hist.depth())
	}
}

func TestRestartRestoresOriginalInputNotFullyFilled(t *testing.T) {
	initial := []bitset.Superposition{bitset.Single(0), bitset.FromTiles(0, 1)}
	st := &solveState{
		cells:        []bitset.Superposition{bitset.Empty(), bitset.Single(1)},
		initial:      append([]bitset.Superposition(nil), initial...),
		tileCount:    2,
		restartsLeft: 1,
		seed:         5,
	}

	outcome, _, err := st.restart(0)
	if outcome != outcomeRestarted || err != nil {
		t.Fatalf("restart() = (%v, %v), want (outcomeRestarted, nil)", outcome, err)
	}
	for i := range initial {
		if !st.cells[i].Equal(initial[i]) {
			t.Errorf("cells[%d] = %v, want the original pre-seeded value %v", i, st.cells[i].TileIter(), initial[i].TileIter())
		}
	}
}

func TestBacktrackDisabledReturnsContradictionImmediately(t *testing.T) {
	st := &solveState{settings: Settings{Backtracking: DisabledBacktracking()}}

	outcome, _, err := st.backtrack(3)
	if outcome != outcomeContradiction {
		t.Errorf("outcome = %v, want outcomeContradiction", outcome)
	}
	var contradiction *Contradiction
	if !errors.As(err, &contradiction) || contradiction.Node != 3 {
		t.Errorf("err = %v, want *Contradiction{Node: 3}", err)
	}
	if st.backtrackCount != 1 {
		t.Errorf("backtrackCount = %d, want 1", st.backtrackCount)
	}
}
