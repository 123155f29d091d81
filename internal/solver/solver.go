// Package solver implements the wave function collapse core: entropy-based
// node selection, worklist constraint propagation, weighted random collapse,
// and backtracking recovery from contradictions.
package solver

import (
	"math"
	"time"

	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
	"github.com/tilecollapse/wfc/internal/rng"
	"github.com/tilecollapse/wfc/internal/tileset"
)

// Stats reports metadata about one Solve invocation: how many top-level
// attempts (restarts included) it took, how many times backtracking kicked
// in, and how long the whole solve took. Surfaced because the benchmark
// harness itself is out of scope, but callers still want to know how hard a
// solve was to find (SPEC_FULL.md §5 supplement).
type Stats struct {
	Attempts       int
	BacktrackCount int
	Elapsed        time.Duration
}

type backtrackOutcome int

const (
	outcomeRetryNode backtrackOutcome = iota
	outcomeRestarted
	outcomeContradiction
)

type solveState struct {
	cells       []bitset.Superposition
	initial     []bitset.Superposition
	neighbors   [][]graph.Neighbour
	constraints [][]bitset.Superposition
	weights     []uint32
	tileCount   int

	settings       Settings
	seed           uint64
	attempt        int
	restartsLeft   int
	backtrackCount int
	rng            *rng.Rng
	hist           *history
	order          []int
}

// Solve runs wave function collapse over g using ts's constraints, returning
// a fully collapsed Graph[int] on success. g is not mutated; its cells are
// copied into the solver's working state.
func Solve(ts tileset.TileSet, g *graph.Graph[bitset.Superposition], seed uint64, settings Settings) (*graph.Graph[int], Stats, error) {
	n := len(g.Nodes)
	st := &solveState{
		cells:        snapshot(g.Nodes),
		initial:      snapshot(g.Nodes),
		neighbors:    g.Neighbors,
		constraints:  ts.Constraints(),
		weights:      ts.Weights(),
		tileCount:    ts.TileCount(),
		settings:     settings,
		seed:         seed,
		restartsLeft: settings.Backtracking.RestartsLeft,
		rng:          rng.New(seed),
	}
	if settings.Backtracking.Enabled {
		st.hist = &history{}
	}

	stats := Stats{Attempts: 1}
	start := time.Now()
	lastProgress := start
	worklist := allIndices(n)

	for {
		failedNode, ok := st.propagate(worklist)
		if !ok {
			outcome, node, err := st.backtrack(failedNode)
			switch outcome {
			case outcomeContradiction:
				stats.Elapsed = time.Since(start)
				stats.BacktrackCount = st.backtrackCount
				return nil, stats, err
			case outcomeRestarted:
				stats.Attempts++
				worklist = allIndices(n)
				continue
			case outcomeRetryNode:
				worklist = []int{node}
				continue
			}
		}

		if settings.HasDeadline() && time.Now().After(settings.Deadline) {
			stats.Elapsed = time.Since(start)
			stats.BacktrackCount = st.backtrackCount
			return nil, stats, &Timeout{}
		}

		node, found := st.selectNode()
		if !found {
			break
		}

		if st.hist != nil {
			st.hist.push(frame{
				node:      node,
				before:    snapshot(st.cells),
				outDegree: st.outDegree(node),
			})
		}

		if err := st.cells[node].SelectRandom(st.rng, st.weights); err != nil {
			stats.Elapsed = time.Since(start)
			stats.BacktrackCount = st.backtrackCount
			return nil, stats, &InvalidWeights{Node: node}
		}
		tile, _ := st.cells[node].Collapse()
		if st.hist != nil {
			st.hist.frames[len(st.hist.frames)-1].triedTile = tile
		}
		st.order = append(st.order, node)

		if settings.Progress != nil && settings.ProgressInterval > 0 && time.Since(lastProgress) >= settings.ProgressInterval {
			select {
			case settings.Progress <- ProgressSnapshot{NodesCollapsed: len(st.order), NodesTotal: n, Attempt: stats.Attempts}:
			default:
			}
			lastProgress = time.Now()
		}

		worklist = []int{node}
	}

	stats.Elapsed = time.Since(start)
	stats.BacktrackCount = st.backtrackCount

	workGraph := &graph.Graph[bitset.Superposition]{Nodes: st.cells, Neighbors: st.neighbors, Order: st.order}
	result, unresolved := graph.Validate(workGraph)
	if len(unresolved) > 0 {
		return nil, stats, &Contradiction{Node: unresolved[0]}
	}
	return result, stats, nil
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// propagate runs the worklist algorithm to fixpoint. It also treats any cell
// already empty in worklist as an immediate failure, which is what makes an
// empty initial superposition (or a superposition emptied by a prior failed
// attempt) surface as a contradiction rather than being silently ignored.
func (st *solveState) propagate(worklist []int) (failedNode int, ok bool) {
	n := len(st.cells)
	queued := make([]bool, n)
	queue := make([]int, 0, len(worklist))
	for _, i := range worklist {
		if st.cells[i].IsEmpty() {
			return i, false
		}
		if !queued[i] {
			queued[i] = true
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		queued[i] = false

		cellI := st.cells[i]
		for _, nb := range st.neighbors[i] {
			var allowed bitset.Superposition
			for _, t := range cellI.TileIter() {
				allowed = bitset.Join(allowed, st.constraints[t][nb.Direction])
			}
			reduced := bitset.Intersect(st.cells[nb.Index], allowed)
			if reduced.Equal(st.cells[nb.Index]) {
				continue
			}
			st.cells[nb.Index] = reduced
			if reduced.IsEmpty() {
				return nb.Index, false
			}
			if !queued[nb.Index] {
				queued[nb.Index] = true
				queue = append(queue, nb.Index)
			}
		}
	}
	return -1, true
}

// outDegree counts node's still-ambiguous neighbours at the moment it was
// collapsed, used by the Degree backtracking heuristic.
func (st *solveState) outDegree(node int) int {
	count := 0
	for _, nb := range st.neighbors[node] {
		if st.cells[nb.Index].CountBits() > 1 {
			count++
		}
	}
	return count
}

func (st *solveState) selectNode() (int, bool) {
	switch st.settings.Entropy {
	case Scanline:
		for i, c := range st.cells {
			if c.CountBits() > 1 {
				return i, true
			}
		}
		return -1, false
	case Shannon:
		return st.reservoirSelect(st.shannon)
	default: // TileCount
		return st.reservoirSelect(func(c bitset.Superposition) float64 { return float64(c.CountBits()) })
	}
}

// reservoirSelect finds the node minimising score, breaking ties uniformly
// at random via reservoir sampling (spec §8 "Entropy selection under
// ties"): each tying node replaces the incumbent with probability 1/k, k
// being the running count of ties seen so far.
func (st *solveState) reservoirSelect(score func(bitset.Superposition) float64) (int, bool) {
	best := math.Inf(1)
	bestNode := -1
	ties := 0
	for i, c := range st.cells {
		if c.CountBits() <= 1 {
			continue
		}
		s := score(c)
		switch {
		case s < best:
			best = s
			bestNode = i
			ties = 1
		case s == best:
			ties++
			if st.rng.IntN(ties) == 0 {
				bestNode = i
			}
		}
	}
	if bestNode == -1 {
		return -1, false
	}
	return bestNode, true
}

func (st *solveState) shannon(c bitset.Superposition) float64 {
	n := c.CountBits()
	var weighted float64
	for _, t := range c.TileIter() {
		w := float64(st.weights[t])
		if w <= 0 {
			continue
		}
		weighted += w * math.Log2(w)
	}
	return math.Log2(float64(n)) - weighted/float64(n)
}

// backtrack consults the configured policy after propagate reports a
// contradiction at failedNode, and returns how the caller should resume.
func (st *solveState) backtrack(failedNode int) (backtrackOutcome, int, error) {
	st.backtrackCount++
	if !st.settings.Backtracking.Enabled {
		return outcomeContradiction, 0, &Contradiction{Node: failedNode}
	}

	h := st.settings.Backtracking.Heuristic
	if h.Kind == HeuristicRestart {
		return st.restart(failedNode)
	}

	var f frame
	var found bool
	switch h.Kind {
	case HeuristicStandard:
		f, found = st.popFrames(1)
	case HeuristicFixed:
		d := h.Distance
		if d < 1 {
			d = 1
		}
		f, found = st.popFrames(d)
	case HeuristicDegree:
		f, found = st.popUntilDegree(h.Degree)
	case HeuristicProportional:
		n := int(math.Ceil(h.Proportion * float64(st.hist.depth())))
		if n < 1 {
			n = 1
		}
		f, found = st.popFrames(n)
	default:
		f, found = st.popFrames(1)
	}
	if !found {
		return st.fallback(failedNode)
	}

	node, ok := st.cascade(f)
	if !ok {
		return st.fallback(failedNode)
	}
	return outcomeRetryNode, node, nil
}

// popFrames pops n frames off the history, discarding all but the last, and
// returns the last one. Reports false if the history ran out first.
func (st *solveState) popFrames(n int) (frame, bool) {
	var last frame
	for i := 0; i < n; i++ {
		f, ok := st.hist.pop()
		if !ok {
			return frame{}, false
		}
		last = f
	}
	return last, true
}

// popUntilDegree pops frames, discarding each, until one whose recorded
// out-degree is at least degree.
func (st *solveState) popUntilDegree(degree int) (frame, bool) {
	for {
		f, ok := st.hist.pop()
		if !ok {
			return frame{}, false
		}
		if f.outDegree >= degree {
			return f, true
		}
	}
}

// cascade restores f's pre-collapse snapshot and forbids the tile that was
// tried there. If that empties the node's superposition entirely (every
// alternative has now been exhausted at that point in history), it pops one
// further frame and repeats ("Standard" semantics, reused by every
// heuristic once its target frame is located).
func (st *solveState) cascade(f frame) (int, bool) {
	for {
		st.cells = snapshot(f.before)
		st.cells[f.node].Remove(f.triedTile)
		if !st.cells[f.node].IsEmpty() {
			return f.node, true
		}
		next, ok := st.hist.pop()
		if !ok {
			return 0, false
		}
		f = next
	}
}

func (st *solveState) fallback(failedNode int) (backtrackOutcome, int, error) {
	if st.restartsLeft > 0 {
		return st.restart(failedNode)
	}
	return outcomeContradiction, 0, &Contradiction{Node: failedNode}
}

func (st *solveState) restart(failedNode int) (backtrackOutcome, int, error) {
	if st.restartsLeft <= 0 {
		return outcomeContradiction, 0, &Contradiction{Node: failedNode}
	}
	st.restartsLeft--
	st.attempt++
	st.rng = rng.New(st.seed + uint64(st.attempt))
	copy(st.cells, st.initial)
	if st.hist != nil {
		st.hist.reset()
	}
	st.order = st.order[:0]
	return outcomeRestarted, -1, nil
}
