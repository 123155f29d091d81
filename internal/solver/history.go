package solver

import "github.com/tilecollapse/wfc/internal/bitset"

// frame is one entry of the collapse history: enough state to undo a single
// collapse-and-propagate step and retry it differently. Snapshotting the
// whole cell array (rather than a delta) keeps undo trivial to get right;
// graphs in this solver are small enough (at most a few thousand cells per
// chunk) that this is cheap.
type frame struct {
	node      int
	triedTile int
	before    []bitset.Superposition
	outDegree int
}

// history is the stack backtracking pops from. Only populated when
// Settings.Backtracking.Enabled is true.
type history struct {
	frames []frame
}

func (h *history) push(f frame) {
	h.frames = append(h.frames, f)
}

func (h *history) pop() (frame, bool) {
	if len(h.frames) == 0 {
		return frame{}, false
	}
	last := len(h.frames) - 1
	f := h.frames[last]
	h.frames = h.frames[:last]
	return f, true
}

func (h *history) depth() int { return len(h.frames) }

func (h *history) reset() { h.frames = h.frames[:0] }

func snapshot(cells []bitset.Superposition) []bitset.Superposition {
	out := make([]bitset.Superposition, len(cells))
	copy(out, cells)
	return out
}
