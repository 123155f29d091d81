// Package backend runs WfcTask values to completion, either inline or
// across a worker pool, and hands back their results in the order they
// finish.
package backend

import (
	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
	"github.com/tilecollapse/wfc/internal/solver"
	"github.com/tilecollapse/wfc/internal/tileset"
)

// WfcTask bundles everything one Solve call needs plus the slots its result
// lands in. A task is mutated in place by whichever Backend runs it, so a
// caller must not reuse one across backends concurrently.
type WfcTask struct {
	Graph    *graph.Graph[bitset.Superposition]
	TileSet  tileset.TileSet
	Seed     uint64
	Settings solver.Settings

	// ChunkX, ChunkY identify the task's position when it was scheduled by a
	// world orchestrator. Unused (left zero) for a standalone task.
	ChunkX, ChunkY int

	Result *graph.Graph[int]
	Stats  solver.Stats
	Err    error
}

// NewWfcTask builds a task ready to be queued on a Backend.
func NewWfcTask(ts tileset.TileSet, g *graph.Graph[bitset.Superposition], seed uint64, settings solver.Settings) *WfcTask {
	return &WfcTask{Graph: g, TileSet: ts, Seed: seed, Settings: settings}
}

// Reset restores every cell of the task's graph to the fully ambiguous
// superposition and clears any previous result, so the task can be
// re-queued from scratch. The solver's Restart backtracking heuristic does
// not call it: a restart inside Solve restores the graph's original input
// cells, pre-seeded ones included.
func (t *WfcTask) Reset() {
	fill := bitset.Filled(t.TileSet.TileCount())
	for i := range t.Graph.Nodes {
		t.Graph.Nodes[i] = fill
	}
	t.Result = nil
	t.Stats = solver.Stats{}
	t.Err = nil
}

// run executes the task's solve synchronously and records the outcome.
func (t *WfcTask) run() {
	t.Result, t.Stats, t.Err = solver.Solve(t.TileSet, t.Graph, t.Seed, t.Settings)
}
