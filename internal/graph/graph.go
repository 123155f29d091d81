// Package graph implements the adjacency-graph data model shared by the
// solver and the chunked world orchestrator: a flat arena of nodes with
// integer-indexed neighbour lists, never direct pointers, so that cloning,
// snapshotting, and cross-thread transfer stay trivial (spec §9 Design
// Notes, "Graph cycles").
package graph

import (
	"fmt"

	"github.com/tilecollapse/wfc/internal/bitset"
)

// Neighbour is one edge out of a node: a direction tag whose meaning is
// fixed by the tileset, and the index of the node it leads to.
type Neighbour struct {
	Direction int
	Index     int
}

// Graph is an arena of nodes of type T plus, for every node, its outgoing
// neighbour list. Node indices are stable for the lifetime of the Graph.
type Graph[T any] struct {
	Nodes     []T
	Neighbors [][]Neighbour

	// Order records the sequence of node indices touched by a solve, in the
	// order the solver visited them. Populated by internal/solver, not by
	// graph construction. See SPEC_FULL.md §5 "graph.order" supplement.
	Order []int
}

// New creates a graph with n nodes, each initialized to fill, and empty
// neighbour lists. Callers populate Neighbors via AddEdge or by building one
// of the grid topologies in this package.
func New[T any](n int, fill T) *Graph[T] {
	nodes := make([]T, n)
	for i := range nodes {
		nodes[i] = fill
	}
	return &Graph[T]{
		Nodes:     nodes,
		Neighbors: make([][]Neighbour, n),
	}
}

// AddEdge appends a directed edge from -> to tagged with direction. It does
// not validate uniqueness or bounds; callers building grid topologies are
// expected to already guarantee the invariants in spec §3.
func (g *Graph[T]) AddEdge(from int, direction int, to int) {
	g.Neighbors[from] = append(g.Neighbors[from], Neighbour{Direction: direction, Index: to})
}

// Validate checks the structural invariants from spec §3: every neighbour
// index is in range, and directions are unique per node.
func (g *Graph[T]) Validate() error {
	n := len(g.Nodes)
	for i, nbrs := range g.Neighbors {
		seen := make(map[int]bool, len(nbrs))
		for _, nb := range nbrs {
			if nb.Index < 0 || nb.Index >= n {
				return fmt.Errorf("graph: node %d has out-of-range neighbour index %d", i, nb.Index)
			}
			if seen[nb.Direction] {
				return fmt.Errorf("graph: node %d has duplicate direction %d", i, nb.Direction)
			}
			seen[nb.Direction] = true
		}
	}
	return nil
}

// Clone returns a deep copy safe to mutate independently of g. Neighbour
// lists are shared by slice header but never mutated in place by the
// solver, so a shallow copy of the slice headers plus a fresh Nodes slice
// suffices.
func (g *Graph[T]) Clone() *Graph[T] {
	nodes := make([]T, len(g.Nodes))
	copy(nodes, g.Nodes)
	neighbors := make([][]Neighbour, len(g.Neighbors))
	copy(neighbors, g.Neighbors)
	return &Graph[T]{Nodes: nodes, Neighbors: neighbors}
}

// Validate consumes a Graph[bitset.Superposition] and converts it to
// Graph[int], replacing every cell with its collapsed tile id. Cells that
// never collapsed (popcount != 1) are reported, but the conversion still
// proceeds — callers that need a hard failure on incomplete collapse should
// check the returned slice, as internal/solver does: it reports a
// Contradiction when the slice is non-empty.
func Validate(g *Graph[bitset.Superposition]) (*Graph[int], []int) {
	result := &Graph[int]{
		Nodes:     make([]int, len(g.Nodes)),
		Neighbors: g.Neighbors,
		Order:     g.Order,
	}
	var unresolved []int
	for i, cell := range g.Nodes {
		if tile, ok := cell.Collapse(); ok {
			result.Nodes[i] = tile
		} else {
			result.Nodes[i] = -1
			unresolved = append(unresolved, i)
		}
	}
	return result, unresolved
}

// CollapseOrder returns the recorded sequence of node indices touched during
// a solve (SPEC_FULL.md §5, "graph.order"). Empty until a solve has run.
func (g *Graph[T]) CollapseOrder() []int {
	return g.Order
}
