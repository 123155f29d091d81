package graph

import (
	"testing"

	"github.com/tilecollapse/wfc/internal/bitset"
)

func TestNewGrid2DNonPeriodicBounds(t *testing.T) {
	g := NewGrid2D(Grid2DSettings{Width: 4, Height: 4}, bitset.Filled(1))
	if len(g.Nodes) != 16 {
		t.Fatalf("len(Nodes) = %d, want 16", len(g.Nodes))
	}

	// Corner (0,0) should have exactly 2 neighbours: Down and Right.
	corner := index2D(0, 0, 4)
	if len(g.Neighbors[corner]) != 2 {
		t.Fatalf("corner neighbours = %d, want 2", len(g.Neighbors[corner]))
	}

	// Interior cell has 4 neighbours.
	interior := index2D(2, 2, 4)
	if len(g.Neighbors[interior]) != 4 {
		t.Fatalf("interior neighbours = %d, want 4", len(g.Neighbors[interior]))
	}
}

func TestNewGrid2DPeriodicUniformDegree(t *testing.T) {
	g := NewGrid2D(Grid2DSettings{Width: 4, Height: 4, Periodic: true}, bitset.Filled(1))
	for i, nbrs := range g.Neighbors {
		if len(nbrs) != 4 {
			t.Fatalf("node %d has %d neighbours, want 4 (periodic)", i, len(nbrs))
		}
	}
}

func TestRoundTripAdjacency(t *testing.T) {
	w, h := 5, 3
	g := NewGrid2D(Grid2DSettings{Width: w, Height: h}, bitset.Filled(1))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := index2D(x, y, w)
			for _, nb := range g.Neighbors[idx] {
				nx, ny := CoordAt2D(nb.Index, w)
				dir := Direction2D(nb.Direction)
				dx, dy := dir.offset()
				if nx != x+dx || ny != y+dy {
					t.Errorf("edge (%d,%d)->dir %d should land on (%d,%d), got (%d,%d)",
						x, y, nb.Direction, x+dx, y+dy, nx, ny)
				}
				// the reverse edge must exist too.
				found := false
				for _, back := range g.Neighbors[nb.Index] {
					if back.Index == idx && Direction2D(back.Direction) == dir.Opposite() {
						found = true
					}
				}
				if !found {
					t.Errorf("missing reverse edge for (%d,%d) dir %d", x, y, nb.Direction)
				}
			}
		}
	}
}

func TestPeriodic1x1SelfLoop(t *testing.T) {
	g := NewGrid2D(Grid2DSettings{Width: 1, Height: 1, Periodic: true}, bitset.Filled(1))
	if len(g.Neighbors[0]) != 4 {
		t.Fatalf("1x1 periodic should have 4 self-loop neighbours, got %d", len(g.Neighbors[0]))
	}
	for _, nb := range g.Neighbors[0] {
		if nb.Index != 0 {
			t.Errorf("1x1 periodic neighbour should point to itself, got %d", nb.Index)
		}
	}
}

func TestDirectionOppositeIsInvolution(t *testing.T) {
	for _, d := range []Direction2D{Up, Down, Left, Right} {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite(Opposite(%d)) != %d", d, d)
		}
	}
}

func TestGraphValidateCatchesOutOfRange(t *testing.T) {
	g := New(2, bitset.Filled(1))
	g.AddEdge(0, 0, 5)
	if err := g.Validate(); err == nil {
		t.Fatal("expected Validate to reject out-of-range neighbour index")
	}
}

func TestGraphValidateCatchesDuplicateDirection(t *testing.T) {
	g := New(2, bitset.Filled(1))
	g.AddEdge(0, 0, 1)
	g.AddEdge(0, 0, 1)
	if err := g.Validate(); err == nil {
		t.Fatal("expected Validate to reject duplicate direction")
	}
}

func TestNewGrid3DDegree(t *testing.T) {
	g := NewGrid3D(Grid3DSettings{Width: 3, Height: 3, Depth: 3}, bitset.Filled(1))
	center := index3D(1, 1, 1, 3, 3)
	if len(g.Neighbors[center]) != 6 {
		t.Fatalf("center neighbours = %d, want 6", len(g.Neighbors[center]))
	}
	corner := index3D(0, 0, 0, 3, 3)
	if len(g.Neighbors[corner]) != 3 {
		t.Fatalf("corner neighbours = %d, want 3", len(g.Neighbors[corner]))
	}
}

func TestValidateConvertsCollapsedGraph(t *testing.T) {
	g := New(3, bitset.Empty())
	g.Nodes[0] = bitset.Single(1)
	g.Nodes[1] = bitset.Single(2)
	g.Nodes[2] = bitset.Filled(3) // not collapsed

	result, unresolved := Validate(g)
	if result.Nodes[0] != 1 || result.Nodes[1] != 2 {
		t.Errorf("collapsed nodes not converted correctly: %v", result.Nodes)
	}
	if len(unresolved) != 1 || unresolved[0] != 2 {
		t.Errorf("unresolved = %v, want [2]", unresolved)
	}
}
