// Package world orchestrates wave function collapse over a world too large
// to solve as a single graph: it splits the world into overlapping chunks,
// solves each chunk independently through an internal/backend, and merges
// results back into a shared cell array so neighbouring chunks see each
// other's already-collapsed boundary.
package world

import (
	"fmt"
	"log"
	"sync"

	"github.com/tilecollapse/wfc/internal/backend"
	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
	"github.com/tilecollapse/wfc/internal/rng"
	"github.com/tilecollapse/wfc/internal/solver"
	"github.com/tilecollapse/wfc/internal/tileset"
)

// Settings configures a World: its extent, how it's chunked, how chunk
// results are merged and seeded, and which solver/backend run each chunk.
type Settings struct {
	Width, Height int // world size in cells
	ChunkSize     int
	Overlap       int
	Merging       ChunkMerging
	Mode          GenerationMode
	BaseSeed      uint64

	TileSet        tileset.TileSet
	SolverSettings solver.Settings
	Backend        backend.Backend

	Verbose bool
}

// World holds the generation state for one chunked solve: the dense cell
// array shared by every chunk, and each chunk's progress.
type World struct {
	settings         Settings
	chunksX, chunksY int

	mu         sync.Mutex
	cells      []bitset.Superposition
	states     map[ChunkCoord]ChunkState
	rng        *rng.Rng
	startChunk ChunkCoord
	inFlight   map[*backend.WfcTask]roundEntry
}

// New builds a World ready for Generate. Cells start fully ambiguous.
func New(settings Settings) (*World, error) {
	if settings.ChunkSize <= 0 {
		return nil, fmt.Errorf("world: ChunkSize must be positive, got %d", settings.ChunkSize)
	}
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, fmt.Errorf("world: Width and Height must be positive")
	}
	if settings.TileSet == nil {
		return nil, fmt.Errorf("world: TileSet is required")
	}
	if settings.Backend == nil {
		settings.Backend = backend.NewSingleThreaded()
	}

	fill := bitset.Filled(settings.TileSet.TileCount())
	cells := make([]bitset.Superposition, settings.Width*settings.Height)
	for i := range cells {
		cells[i] = fill
	}

	chunksX := (settings.Width + settings.ChunkSize - 1) / settings.ChunkSize
	chunksY := (settings.Height + settings.ChunkSize - 1) / settings.ChunkSize

	w := &World{
		settings: settings,
		chunksX:  chunksX,
		chunksY:  chunksY,
		cells:    cells,
		states:   make(map[ChunkCoord]ChunkState, chunksX*chunksY),
	}
	if settings.Mode == NonDeterministic {
		w.rng = rng.New(settings.BaseSeed)
	}
	return w, nil
}

func (w *World) index(x, y int) int { return y*w.settings.Width + x }

func (w *World) coreBounds(coord ChunkCoord) (loX, hiX, loY, hiY int) {
	loX = coord.X * w.settings.ChunkSize
	hiX = loX + w.settings.ChunkSize
	if hiX > w.settings.Width {
		hiX = w.settings.Width
	}
	loY = coord.Y * w.settings.ChunkSize
	hiY = loY + w.settings.ChunkSize
	if hiY > w.settings.Height {
		hiY = w.settings.Height
	}
	return
}

// ChunkBounds returns the cell-space rectangle (half-open on the high end)
// a chunk occupies once its overlap band is included.
func (w *World) ChunkBounds(coord ChunkCoord) (loX, hiX, loY, hiY int) {
	loX, hiX = bounds(coord.X, w.settings.ChunkSize, w.settings.Overlap, w.settings.Width)
	loY, hiY = bounds(coord.Y, w.settings.ChunkSize, w.settings.Overlap, w.settings.Height)
	return
}

// extract builds a fresh grid graph over the given cell-space rectangle,
// seeded with whatever the shared cell array currently holds there —
// ambiguous where no neighbour has collapsed it yet, singleton where one
// has.
func (w *World) extract(loX, hiX, loY, hiY int) *graph.Graph[bitset.Superposition] {
	width, height := hiX-loX, hiY-loY
	fill := bitset.Filled(w.settings.TileSet.TileCount())
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: width, Height: height}, fill)

	w.mu.Lock()
	for ly := 0; ly < height; ly++ {
		for lx := 0; lx < width; lx++ {
			g.Nodes[ly*width+lx] = w.cells[w.index(loX+lx, loY+ly)]
		}
	}
	w.mu.Unlock()
	return g
}

// merge writes a solved chunk's tiles back into the shared cell array
// according to the configured ChunkMerging policy. For Mixed, an overlap
// edge is only written when the neighbour on that side hasn't been
// scheduled yet: a neighbour that's already Scheduled or Done owns that
// seam and its commitments must not be overwritten.
func (w *World) merge(coord ChunkCoord, loX, hiX, loY, hiY int, result *graph.Graph[int]) {
	width, height := hiX-loX, hiY-loY
	coreLoX, coreHiX, coreLoY, coreHiY := w.coreBounds(coord)
	policy := w.settings.Merging.Policy
	discard := w.settings.Merging.Discard

	leftOpen := coord.X > 0 && w.state(ChunkCoord{X: coord.X - 1, Y: coord.Y}) == ChunkPending
	rightOpen := coord.X < w.chunksX-1 && w.state(ChunkCoord{X: coord.X + 1, Y: coord.Y}) == ChunkPending
	topOpen := coord.Y > 0 && w.state(ChunkCoord{X: coord.X, Y: coord.Y - 1}) == ChunkPending
	bottomOpen := coord.Y < w.chunksY-1 && w.state(ChunkCoord{X: coord.X, Y: coord.Y + 1}) == ChunkPending

	w.mu.Lock()
	defer w.mu.Unlock()
	for ly := 0; ly < height; ly++ {
		for lx := 0; lx < width; lx++ {
			gx, gy := loX+lx, loY+ly
			inCore := gx >= coreLoX && gx < coreHiX && gy >= coreLoY && gy < coreHiY

			write := inCore
			if !inCore {
				// How deep into the overlap band this cell sits, measured
				// from the chunk rectangle's own outer edge; Discard
				// withholds the band nearest that edge regardless of policy.
				edgeDist := min(lx, width-1-lx)
				if d := min(ly, height-1-ly); d < edgeDist {
					edgeDist = d
				}
				if edgeDist >= discard {
					switch policy {
					case Full:
						write = true
					case Mixed:
						write = true
						if gx < coreLoX && !leftOpen {
							write = false
						}
						if gx >= coreHiX && !rightOpen {
							write = false
						}
						if gy < coreLoY && !topOpen {
							write = false
						}
						if gy >= coreHiY && !bottomOpen {
							write = false
						}
					}
				}
			}
			if write {
				w.cells[w.index(gx, gy)] = bitset.Single(result.Nodes[ly*width+lx])
			}
		}
	}
}

func (w *World) state(coord ChunkCoord) ChunkState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.states[coord]
}

func (w *World) setState(coord ChunkCoord, s ChunkState) {
	w.mu.Lock()
	w.states[coord] = s
	w.mu.Unlock()
}

// seedFor derives coord's solver seed. Both generation modes use the same
// formula; it's scheduling order and concurrency, not seeding, that
// distinguishes them.
func (w *World) seedFor(coord ChunkCoord) uint64 {
	return w.settings.BaseSeed + uint64(coord.X)*1000 + uint64(coord.Y)
}

// kindOf reports ChunkStart for the chunk generation grows outward from,
// ChunkNormal otherwise.
func (w *World) kindOf(coord ChunkCoord) ChunkKind {
	if coord == w.startChunk {
		return ChunkStart
	}
	return ChunkNormal
}

// neighbours returns coord's in-grid 4-directional neighbours.
func (w *World) neighbours(coord ChunkCoord) []ChunkCoord {
	ns := make([]ChunkCoord, 0, 4)
	if coord.X > 0 {
		ns = append(ns, ChunkCoord{X: coord.X - 1, Y: coord.Y})
	}
	if coord.X < w.chunksX-1 {
		ns = append(ns, ChunkCoord{X: coord.X + 1, Y: coord.Y})
	}
	if coord.Y > 0 {
		ns = append(ns, ChunkCoord{X: coord.X, Y: coord.Y - 1})
	}
	if coord.Y < w.chunksY-1 {
		ns = append(ns, ChunkCoord{X: coord.X, Y: coord.Y + 1})
	}
	return ns
}

// frontierReady reports whether coord touches at least one already-Done
// chunk, the expansion rule NonDeterministic mode uses in place of
// Deterministic's fixed Up/Left scan order.
func (w *World) frontierReady(coord ChunkCoord) bool {
	for _, n := range w.neighbours(coord) {
		if w.state(n) == ChunkDone {
			return true
		}
	}
	return false
}

// dependenciesDone reports whether coord's up and left neighbours have
// already been merged — the only two neighbours whose overlap band coord's
// own extract() depends on having been written. Missing neighbours at the
// world edge count as satisfied.
func (w *World) dependenciesDone(coord ChunkCoord) bool {
	if coord.X > 0 && w.state(ChunkCoord{X: coord.X - 1, Y: coord.Y}) != ChunkDone {
		return false
	}
	if coord.Y > 0 && w.state(ChunkCoord{X: coord.X, Y: coord.Y - 1}) != ChunkDone {
		return false
	}
	return true
}

func (w *World) allChunks() []ChunkCoord {
	coords := make([]ChunkCoord, 0, w.chunksX*w.chunksY)
	for y := 0; y < w.chunksY; y++ {
		for x := 0; x < w.chunksX; x++ {
			coords = append(coords, ChunkCoord{X: x, Y: y})
		}
	}
	return coords
}

// Generate runs the chunked solve to completion. Deterministic mode scans
// the chunk grid in fixed order, a chunk becoming eligible once its Up and
// Left neighbours are Done, and solves one eligible chunk at a time so
// output never depends on goroutine scheduling. NonDeterministic mode
// instead starts from a randomly chosen chunk and expands outward: a chunk
// becomes eligible once any of its four neighbours is Done, and every
// round's eligible set is dispatched together (letting a MultiThreaded
// Backend actually parallelize them).
func (w *World) Generate() error {
	for _, c := range w.allChunks() {
		w.setState(c, ChunkPending)
	}
	if w.settings.Mode == Deterministic {
		return w.generateDeterministic()
	}
	return w.generateNonDeterministic()
}

func (w *World) generateDeterministic() error {
	pending := w.allChunks()
	for len(pending) > 0 {
		ready := make([]ChunkCoord, 0, len(pending))
		rest := pending[:0]
		for _, c := range pending {
			if w.dependenciesDone(c) {
				ready = append(ready, c)
			} else {
				rest = append(rest, c)
			}
		}
		pending = rest
		if len(ready) == 0 {
			return fmt.Errorf("world: no eligible chunk but %d remain: dependency cycle", len(pending))
		}
		sortChunksByHilbert(ready)
		for _, c := range ready {
			if err := w.runChunk(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *World) generateNonDeterministic() error {
	pending := w.allChunks()
	w.startChunk = pending[w.rng.IntN(len(pending))]
	ready := []ChunkCoord{w.startChunk}
	pending = removeChunk(pending, w.startChunk)

	for len(ready) > 0 {
		sortChunksByHilbert(ready)
		for _, c := range ready {
			w.setState(c, ChunkScheduled)
			if err := w.queueChunk(c); err != nil {
				return err
			}
		}
		for range ready {
			if err := w.drainOne(); err != nil {
				return err
			}
		}

		next := make([]ChunkCoord, 0, len(pending))
		rest := pending[:0]
		for _, c := range pending {
			if w.frontierReady(c) {
				next = append(next, c)
			} else {
				rest = append(rest, c)
			}
		}
		pending = rest
		ready = next
	}
	if len(pending) > 0 {
		return fmt.Errorf("world: no eligible chunk but %d remain: dependency cycle", len(pending))
	}
	return nil
}

// removeChunk returns coords without the first occurrence of c.
func removeChunk(coords []ChunkCoord, c ChunkCoord) []ChunkCoord {
	for i, v := range coords {
		if v == c {
			return append(coords[:i], coords[i+1:]...)
		}
	}
	return coords
}

func (w *World) buildTask(coord ChunkCoord) (*backend.WfcTask, int, int, int, int) {
	loX, hiX, loY, hiY := w.ChunkBounds(coord)
	g := w.extract(loX, hiX, loY, hiY)
	seed := w.seedFor(coord)
	task := backend.NewWfcTask(w.settings.TileSet, g, seed, w.settings.SolverSettings)
	task.ChunkX, task.ChunkY = coord.X, coord.Y
	if w.settings.Verbose {
		log.Printf("world: solving %s chunk (%d,%d) seed=%d", w.kindOf(coord), coord.X, coord.Y, seed)
	}
	return task, loX, hiX, loY, hiY
}

func (w *World) runChunk(coord ChunkCoord) error {
	w.setState(coord, ChunkScheduled)
	task, loX, hiX, loY, hiY := w.buildTask(coord)
	if err := w.settings.Backend.QueueTask(task); err != nil {
		w.setState(coord, ChunkFailed)
		return &solver.WorldGenerationFailed{ChunkX: coord.X, ChunkY: coord.Y, Cause: err}
	}
	if _, err := w.settings.Backend.WaitForOutput(); err != nil {
		w.setState(coord, ChunkFailed)
		return &solver.WorldGenerationFailed{ChunkX: coord.X, ChunkY: coord.Y, Cause: err}
	}
	w.merge(coord, loX, hiX, loY, hiY, task.Result)
	w.setState(coord, ChunkDone)
	return nil
}

// chunkBounds is the cell-space rectangle a queued task's result needs
// merging into, recorded alongside the task so drainOne can find it again
// once the backend delivers that task out of submission order.
type chunkBounds struct{ loX, hiX, loY, hiY int }

func (w *World) queueChunk(coord ChunkCoord) error {
	task, loX, hiX, loY, hiY := w.buildTask(coord)
	w.mu.Lock()
	if w.inFlight == nil {
		w.inFlight = make(map[*backend.WfcTask]roundEntry)
	}
	w.inFlight[task] = roundEntry{coord: coord, bounds: chunkBounds{loX, hiX, loY, hiY}}
	w.mu.Unlock()
	return w.settings.Backend.QueueTask(task)
}

type roundEntry struct {
	coord  ChunkCoord
	bounds chunkBounds
}

func (w *World) drainOne() error {
	out, err := w.settings.Backend.WaitForOutput()
	w.mu.Lock()
	entry, ok := w.inFlight[out]
	delete(w.inFlight, out)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("world: backend delivered an unrecognized task")
	}
	if err != nil {
		w.setState(entry.coord, ChunkFailed)
		return &solver.WorldGenerationFailed{ChunkX: entry.coord.X, ChunkY: entry.coord.Y, Cause: err}
	}
	w.merge(entry.coord, entry.bounds.loX, entry.bounds.hiX, entry.bounds.loY, entry.bounds.hiY, out.Result)
	w.setState(entry.coord, ChunkDone)
	return nil
}

// Tiles returns the world's resolved tile grid. ok is false if any cell is
// still ambiguous (Generate did not complete, or failed partway).
func (w *World) Tiles() (tiles []int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tiles = make([]int, len(w.cells))
	for i, c := range w.cells {
		tile, collapsed := c.Collapse()
		if !collapsed {
			return nil, false
		}
		tiles[i] = tile
	}
	return tiles, true
}

// TileAt returns the resolved tile at (x, y), or ok=false if still ambiguous.
func (w *World) TileAt(x, y int) (tile int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cells[w.index(x, y)].Collapse()
}
