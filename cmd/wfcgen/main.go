// Command wfcgen builds a tileset, runs wave function collapse over a
// single graph or a chunked world, and writes the solved result as a
// binary export and/or a preview image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tilecollapse/wfc/internal/backend"
	"github.com/tilecollapse/wfc/internal/bitset"
	"github.com/tilecollapse/wfc/internal/graph"
	"github.com/tilecollapse/wfc/internal/preview"
	"github.com/tilecollapse/wfc/internal/solver"
	"github.com/tilecollapse/wfc/internal/tileset"
	"github.com/tilecollapse/wfc/internal/world"
	"github.com/tilecollapse/wfc/internal/worldio"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		tilesetName string
		mxgmnPath   string
		width       int
		height      int
		chunkSize   int
		overlap     int
		merge       string
		discard     int
		mode        string
		seed        uint64
		entropy     string
		backtrack   int
		workers     int
		entropyProp float64
		outPath     string
		previewPath string
		format      string
		quality     int
		scale       int
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&tilesetName, "tileset", "basic", "Built-in tileset: basic, carcassonne, mxgmn")
	flag.StringVar(&mxgmnPath, "mxgmn", "", "Path to a SimpleTiledModel-style XML tileset (required when -tileset=mxgmn)")
	flag.IntVar(&width, "width", 64, "World width in cells")
	flag.IntVar(&height, "height", 64, "World height in cells")
	flag.IntVar(&chunkSize, "chunk-size", 0, "Chunk edge length; 0 solves the whole world as a single graph")
	flag.IntVar(&overlap, "overlap", 2, "Cells of context shared between neighbouring chunks")
	flag.StringVar(&merge, "merge", "interior", "Chunk merge policy: interior, full, mixed")
	flag.IntVar(&discard, "discard", 1, "Overlap cells nearest a chunk's outer edge left unmerged (applies to -merge=full and -merge=mixed)")
	flag.StringVar(&mode, "mode", "deterministic", "Chunk seeding mode: deterministic, nondeterministic")
	flag.Uint64Var(&seed, "seed", 1, "Base random seed")
	flag.StringVar(&entropy, "entropy", "tilecount", "Collapse heuristic: tilecount, shannon, scanline")
	flag.IntVar(&backtrack, "backtrack", 0, "Backtracking restart budget; 0 disables backtracking")
	flag.IntVar(&workers, "workers", 1, "Chunk solver workers; 1 runs single-threaded")
	flag.Float64Var(&entropyProp, "restart-fraction", 0.5, "History fraction popped per backtrack step")
	flag.StringVar(&outPath, "out", "", "Binary export path (required)")
	flag.StringVar(&previewPath, "preview", "", "Optional preview image path")
	flag.StringVar(&format, "format", "png", "Preview image format: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 85, "Preview JPEG/WebP quality 1-100")
	flag.IntVar(&scale, "scale", 8, "Preview pixels per cell")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wfcgen [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Run wave function collapse and export the solved world.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("wfcgen %s (commit %s)\n", version, commit)
		os.Exit(0)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "wfcgen: -out is required")
		flag.Usage()
		os.Exit(1)
	}
	if !strings.HasSuffix(outPath, ".wfcw") {
		log.Fatal("Output file must have a .wfcw extension")
	}

	ts, err := resolveTileset(tilesetName, mxgmnPath)
	if err != nil {
		log.Fatalf("Tileset: %v", err)
	}

	entropyMode, err := parseEntropy(entropy)
	if err != nil {
		log.Fatalf("Entropy: %v", err)
	}

	bt := solver.DisabledBacktracking()
	if backtrack > 0 {
		bt = solver.EnabledBacktracking(backtrack, solver.ProportionalHeuristic(entropyProp))
	}
	solverSettings := solver.Settings{Entropy: entropyMode, Backtracking: bt}

	start := time.Now()
	var tiles []int
	var chunkSizeOut, overlapOut, chunksX, chunksY int

	if chunkSize <= 0 {
		tiles, err = solveSingleGraph(ts, width, height, seed, solverSettings)
		chunkSizeOut, overlapOut, chunksX, chunksY = width, 0, 1, 1
	} else {
		tiles, chunksX, chunksY, err = solveChunkedWorld(ts, width, height, chunkSize, overlap, merge, discard, mode, seed, solverSettings, workers, verbose)
		chunkSizeOut, overlapOut = chunkSize, overlap
	}
	if err != nil {
		log.Fatalf("Generation: %v", err)
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	fmt.Printf("wfcgen %s (commit %s)\n", version, commit)
	fmt.Printf("  %-14s %dx%d\n", "World:", width, height)
	fmt.Printf("  %-14s %s\n", "Tileset:", tilesetName)
	if chunkSize > 0 {
		fmt.Printf("  %-14s %d (overlap %d, %s merge, %s mode)\n", "Chunk size:", chunkSize, overlap, merge, mode)
	} else {
		fmt.Printf("  %-14s single graph\n", "Chunking:")
	}
	fmt.Printf("  %-14s %v\n", "Elapsed:", elapsed)

	if err := exportWorld(outPath, tiles, width, height, chunkSizeOut, overlapOut, chunksX, chunksY); err != nil {
		log.Fatalf("Export: %v", err)
	}
	fmt.Printf("  %-14s %s\n", "Export:", outPath)

	if previewPath != "" {
		if err := writePreview(previewPath, format, quality, scale, tiles, width, height, ts.TileCount()); err != nil {
			log.Fatalf("Preview: %v", err)
		}
		fmt.Printf("  %-14s %s\n", "Preview:", previewPath)
	}
}

func resolveTileset(name, mxgmnPath string) (tileset.TileSet, error) {
	switch name {
	case "basic":
		return tileset.NewBasicTileset(), nil
	case "carcassonne":
		return tileset.NewCarcassonneTileset(), nil
	case "mxgmn":
		if mxgmnPath == "" {
			return nil, fmt.Errorf("-mxgmn is required when -tileset=mxgmn")
		}
		return tileset.LoadMxgmnTileset(mxgmnPath)
	default:
		return nil, fmt.Errorf("unknown tileset %q (supported: basic, carcassonne, mxgmn)", name)
	}
}

func parseEntropy(s string) (solver.EntropyMode, error) {
	switch s {
	case "tilecount":
		return solver.TileCount, nil
	case "shannon":
		return solver.Shannon, nil
	case "scanline":
		return solver.Scanline, nil
	default:
		return 0, fmt.Errorf("unknown entropy mode %q (supported: tilecount, shannon, scanline)", s)
	}
}

func parseMergePolicy(s string) (world.MergePolicy, error) {
	switch s {
	case "interior":
		return world.Interior, nil
	case "full":
		return world.Full, nil
	case "mixed":
		return world.Mixed, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q (supported: interior, full, mixed)", s)
	}
}

func parseMode(s string) (world.GenerationMode, error) {
	switch s {
	case "deterministic":
		return world.Deterministic, nil
	case "nondeterministic":
		return world.NonDeterministic, nil
	default:
		return 0, fmt.Errorf("unknown generation mode %q (supported: deterministic, nondeterministic)", s)
	}
}

func solveSingleGraph(ts tileset.TileSet, width, height int, seed uint64, settings solver.Settings) ([]int, error) {
	g := graph.NewGrid2D(graph.Grid2DSettings{Width: width, Height: height}, bitset.Filled(ts.TileCount()))
	result, _, err := solver.Solve(ts, g, seed, settings)
	if err != nil {
		return nil, err
	}
	return result.Nodes, nil
}

func solveChunkedWorld(ts tileset.TileSet, width, height, chunkSize, overlap int, merge string, discard int, mode string, seed uint64, settings solver.Settings, workers int, verbose bool) (tiles []int, chunksX, chunksY int, err error) {
	mergePolicy, err := parseMergePolicy(merge)
	if err != nil {
		return nil, 0, 0, err
	}
	genMode, err := parseMode(mode)
	if err != nil {
		return nil, 0, 0, err
	}

	var be backend.Backend
	if workers > 1 {
		be = backend.NewMultiThreaded(workers)
	} else {
		be = backend.NewSingleThreaded()
	}

	w, err := world.New(world.Settings{
		Width: width, Height: height,
		ChunkSize: chunkSize,
		Overlap:   overlap,
		Merging:   world.ChunkMerging{Policy: mergePolicy, Discard: discard},
		Mode:      genMode,
		BaseSeed:  seed,

		TileSet:        ts,
		SolverSettings: settings,
		Backend:        be,
		Verbose:        verbose,
	})
	if err != nil {
		return nil, 0, 0, err
	}

	if err := w.Generate(); err != nil {
		return nil, 0, 0, err
	}
	if closer, ok := be.(*backend.MultiThreaded); ok {
		if err := closer.Close(); err != nil && verbose {
			log.Printf("wfcgen: backend close: %v", err)
		}
	}

	tiles, ok := w.Tiles()
	if !ok {
		return nil, 0, 0, fmt.Errorf("world has unresolved cells after a successful Generate")
	}
	chunksX = (width + chunkSize - 1) / chunkSize
	chunksY = (height + chunkSize - 1) / chunkSize
	return tiles, chunksX, chunksY, nil
}

func exportWorld(path string, tiles []int, width, height, chunkSize, overlap, chunksX, chunksY int) error {
	if chunkSize <= 0 {
		chunkSize = width
	}
	w, err := worldio.NewWriter(path, width, height, chunkSize, overlap, chunksX, chunksY)
	if err != nil {
		return err
	}

	for cy := 0; cy < chunksY; cy++ {
		for cx := 0; cx < chunksX; cx++ {
			loX, hiX := cx*chunkSize, min(width, (cx+1)*chunkSize)
			loY, hiY := cy*chunkSize, min(height, (cy+1)*chunkSize)
			chunkTiles := make([]int, 0, (hiX-loX)*(hiY-loY))
			for y := loY; y < hiY; y++ {
				for x := loX; x < hiX; x++ {
					chunkTiles = append(chunkTiles, tiles[y*width+x])
				}
			}
			if err := w.WriteChunk(cx, cy, chunkTiles); err != nil {
				w.Abort()
				return err
			}
		}
	}
	return w.Finalize()
}

func writePreview(path, format string, quality, scale int, tiles []int, width, height, tileCount int) error {
	enc, err := preview.NewEncoder(format, quality)
	if err != nil {
		return err
	}
	img, err := preview.Render(tiles, width, height, scale, preview.DefaultPalette(tileCount))
	if err != nil {
		return err
	}
	data, err := enc.Encode(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

