// Command wfcinfo inspects an exported world file and prints its header,
// its chunk deduplication count, and the tile id range of chunk (0,0).
package main

import (
	"fmt"
	"os"

	"github.com/tilecollapse/wfc/internal/worldio"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: wfcinfo <file.wfcw>\n")
		os.Exit(1)
	}

	path := os.Args[1]
	r, err := worldio.OpenReader(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	h := r.Header()
	fmt.Printf("File: %s\n", path)
	fmt.Printf("World size: %d x %d\n", h.Width, h.Height)
	fmt.Printf("Chunk size: %d (overlap %d)\n", h.ChunkSize, h.Overlap)
	fmt.Printf("Chunk grid: %d x %d (%d chunks total)\n", h.ChunksX, h.ChunksY, h.NumChunks)
	fmt.Printf("Unique chunk payloads: %d", h.NumUniqueChunks)
	if h.NumChunks > 0 {
		saved := h.NumChunks - h.NumUniqueChunks
		fmt.Printf(" (%d deduplicated, %.1f%% saved)", saved, 100*float64(saved)/float64(h.NumChunks))
	}
	fmt.Println()

	// Sample the first chunk to show the tile id range present.
	chunkW := min(int(h.ChunkSize), int(h.Width))
	chunkH := min(int(h.ChunkSize), int(h.Height))
	tiles, err := r.ChunkTiles(0, 0, chunkW*chunkH)
	if err != nil {
		fmt.Printf("Chunk (0,0): ERROR: %v\n", err)
		return
	}
	minTile, maxTile := tiles[0], tiles[0]
	for _, t := range tiles {
		if t < minTile {
			minTile = t
		}
		if t > maxTile {
			maxTile = t
		}
	}
	fmt.Printf("Chunk (0,0): %d tiles, ids [%d, %d]\n", len(tiles), minTile, maxTile)
}
