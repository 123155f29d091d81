// Command wfcpreview re-renders an exported world to an image, optionally
// in a different format, quality, or pixel scale than it was first
// previewed at.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tilecollapse/wfc/internal/preview"
	"github.com/tilecollapse/wfc/internal/worldio"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		format      string
		quality     int
		scale       int
		verbose     bool
		showVersion bool
	)

	flag.StringVar(&format, "format", "png", "Target image encoding: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP quality 1-100")
	flag.IntVar(&scale, "scale", 8, "Pixels per cell")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wfcpreview [flags] <input.wfcw> <output-image>\n\n")
		fmt.Fprintf(os.Stderr, "Re-render an exported world to an image in a different format, quality,\n")
		fmt.Fprintf(os.Stderr, "or pixel scale. Always creates a new file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("wfcpreview %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	if !strings.HasSuffix(inputPath, ".wfcw") {
		log.Fatal("Input file must have a .wfcw extension")
	}
	if inputPath == outputPath {
		log.Fatal("Input and output paths must be different")
	}

	start := time.Now()
	reader, err := worldio.OpenReader(inputPath)
	if err != nil {
		log.Fatalf("Opening input: %v", err)
	}
	defer reader.Close()

	header := reader.Header()
	if verbose {
		log.Printf("Opened %s: %dx%d world, %d chunks (%d unique)",
			inputPath, header.Width, header.Height, header.NumChunks, header.NumUniqueChunks)
	}

	tiles, maxTile, err := assembleTiles(reader, header)
	if err != nil {
		log.Fatalf("Assembling tiles: %v", err)
	}

	enc, err := preview.NewEncoder(format, quality)
	if err != nil {
		log.Fatalf("Encoder: %v", err)
	}

	fmt.Printf("wfcpreview %s (commit %s)\n", version, commit)
	fmt.Printf("  %-14s %dx%d\n", "World:", header.Width, header.Height)
	fmt.Printf("  %-14s %s\n", "Format:", format)
	fmt.Printf("  %-14s %dpx/cell\n", "Scale:", scale)

	img, err := preview.Render(tiles, int(header.Width), int(header.Height), scale, preview.DefaultPalette(maxTile+1))
	if err != nil {
		log.Fatalf("Render: %v", err)
	}
	data, err := enc.Encode(img)
	if err != nil {
		log.Fatalf("Encode: %v", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Fatalf("Writing output: %v", err)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fi, _ := os.Stat(outputPath)
	fmt.Printf("Done: %s, %v → %s\n", humanSize(fi.Size()), elapsed, outputPath)
}

// assembleTiles stitches every chunk's tiles back into one row-major
// width*height grid and reports the largest tile id seen, used to size a
// default palette.
func assembleTiles(reader *worldio.Reader, header worldio.Header) (tiles []int, maxTile int, err error) {
	width, height := int(header.Width), int(header.Height)
	chunkSize := int(header.ChunkSize)
	tiles = make([]int, width*height)

	for cy := 0; cy < int(header.ChunksY); cy++ {
		for cx := 0; cx < int(header.ChunksX); cx++ {
			loX, hiX := cx*chunkSize, min(width, (cx+1)*chunkSize)
			loY, hiY := cy*chunkSize, min(height, (cy+1)*chunkSize)
			count := (hiX - loX) * (hiY - loY)

			chunkTiles, err := reader.ChunkTiles(cx, cy, count)
			if err != nil {
				return nil, 0, fmt.Errorf("chunk (%d,%d): %w", cx, cy, err)
			}

			i := 0
			for y := loY; y < hiY; y++ {
				for x := loX; x < hiX; x++ {
					tile := chunkTiles[i]
					tiles[y*width+x] = tile
					if tile > maxTile {
						maxTile = tile
					}
					i++
				}
			}
		}
	}
	return tiles, maxTile, nil
}

func humanSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
