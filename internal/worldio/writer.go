package worldio

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"os"
)

// Writer assembles a world export using the same two-pass approach as a
// PMTiles writer: chunk payloads are appended to a temp file as they
// arrive, then Finalize sorts the directory and writes the final file.
//
// Identical chunk content is deduplicated by its FNV-64a hash, so a world
// with large uniform regions (e.g. an all-water chunk repeated many times)
// stores that payload once.
type Writer struct {
	outputPath string
	width      uint32
	height     uint32
	chunkSize  uint32
	overlap    uint32
	chunksX    uint32
	chunksY    uint32

	tmpFile   *os.File
	tmpOffset uint64
	entries   []Entry
	dedup     map[uint64]Entry // content hash -> first occurrence
	dedupHits int
}

// NewWriter creates a world export writer. width/height/chunkSize/overlap
// describe the world geometry and are recorded in the header for a reader
// to reconstruct the full grid from chunk payloads.
func NewWriter(outputPath string, width, height, chunkSize, overlap, chunksX, chunksY int) (*Writer, error) {
	tmp, err := os.CreateTemp("", "worldio-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("worldio: creating temp file: %w", err)
	}
	return &Writer{
		outputPath: outputPath,
		width:      uint32(width),
		height:     uint32(height),
		chunkSize:  uint32(chunkSize),
		overlap:    uint32(overlap),
		chunksX:    uint32(chunksX),
		chunksY:    uint32(chunksY),
		tmpFile:    tmp,
		dedup:      make(map[uint64]Entry),
	}, nil
}

// encodeChunk gzip-compresses a chunk's tiles as little-endian int32s.
func encodeChunk(tiles []int) ([]byte, error) {
	raw := make([]byte, len(tiles)*4)
	for i, t := range tiles {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(int32(t)))
	}
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(raw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func chunkHash(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// WriteChunk records one chunk's resolved tiles, in row-major order within
// the chunk's own width x height rectangle.
func (w *Writer) WriteChunk(x, y int, tiles []int) error {
	encoded, err := encodeChunk(tiles)
	if err != nil {
		return fmt.Errorf("worldio: encoding chunk (%d,%d): %w", x, y, err)
	}
	hash := chunkHash(encoded)

	if existing, ok := w.dedup[hash]; ok && existing.Length == uint32(len(encoded)) {
		w.entries = append(w.entries, Entry{
			ChunkX: int32(x), ChunkY: int32(y),
			Offset: existing.Offset, Length: existing.Length,
		})
		w.dedupHits++
		return nil
	}

	offset := w.tmpOffset
	n, err := w.tmpFile.Write(encoded)
	if err != nil {
		return fmt.Errorf("worldio: writing chunk data: %w", err)
	}
	w.tmpOffset += uint64(n)

	entry := Entry{ChunkX: int32(x), ChunkY: int32(y), Offset: offset, Length: uint32(n)}
	w.dedup[hash] = entry
	w.entries = append(w.entries, entry)
	return nil
}

// Finalize writes the header, directory, and chunk data to outputPath.
func (w *Writer) Finalize() error {
	dir, err := serializeDirectory(w.entries)
	if err != nil {
		return fmt.Errorf("worldio: building directory: %w", err)
	}

	header := Header{
		Width: w.width, Height: w.height,
		ChunkSize: w.chunkSize, Overlap: w.overlap,
		ChunksX: w.chunksX, ChunksY: w.chunksY,
		NumChunks:       uint32(len(w.entries)),
		NumUniqueChunks: uint32(len(w.entries) - w.dedupHits),
		DirOffset:       uint64(HeaderSize),
		DataOffset:      uint64(HeaderSize) + uint64(len(dir)),
	}

	out, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("worldio: creating output file: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(header.Serialize()); err != nil {
		return fmt.Errorf("worldio: writing header: %w", err)
	}
	if _, err := out.Write(dir); err != nil {
		return fmt.Errorf("worldio: writing directory: %w", err)
	}
	if _, err := w.tmpFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("worldio: seeking temp file: %w", err)
	}
	if _, err := io.Copy(out, w.tmpFile); err != nil {
		return fmt.Errorf("worldio: copying chunk data: %w", err)
	}

	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(tmpPath)
	return nil
}

// Abort discards the temp file without writing an output file.
func (w *Writer) Abort() {
	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(tmpPath)
}
