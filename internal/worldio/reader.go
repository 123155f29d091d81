package worldio

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Reader provides read access to a world export file.
type Reader struct {
	file    *os.File
	header  Header
	byCoord map[[2]int32]Entry
}

// OpenReader opens a world export file for reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("worldio: opening %s: %w", path, err)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("worldio: reading header: %w", err)
	}
	header, err := DeserializeHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	dirLen := int64(header.DataOffset) - int64(header.DirOffset)
	if dirLen < 0 {
		f.Close()
		return nil, fmt.Errorf("worldio: corrupt header: directory length %d", dirLen)
	}
	dirBuf := make([]byte, dirLen)
	if _, err := f.ReadAt(dirBuf, int64(header.DirOffset)); err != nil {
		f.Close()
		return nil, fmt.Errorf("worldio: reading directory: %w", err)
	}
	entries, err := deserializeDirectory(dirBuf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("worldio: parsing directory: %w", err)
	}

	byCoord := make(map[[2]int32]Entry, len(entries))
	for _, e := range entries {
		byCoord[[2]int32{e.ChunkX, e.ChunkY}] = e
	}

	return &Reader{file: f, header: header, byCoord: byCoord}, nil
}

// Header returns the parsed world export header.
func (r *Reader) Header() Header {
	return r.header
}

// ChunkTiles returns the decoded, row-major tile ids for the chunk at
// (x, y). count is the number of tiles expected (the chunk's width times
// height), used to size the decode buffer.
func (r *Reader) ChunkTiles(x, y, count int) ([]int, error) {
	entry, ok := r.byCoord[[2]int32{int32(x), int32(y)}]
	if !ok {
		return nil, fmt.Errorf("worldio: no chunk at (%d,%d)", x, y)
	}

	compressed := make([]byte, entry.Length)
	if _, err := r.file.ReadAt(compressed, int64(r.header.DataOffset+entry.Offset)); err != nil {
		return nil, fmt.Errorf("worldio: reading chunk (%d,%d): %w", x, y, err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("worldio: chunk gzip reader: %w", err)
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("worldio: decompressing chunk (%d,%d): %w", x, y, err)
	}
	if len(raw) != count*4 {
		return nil, fmt.Errorf("worldio: chunk (%d,%d) has %d bytes, want %d for %d tiles", x, y, len(raw), count*4, count)
	}

	tiles := make([]int, count)
	for i := range tiles {
		tiles[i] = int(int32(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return tiles, nil
}

// NumChunks returns the number of chunk directory entries.
func (r *Reader) NumChunks() int {
	return len(r.byCoord)
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
