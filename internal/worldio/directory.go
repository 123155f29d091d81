package worldio

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Entry locates one chunk's tile data within the data section.
type Entry struct {
	ChunkX, ChunkY int32
	Offset         uint64
	Length         uint32
}

// chunkKey orders entries the same way a row-major chunk scan would, so the
// directory compresses well: neighboring chunks tend to land near each
// other and their deltas stay small.
func chunkKey(x, y int32) int64 {
	return int64(y)<<32 | int64(uint32(x))
}

// serializeDirectory gzip-compresses a sorted entry list, delta-encoding
// chunk coordinates and offsets the way a PMTiles directory delta-encodes
// tile IDs.
func serializeDirectory(entries []Entry) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return chunkKey(sorted[i].ChunkX, sorted[i].ChunkY) < chunkKey(sorted[j].ChunkX, sorted[j].ChunkY)
	})

	var raw bytes.Buffer
	buf := make([]byte, binary.MaxVarintLen64)

	n := binary.PutUvarint(buf, uint64(len(sorted)))
	raw.Write(buf[:n])

	var lastKey int64
	for _, e := range sorted {
		key := chunkKey(e.ChunkX, e.ChunkY)
		n = binary.PutVarint(buf, key-lastKey)
		raw.Write(buf[:n])
		lastKey = key
	}
	for _, e := range sorted {
		n = binary.PutUvarint(buf, uint64(e.Length))
		raw.Write(buf[:n])
	}
	var lastOffset uint64
	for i, e := range sorted {
		var val uint64
		if i > 0 && e.Offset == lastOffset+uint64(sorted[i-1].Length) {
			val = 0 // contiguous with the previous entry
		} else {
			val = e.Offset + 1
		}
		n = binary.PutUvarint(buf, val)
		raw.Write(buf[:n])
		lastOffset = e.Offset
	}

	var compressed bytes.Buffer
	gw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}

// deserializeDirectory reverses serializeDirectory.
func deserializeDirectory(data []byte) ([]Entry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("worldio: directory gzip reader: %w", err)
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("worldio: decompressing directory: %w", err)
	}
	r := bytes.NewReader(raw)

	numEntries, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("worldio: reading entry count: %w", err)
	}
	entries := make([]Entry, numEntries)

	var lastKey int64
	for i := range entries {
		delta, err := binary.ReadVarint(r)
		if err != nil {
			return nil, fmt.Errorf("worldio: reading chunk key delta %d: %w", i, err)
		}
		lastKey += delta
		entries[i].ChunkX = int32(uint32(lastKey))
		entries[i].ChunkY = int32(lastKey >> 32)
	}
	for i := range entries {
		length, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("worldio: reading length %d: %w", i, err)
		}
		entries[i].Length = uint32(length)
	}
	var lastOffset uint64
	for i := range entries {
		val, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("worldio: reading offset %d: %w", i, err)
		}
		if val == 0 && i > 0 {
			entries[i].Offset = lastOffset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = val - 1
		}
		lastOffset = entries[i].Offset
	}

	return entries, nil
}
