// Package worldio reads and writes the binary export format for a solved
// world: a header, a directory of chunk locations, and a deduplicated pool
// of chunk tile data, laid out the way a PMTiles archive separates header,
// directory, and tile data.
package worldio

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size in bytes of the file header.
const HeaderSize = 64

const (
	magic         = "WFCWORLD"
	formatVersion = 1
)

// Header describes the geometry of the exported world and the byte offsets
// of the sections that follow it: [Header][Directory][ChunkData]. Section
// lengths aren't stored explicitly; DirLength is DataOffset-DirOffset and
// DataLength runs to end of file.
type Header struct {
	Width, Height    uint32
	ChunkSize        uint32
	Overlap          uint32
	ChunksX, ChunksY uint32
	NumChunks        uint32
	NumUniqueChunks  uint32
	DirOffset        uint64
	DataOffset       uint64
}

// Serialize writes the fixed-size header.
func (h *Header) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], magic)
	buf[8] = formatVersion

	binary.LittleEndian.PutUint32(buf[9:13], h.Width)
	binary.LittleEndian.PutUint32(buf[13:17], h.Height)
	binary.LittleEndian.PutUint32(buf[17:21], h.ChunkSize)
	binary.LittleEndian.PutUint32(buf[21:25], h.Overlap)
	binary.LittleEndian.PutUint32(buf[25:29], h.ChunksX)
	binary.LittleEndian.PutUint32(buf[29:33], h.ChunksY)
	binary.LittleEndian.PutUint32(buf[33:37], h.NumChunks)
	binary.LittleEndian.PutUint32(buf[37:41], h.NumUniqueChunks)
	binary.LittleEndian.PutUint64(buf[41:49], h.DirOffset)
	binary.LittleEndian.PutUint64(buf[49:57], h.DataOffset)
	return buf
}

// DeserializeHeader parses a HeaderSize-byte header.
func DeserializeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("worldio: header too short: %d bytes (need %d)", len(buf), HeaderSize)
	}
	if string(buf[0:8]) != magic {
		return Header{}, fmt.Errorf("worldio: invalid magic bytes %q", buf[0:8])
	}
	if buf[8] != formatVersion {
		return Header{}, fmt.Errorf("worldio: unsupported format version %d (expected %d)", buf[8], formatVersion)
	}

	h := Header{
		Width:           binary.LittleEndian.Uint32(buf[9:13]),
		Height:          binary.LittleEndian.Uint32(buf[13:17]),
		ChunkSize:       binary.LittleEndian.Uint32(buf[17:21]),
		Overlap:         binary.LittleEndian.Uint32(buf[21:25]),
		ChunksX:         binary.LittleEndian.Uint32(buf[25:29]),
		ChunksY:         binary.LittleEndian.Uint32(buf[29:33]),
		NumChunks:       binary.LittleEndian.Uint32(buf[33:37]),
		NumUniqueChunks: binary.LittleEndian.Uint32(buf[37:41]),
		DirOffset:       binary.LittleEndian.Uint64(buf[41:49]),
		DataOffset:      binary.LittleEndian.Uint64(buf[49:57]),
	}
	return h, nil
}
