package world

import "sort"

// xyToHilbert converts (x, y) to a Hilbert curve index for an n x n grid. n
// must be a power of two.
func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	s := n / 2
	for s > 0 {
		var rx, ry uint64
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = s*2 - 1 - x
				y = s*2 - 1 - y
			}
			x, y = y, x
		}
		s /= 2
	}
	return d
}

// sortChunksByHilbert orders chunk coordinates along a Hilbert curve so that
// chunks close on the curve are close in the chunk grid, giving both the
// initial scan and the NonDeterministic frontier expansion a reproducible,
// spatially-local order instead of map-iteration order.
func sortChunksByHilbert(chunks []ChunkCoord) {
	if len(chunks) <= 1 {
		return
	}
	maxCoord := 0
	for _, c := range chunks {
		if c.X > maxCoord {
			maxCoord = c.X
		}
		if c.Y > maxCoord {
			maxCoord = c.Y
		}
	}
	n := uint64(1)
	for n <= uint64(maxCoord) {
		n *= 2
	}

	indices := make([]uint64, len(chunks))
	for i, c := range chunks {
		indices[i] = xyToHilbert(uint64(c.X), uint64(c.Y), n)
	}
	sort.Sort(hilbertSorter{chunks: chunks, indices: indices})
}

type hilbertSorter struct {
	chunks  []ChunkCoord
	indices []uint64
}

func (s hilbertSorter) Len() int           { return len(s.chunks) }
func (s hilbertSorter) Less(i, j int) bool { return s.indices[i] < s.indices[j] }
func (s hilbertSorter) Swap(i, j int) {
	s.chunks[i], s.chunks[j] = s.chunks[j], s.chunks[i]
	s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
}
