// Package bitset implements the fixed-width tile bitset used throughout the
// solver: the Superposition, the set of tile ids still considered possible
// for one cell.
package bitset

import "math/bits"

// words is the number of 32-bit words backing a Superposition, giving a
// fixed capacity of 128 tile ids — matching the original implementation's
// four-u32 layout.
const words = 4

// MaxTiles is the largest tile id (exclusive) a Superposition can represent.
const MaxTiles = words * 32

// Superposition is a fixed-capacity bitset over tile ids 0..MaxTiles. The
// zero value is the empty superposition (no tile possible).
type Superposition [words]uint32

// Empty returns the empty superposition (no tile possible — an unsatisfiable
// cell).
func Empty() Superposition {
	return Superposition{}
}

// Filled returns a superposition with bits 0..n set, i.e. every tile in
// 0..n is still possible.
func Filled(n int) Superposition {
	var s Superposition
	for i := 0; i < n; i++ {
		s[i/32] |= 1 << uint(i%32)
	}
	return s
}

// Single returns a superposition with only tile set.
func Single(tile int) Superposition {
	var s Superposition
	s.Add(tile)
	return s
}

// FromTiles returns a superposition containing exactly the given tile ids.
func FromTiles(tiles ...int) Superposition {
	var s Superposition
	for _, t := range tiles {
		s.Add(t)
	}
	return s
}

// Add sets tile as possible.
func (s *Superposition) Add(tile int) {
	s[tile/32] |= 1 << uint(tile%32)
}

// Remove clears tile as possible.
func (s *Superposition) Remove(tile int) {
	s[tile/32] &^= 1 << uint(tile%32)
}

// Contains reports whether tile is still possible.
func (s Superposition) Contains(tile int) bool {
	if tile < 0 || tile >= MaxTiles {
		return false
	}
	return s[tile/32]&(1<<uint(tile%32)) != 0
}

// Join returns the union (set algebra OR) of a and b.
func Join(a, b Superposition) Superposition {
	var r Superposition
	for i := 0; i < words; i++ {
		r[i] = a[i] | b[i]
	}
	return r
}

// Intersect returns the intersection (set algebra AND) of a and b.
func Intersect(a, b Superposition) Superposition {
	var r Superposition
	for i := 0; i < words; i++ {
		r[i] = a[i] & b[i]
	}
	return r
}

// Union mutates s in place to be the union of s and other.
func (s *Superposition) Union(other Superposition) {
	for i := 0; i < words; i++ {
		s[i] |= other[i]
	}
}

// Intersection mutates s in place to be the intersection of s and other.
func (s *Superposition) Intersection(other Superposition) {
	for i := 0; i < words; i++ {
		s[i] &= other[i]
	}
}

// CountBits returns the population count: the number of tiles still
// possible.
func (s Superposition) CountBits() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount32(w)
	}
	return n
}

// IsEmpty reports whether no tile is possible.
func (s Superposition) IsEmpty() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0 && s[3] == 0
}

// Collapse returns the sole possible tile and true if popcount is exactly 1,
// otherwise (0, false).
func (s Superposition) Collapse() (int, bool) {
	if s.CountBits() != 1 {
		return 0, false
	}
	for i, w := range s {
		if w != 0 {
			return i*32 + bits.TrailingZeros32(w), true
		}
	}
	return 0, false
}

// TileIter returns the set tile ids in ascending order.
func (s Superposition) TileIter() []int {
	out := make([]int, 0, s.CountBits())
	for i, w := range s {
		for w != 0 {
			bit := bits.TrailingZeros32(w)
			out = append(out, i*32+bit)
			w &^= 1 << uint(bit)
		}
	}
	return out
}

// Equal reports whether s and other contain exactly the same tiles.
func (s Superposition) Equal(other Superposition) bool {
	return s == other
}

// weightedRNG is the minimal randomness contract SelectRandom needs, matching
// internal/rng.Rng without importing it (avoids a dependency cycle — bitset
// sits below rng in the build graph only by convention, not necessity, but
// keeping the interface narrow documents the real requirement).
type weightedRNG interface {
	Uint64() uint64
}

// ErrInvalidWeights is returned by SelectRandom when every candidate tile has
// weight zero, so no weighted choice is possible.
var ErrInvalidWeights = invalidWeightsError{}

type invalidWeightsError struct{}

func (invalidWeightsError) Error() string { return "bitset: all candidate weights are zero" }

// SelectRandom collapses s to a single, weighted-randomly chosen bit.
//
// It builds the cumulative weight of every tile currently set in s (using
// weights[i] for each set bit), samples a point in [0, total), and keeps the
// first tile whose cumulative weight exceeds that point. s is then reduced
// to that single tile. Returns ErrInvalidWeights (leaving s unmodified) if
// every set tile has weight zero.
func (s *Superposition) SelectRandom(rng weightedRNG, weights []uint32) error {
	var total uint64
	for _, t := range s.TileIter() {
		if t < len(weights) {
			total += uint64(weights[t])
		}
	}
	if total == 0 {
		return ErrInvalidWeights
	}

	point := rng.Uint64() % total
	var chosen int
	var cum uint64
	for _, t := range s.TileIter() {
		if t >= len(weights) {
			continue
		}
		cum += uint64(weights[t])
		if point < cum {
			chosen = t
			break
		}
	}

	*s = Single(chosen)
	return nil
}

// String renders the bitset as a run of 1s and 0s over the first MaxTiles
// positions, matching the original implementation's debug format.
func (s Superposition) String() string {
	buf := make([]byte, MaxTiles)
	for i := 0; i < MaxTiles; i++ {
		if s.Contains(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
