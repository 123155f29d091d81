package solver

import "time"

// EntropyMode selects how the next node to collapse is chosen.
type EntropyMode int

const (
	// TileCount picks the node with the smallest popcount greater than 1,
	// breaking ties uniformly at random via reservoir sampling.
	TileCount EntropyMode = iota
	// Shannon picks the node minimising weighted Shannon entropy over its
	// candidate tiles, same tie-break as TileCount.
	Shannon
	// Scanline picks the first (lowest-index) node with popcount > 1; no
	// randomness involved.
	Scanline
)

func (m EntropyMode) String() string {
	switch m {
	case TileCount:
		return "TileCount"
	case Shannon:
		return "Shannon"
	case Scanline:
		return "Scanline"
	default:
		return "Unknown"
	}
}

// HeuristicKind identifies which backtracking heuristic is active.
type HeuristicKind int

const (
	HeuristicRestart HeuristicKind = iota
	HeuristicStandard
	HeuristicFixed
	HeuristicDegree
	HeuristicProportional
)

// Heuristic configures how backtracking unwinds the collapse history after
// an exhausted propagation. Distance, Degree, and Proportion are only
// meaningful for the matching Kind.
type Heuristic struct {
	Kind       HeuristicKind
	Distance   int     // HeuristicFixed: number of frames to pop.
	Degree     int     // HeuristicDegree: minimum out-degree to pop back to.
	Proportion float64 // HeuristicProportional: fraction of history depth to pop.
}

// RestartHeuristic re-seeds and restarts the whole graph on failure.
func RestartHeuristic() Heuristic { return Heuristic{Kind: HeuristicRestart} }

// StandardHeuristic pops a single history frame and forbids the tried tile.
func StandardHeuristic() Heuristic { return Heuristic{Kind: HeuristicStandard} }

// FixedHeuristic pops exactly distance frames.
func FixedHeuristic(distance int) Heuristic {
	return Heuristic{Kind: HeuristicFixed, Distance: distance}
}

// DegreeHeuristic pops frames until the popped node's recorded out-degree is
// at least degree.
func DegreeHeuristic(degree int) Heuristic {
	return Heuristic{Kind: HeuristicDegree, Degree: degree}
}

// ProportionalHeuristic pops ceil(proportion * history depth) frames.
func ProportionalHeuristic(proportion float64) Heuristic {
	return Heuristic{Kind: HeuristicProportional, Proportion: proportion}
}

// Backtracking is either disabled (first contradiction fails the solve) or
// enabled with a restart budget and a heuristic for how much history to
// unwind on each exhausted propagation.
type Backtracking struct {
	Enabled      bool
	RestartsLeft int
	Heuristic    Heuristic
}

// DisabledBacktracking returns Contradiction immediately on the first
// exhausted propagation.
func DisabledBacktracking() Backtracking { return Backtracking{} }

// EnabledBacktracking configures backtracking with the given restart budget
// and heuristic.
func EnabledBacktracking(restartsLeft int, heuristic Heuristic) Backtracking {
	return Backtracking{Enabled: true, RestartsLeft: restartsLeft, Heuristic: heuristic}
}

// ProgressSnapshot is emitted on the progress channel, at most once per
// settings.ProgressInterval, while a solve runs.
type ProgressSnapshot struct {
	NodesCollapsed int
	NodesTotal     int
	Attempt        int
}

// Settings configures one solve: entropy rule, backtracking policy, optional
// deadline, and optional progress reporting.
type Settings struct {
	Entropy      EntropyMode
	Backtracking Backtracking

	// Deadline, if non-zero, aborts the solve with Timeout once wall-clock
	// time exceeds it. Checked once per collapse step.
	Deadline time.Time

	// ProgressInterval, if non-zero, is the minimum spacing between
	// snapshots sent on Progress. Ignored if Progress is nil.
	ProgressInterval time.Duration
	Progress         chan<- ProgressSnapshot
}

// HasDeadline reports whether a deadline was configured.
func (s Settings) HasDeadline() bool { return !s.Deadline.IsZero() }
