// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

// IterationRequest selects how enterExecutingMode/requestTime treat a
// request at an unchanged simulated time (spec.md §8 S2: Fed A/B call
// enterExecutingMode(iterate_if_needed) and alternate ITERATING until
// their values converge).
type IterationRequest int

const (
	// NoIterations never iterates. A repeated request at the already
	// granted time is granted that same time again as NEXT_STEP; the
	// time coordinator neither rejects it nor moves the grant forward.
	NoIterations IterationRequest = iota
	// IterateIfNeeded iterates only when the caller reports its inputs
	// changed since the last grant.
	IterateIfNeeded
	// ForceIteration always iterates regardless of input change,
	// capped by MAX_ITERATIONS the same as IterateIfNeeded.
	ForceIteration
)

func (r IterationRequest) String() string {
	switch r {
	case NoIterations:
		return "NO_ITERATIONS"
	case IterateIfNeeded:
		return "ITERATE_IF_NEEDED"
	case ForceIteration:
		return "FORCE_ITERATION"
	default:
		return "UNKNOWN_ITERATION_REQUEST"
	}
}

// wantsIteration reports whether r asks the coordinator to consider
// iterating at all. It does not decide inputsChanged: requestTimeLocked
// passes true for ForceIteration and the observed input change
// otherwise.
func (r IterationRequest) wantsIteration() bool {
	return r == IterateIfNeeded || r == ForceIteration
}
