// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fedid

import "fmt"

// Time is simulation time, seconds since federation epoch. It is
// shared by every component that orders events — InterfaceRegistry's
// source queues, TimeCoordinator's grant algorithm, FederateState's
// endpoint deque — so it lives alongside the identifier algebra
// rather than inside any one of them.
type Time float64

// MaxTime is the "never" sentinel used by dependency info that has
// not yet reported a next-event time.
const MaxTime Time = 1e18

// Iteration is the per-request iteration counter carried alongside a
// Time in every ordering key (spec.md invariant 3: "(time, iteration)
// pairs are unique per source").
type Iteration uint32

func (t Time) String() string {
	return fmt.Sprintf("%g", float64(t))
}

// TimeIteration is the ordering key used by Input source queues and
// the Endpoint deque.
type TimeIteration struct {
	Time      Time
	Iteration Iteration
}

// Less orders first by Time, then by Iteration — the strict
// non-decreasing order spec.md invariant 3 requires of source queues.
func (a TimeIteration) Less(b TimeIteration) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.Iteration < b.Iteration
}
