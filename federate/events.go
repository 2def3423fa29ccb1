// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import "github.com/helics/core/fedid"

// EventMode selects which records at a grant boundary count as ready
// (spec.md §4.4: "subject to the mode: inclusive (all values with
// time <= T), up_to (strictly <), or next_iteration (all at T with
// iteration <= current)").
type EventMode int

const (
	EventInclusive EventMode = iota
	EventUpTo
	EventNextIteration
)

// eventEpsilon nudges an EventUpTo cutoff below the grant so
// PopEvents' <= comparison behaves as the mode's strict "<".
const eventEpsilon = 1e-9

// computeEvents walks every registered input and returns the handles
// whose newest accepted record counts as a user-visible change at the
// given grant (spec.md §4.4's event vector). Must be called with the
// processing-loop guard held: it consumes the ready records.
func (s *State) computeEvents(grant fedid.Time, iteration fedid.Iteration, mode EventMode) []fedid.InterfaceHandle {
	cutoff := fedid.TimeIteration{Time: grant, Iteration: iteration}
	switch mode {
	case EventUpTo:
		cutoff.Time -= eventEpsilon
		cutoff.Iteration = ^fedid.Iteration(0)
	case EventNextIteration:
		// already time == grant, iteration <= current
	default: // EventInclusive
		cutoff.Iteration = ^fedid.Iteration(0)
	}

	var changed []fedid.InterfaceHandle
	for _, h := range s.registry.InputHandles() {
		in, ok := s.registry.Input(h)
		if !ok {
			continue
		}
		if events := in.PopEvents(cutoff); len(events) > 0 {
			changed = append(changed, h)
		}
	}
	return changed
}

// anyInputChanged reports whether any registered input has an event
// ready at the current iteration of treq, consuming those records in
// the process. This is the inputsChanged signal IterateIfNeeded
// reports to the coordinator (spec.md §4.3): iterate only when a
// dependency's value actually arrived/moved since the last check,
// the same PopEvents change-detection computeEvents applies to a
// final grant, applied once per iteration round instead of once per
// grant.
func (s *State) anyInputChanged(treq fedid.Time) bool {
	return len(s.computeEvents(treq, s.iteration, EventNextIteration)) > 0
}
