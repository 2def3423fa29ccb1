// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package federate implements the FederateState component of
// SPEC_FULL.md §4.4: the per-federate state machine, mailbox, and
// blocking/async user-facing API, composed from an interfaces.Registry
// and a timecoord.Coordinator.
package federate

// Phase is the closed federate lifecycle state machine (spec.md §4.4):
//
//	CREATED -> INITIALIZING -> EXECUTING -> {FINISHED|ERROR}
//
// No backward transition except an explicit reset.
type Phase int

const (
	Created Phase = iota
	Initializing
	Executing
	Finished
	Errored
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "CREATED"
	case Initializing:
		return "INITIALIZING"
	case Executing:
		return "EXECUTING"
	case Finished:
		return "FINISHED"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN_PHASE"
	}
}

// Terminal reports whether p is FINISHED or ERROR — no further
// transition is possible.
func (p Phase) Terminal() bool {
	return p == Finished || p == Errored
}

// validTransition is the closed transition table backing Phase
// changes; anything not listed here is an InvalidFunctionCall.
var validTransition = map[Phase]map[Phase]bool{
	Created:      {Initializing: true, Errored: true},
	Initializing: {Executing: true, Errored: true},
	Executing:    {Finished: true, Errored: true},
}

func (p Phase) canTransitionTo(next Phase) bool {
	return validTransition[p][next]
}
