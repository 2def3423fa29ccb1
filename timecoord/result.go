// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

// GrantResult is the outcome handed back from a time request (spec.md §4.3/4.4).
type GrantResult int

const (
	NextStep GrantResult = iota
	Iterating
	Halted
	Errored
)

func (r GrantResult) String() string {
	switch r {
	case NextStep:
		return "NEXT_STEP"
	case Iterating:
		return "ITERATING"
	case Halted:
		return "HALTED"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN_RESULT"
	}
}

// MessageResult is the outcome of processing one inbound TimeMessage
// (spec.md §4.3: "processTimeMessage(msg) returns one of {PROCESSED,
// NO_EFFECT, DELAY_PROCESSING}").
type MessageResult int

const (
	Processed MessageResult = iota
	NoEffect
	DelayProcessing
)

func (r MessageResult) String() string {
	switch r {
	case Processed:
		return "PROCESSED"
	case NoEffect:
		return "NO_EFFECT"
	case DelayProcessing:
		return "DELAY_PROCESSING"
	default:
		return "UNKNOWN_MESSAGE_RESULT"
	}
}
