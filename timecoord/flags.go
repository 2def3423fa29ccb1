// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import "github.com/helics/core/utils/set"

// Flag is the closed set of behavioral toggles on a federate's time
// coordination (spec.md §4.3).
type Flag int

const (
	Uninterruptible Flag = iota
	OnlyTransmitOnChange
	OnlyUpdateOnChange
	Realtime
	SourceOnly
	Observer
	IgnoreTimeMismatchWarnings
	WaitForCurrentTimeUpdate
)

func (f Flag) String() string {
	switch f {
	case Uninterruptible:
		return "UNINTERRUPTIBLE"
	case OnlyTransmitOnChange:
		return "ONLY_TRANSMIT_ON_CHANGE"
	case OnlyUpdateOnChange:
		return "ONLY_UPDATE_ON_CHANGE"
	case Realtime:
		return "REALTIME"
	case SourceOnly:
		return "SOURCE_ONLY"
	case Observer:
		return "OBSERVER"
	case IgnoreTimeMismatchWarnings:
		return "IGNORE_TIME_MISMATCH_WARNINGS"
	case WaitForCurrentTimeUpdate:
		return "WAIT_FOR_CURRENT_TIME_UPDATE"
	default:
		return "UNKNOWN_FLAG"
	}
}

// FlagSet is the set of flags currently set on a federate's time coordination.
type FlagSet = set.Set[Flag]

// NewFlagSet builds an empty FlagSet.
func NewFlagSet() FlagSet {
	return set.NewSet[Flag](8)
}
