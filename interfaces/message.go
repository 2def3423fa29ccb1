// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import "github.com/helics/core/fedid"

// MessageFlag is a bitset carried on every Message (spec.md §3).
type MessageFlag uint32

const (
	MessageFlagNone MessageFlag = 0
	// MessageFlagCloned marks a message fabricated by a cloning filter
	// rather than sent directly by user code.
	MessageFlagCloned MessageFlag = 1 << iota
	// MessageFlagGenerated marks a message fabricated by a generating filter.
	MessageFlagGenerated
)

// Message is the discrete unit carried between Endpoints (spec.md §3).
type Message struct {
	Time    fedid.Time
	Flags   MessageFlag
	ID      uint64
	Payload []byte

	Source      string
	Destination string

	// OriginalSource/OriginalDestination are preserved through filter
	// rewrites so the eventual recipient can see who actually sent it.
	OriginalSource      string
	OriginalDestination string

	Counter fedid.Iteration
}
