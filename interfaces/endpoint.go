// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import (
	"sort"

	"github.com/helics/core/fedid"
)

// Endpoint is a federate's message port (spec.md §3). Its deque is
// sorted by (time, original_source), ties broken deterministically by
// insertion order — Enqueue's binary search places a new message after
// every queued message with an equal key.
type Endpoint struct {
	Handle fedid.InterfaceHandle
	Key    string
	Type   string

	targetedOnly bool
	singleConnection bool
	required     bool
	sendOnly     bool
	receiveOnly  bool

	targets []fedid.GlobalHandle
	deque   []Message
}

// NewEndpoint constructs an Endpoint in its CREATED-state default configuration.
func NewEndpoint(handle fedid.InterfaceHandle, key, typ string) *Endpoint {
	return &Endpoint{Handle: handle, Key: key, Type: typ}
}

func (e *Endpoint) Kind() Kind { return KindEndpoint }

// Targets returns the endpoint's configured peers (only meaningful
// when targetedOnly is set).
func (e *Endpoint) Targets() []fedid.GlobalHandle {
	out := make([]fedid.GlobalHandle, len(e.targets))
	copy(out, e.targets)
	return out
}

// AddTarget is idempotent on re-add.
func (e *Endpoint) AddTarget(g fedid.GlobalHandle) {
	for _, t := range e.targets {
		if t == g {
			return
		}
	}
	e.targets = append(e.targets, g)
}

// Enqueue inserts m into the deque, maintaining sort order by
// (Time, OriginalSource) (spec.md §3 invariant: "deque is sorted by
// (time, original_source); ties broken deterministically").
func (e *Endpoint) Enqueue(m Message) {
	idx := sort.Search(len(e.deque), func(i int) bool {
		return less(m, e.deque[i])
	})
	e.deque = append(e.deque, Message{})
	copy(e.deque[idx+1:], e.deque[idx:])
	e.deque[idx] = m
}

func less(a, b Message) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.OriginalSource < b.OriginalSource
}

// Front returns the earliest-ordered message without removing it.
func (e *Endpoint) Front() (Message, bool) {
	if len(e.deque) == 0 {
		return Message{}, false
	}
	return e.deque[0], true
}

// PopUpTo removes and returns every message whose time is <= t
// (spec.md §3 invariant 4: user-visible deque head time is always >=
// the federate's granted time; PopUpTo is how a federate drains
// exactly what it's now allowed to see).
func (e *Endpoint) PopUpTo(t fedid.Time) []Message {
	n := 0
	for n < len(e.deque) && e.deque[n].Time <= t {
		n++
	}
	out := make([]Message, n)
	copy(out, e.deque[:n])
	e.deque = e.deque[n:]
	return out
}

// HasPendingMessage reports whether any message is queued.
func (e *Endpoint) HasPendingMessage() bool {
	return len(e.deque) > 0
}
