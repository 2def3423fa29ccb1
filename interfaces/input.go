// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import (
	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
	"github.com/helics/core/values"
)

// sourceRecord is one entry of an Input's per-source queue: a decoded
// value's wire bytes stamped with the ordering key it arrived at
// (spec.md §3 invariant 3).
type sourceRecord struct {
	key   fedid.TimeIteration
	bytes []byte
}

// sourceState tracks one matched source of an Input: its declared
// type/units (for compatibility re-checks), its ordered record queue,
// the most recent value delivered to the user, and when it stopped
// producing (deactivation time, fedid.MaxTime while still active).
type sourceState struct {
	source       fedid.GlobalHandle
	name         string
	typ          string
	units        string
	queue        []sourceRecord
	lastDelivered []byte
	deactivatedAt fedid.Time
}

// Input is a federate's declared subscription (spec.md §3).
type Input struct {
	Handle fedid.InterfaceHandle
	Key    string
	Type   string
	Units  string

	connectionRequired bool
	onlyUpdateOnChange bool
	strictTypeMatch    bool
	delta              float64
	minTimeGap         fedid.Time
	ignoreUnitMismatch bool

	priority []fedid.GlobalHandle // INPUT_PRIORITY_LOCATION, append order
	sources  []*sourceState
}

// NewInput constructs an Input in its CREATED-state default configuration.
func NewInput(handle fedid.InterfaceHandle, key, typ, units string) *Input {
	return &Input{Handle: handle, Key: key, Type: typ, Units: units}
}

func (i *Input) Kind() Kind { return KindInput }

// sourceByHandle finds an already-matched source, or nil.
func (i *Input) sourceByHandle(g fedid.GlobalHandle) *sourceState {
	for _, s := range i.sources {
		if s.source == g {
			return s
		}
	}
	return nil
}

// AddSource matches a publication to this input, idempotent on re-add
// (spec.md §4.2: "idempotent on re-add; type-check under the input's
// strict flag").
func (i *Input) AddSource(g fedid.GlobalHandle, name, typ, units string) error {
	if s := i.sourceByHandle(g); s != nil {
		return nil
	}
	if !compatible(i.Type, typ, i.strictTypeMatch) {
		return herrors.ConnectionFailure("input %q: source %q type %q incompatible with declared type %q", i.Key, name, typ, i.Type)
	}
	if !i.ignoreUnitMismatch && !unitsCompatible(i.Units, units) {
		return herrors.ConnectionFailure("input %q: source %q units %q incompatible with declared units %q", i.Key, name, units, i.Units)
	}
	i.sources = append(i.sources, &sourceState{source: g, name: name, typ: typ, units: units, deactivatedAt: fedid.MaxTime})
	return nil
}

// Sources returns the set of matched source GlobalHandles.
func (i *Input) Sources() []fedid.GlobalHandle {
	out := make([]fedid.GlobalHandle, len(i.sources))
	for idx, s := range i.sources {
		out[idx] = s.source
	}
	return out
}

// Deliver appends a new record to the named source's queue. Returns
// an error if it would violate the strictly-increasing (time,
// iteration) invariant.
func (i *Input) Deliver(g fedid.GlobalHandle, key fedid.TimeIteration, raw []byte) error {
	s := i.sourceByHandle(g)
	if s == nil {
		return herrors.InvalidParameter("input %q: publish from unmatched source %s", i.Key, g)
	}
	if n := len(s.queue); n > 0 && !s.queue[n-1].key.Less(key) {
		return herrors.SystemFailure("input %q: out-of-order delivery from %s: %v not after %v", i.Key, g, key, s.queue[n-1].key)
	}
	s.queue = append(s.queue, sourceRecord{key: key, bytes: raw})
	return nil
}

// Deactivate marks a source's last event time, after which it stops
// contributing new records (its publisher has disconnected).
func (i *Input) Deactivate(g fedid.GlobalHandle, at fedid.Time) {
	if s := i.sourceByHandle(g); s != nil {
		s.deactivatedAt = at
	}
}

// PopReady removes and returns every record across all sources whose
// key is <= upTo, honoring the priority list: when more than one
// source has a ready record at the same key, the caller receives them
// in priority order first, then registration order.
func (i *Input) PopReady(upTo fedid.TimeIteration) []sourceRecord {
	ordered := i.orderedSources()
	var out []sourceRecord
	for _, s := range ordered {
		j := 0
		for j < len(s.queue) && !upTo.Less(s.queue[j].key) {
			out = append(out, s.queue[j])
			s.lastDelivered = s.queue[j].bytes
			j++
		}
		s.queue = s.queue[j:]
	}
	return out
}

// PopEvents is PopReady filtered by the input's change-detection
// policy: when onlyUpdateOnChange is off every ready record counts as
// an event; when it's on, a record counts only if values.Changed
// against the source's last-delivered value (spec.md §8 S1: Fed B's
// requestTime(5) observes events at t=0 and t=2 only).
func (i *Input) PopEvents(upTo fedid.TimeIteration) []sourceRecord {
	ordered := i.orderedSources()
	var out []sourceRecord
	for _, s := range ordered {
		j := 0
		for j < len(s.queue) && !upTo.Less(s.queue[j].key) {
			rec := s.queue[j]
			if i.isEvent(s, rec.bytes) {
				out = append(out, rec)
			}
			s.lastDelivered = rec.bytes
			j++
		}
		s.queue = s.queue[j:]
	}
	return out
}

func (i *Input) isEvent(s *sourceState, raw []byte) bool {
	if !i.onlyUpdateOnChange || s.lastDelivered == nil {
		return true
	}
	prev, err := values.Decode(s.lastDelivered)
	if err != nil {
		return true
	}
	cur, err := values.Decode(raw)
	if err != nil {
		return true
	}
	return values.Changed(prev, cur, i.delta)
}

// orderedSources returns sources in priority-list order, with any
// source not named in the priority list appended in registration order.
func (i *Input) orderedSources() []*sourceState {
	if len(i.priority) == 0 {
		return i.sources
	}
	seen := make(map[fedid.GlobalHandle]bool, len(i.sources))
	out := make([]*sourceState, 0, len(i.sources))
	for _, g := range i.priority {
		if s := i.sourceByHandle(g); s != nil && !seen[g] {
			out = append(out, s)
			seen[g] = true
		}
	}
	for _, s := range i.sources {
		if !seen[s.source] {
			out = append(out, s)
		}
	}
	return out
}

// SetPriority appends g to the priority list (INPUT_PRIORITY_LOCATION).
func (i *Input) SetPriority(g fedid.GlobalHandle) {
	for _, p := range i.priority {
		if p == g {
			return
		}
	}
	i.priority = append(i.priority, g)
}

// ClearPriority empties the priority list (CLEAR_PRIORITY_LIST).
func (i *Input) ClearPriority() {
	i.priority = nil
}

// LastValue returns the most recently delivered bytes for source g.
func (i *Input) LastValue(g fedid.GlobalHandle) ([]byte, bool) {
	s := i.sourceByHandle(g)
	if s == nil || s.lastDelivered == nil {
		return nil, false
	}
	return s.lastDelivered, true
}

// QueueDepth is the total number of undelivered records across all sources.
func (i *Input) QueueDepth() int {
	n := 0
	for _, s := range i.sources {
		n += len(s.queue)
	}
	return n
}
