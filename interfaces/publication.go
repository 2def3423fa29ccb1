// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import "github.com/helics/core/fedid"

// Publication is a federate's declared output (spec.md §3).
type Publication struct {
	Handle fedid.InterfaceHandle
	Key    string
	Type   string
	Units  string

	connectionRequired bool
	singleConnection    bool
	connectionCount      int
	onlyTransmitOnChange bool
	delta                float64
	bufferData           bool

	subscribers []fedid.GlobalHandle
	lastBytes   []byte // for change detection
}

// NewPublication constructs a Publication in the CREATED-state default
// configuration: no connection requirement, change detection off.
func NewPublication(handle fedid.InterfaceHandle, key, typ, units string) *Publication {
	return &Publication{Handle: handle, Key: key, Type: typ, Units: units}
}

func (p *Publication) Kind() Kind { return KindPublication }

// Subscribers returns the current subscriber list (owned copy).
func (p *Publication) Subscribers() []fedid.GlobalHandle {
	out := make([]fedid.GlobalHandle, len(p.subscribers))
	copy(out, p.subscribers)
	return out
}

// AddSubscriber is idempotent: re-adding an existing subscriber is a no-op.
func (p *Publication) AddSubscriber(g fedid.GlobalHandle) {
	for _, s := range p.subscribers {
		if s == g {
			return
		}
	}
	p.subscribers = append(p.subscribers, g)
}

// ShouldTransmit applies HANDLE_ONLY_TRANSMIT_ON_CHANGE: true unless
// change detection is enabled and raw is byte-for-byte identical to
// the last published bytes. No tolerance is applied: delta is not
// consulted, so any difference in the encoded bytes counts as a change.
func (p *Publication) ShouldTransmit(raw []byte) bool {
	if !p.onlyTransmitOnChange {
		return true
	}
	if p.lastBytes == nil {
		return true
	}
	if len(raw) != len(p.lastBytes) {
		return true
	}
	for i := range raw {
		if raw[i] != p.lastBytes[i] {
			return true
		}
	}
	return false
}

// RecordTransmit stores raw as the last-published bytes, for the next
// ShouldTransmit comparison. BUFFER_DATA is recorded in bufferData,
// but nothing replays the stored bytes to later subscribers.
func (p *Publication) RecordTransmit(raw []byte) {
	p.lastBytes = append(p.lastBytes[:0], raw...)
}
