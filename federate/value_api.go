// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
	"github.com/helics/core/interfaces"
)

// Publish sends raw bytes to every subscriber of the named publication
// at the federate's current granted time, honoring
// HANDLE_ONLY_TRANSMIT_ON_CHANGE the way original_source's
// FederateState::publish does (original_source/src/helics/core
// CommonCore::publish): skip the send entirely when ShouldTransmit
// says the value hasn't changed enough to matter.
func (s *State) Publish(handle fedid.InterfaceHandle, raw []byte) error {
	pub, ok := s.registry.Publication(handle)
	if !ok {
		return herrors.InvalidParameter("federate %s: publish to unknown handle %s", s.self, handle)
	}
	if !pub.ShouldTransmit(raw) {
		return nil
	}
	pub.RecordTransmit(raw)

	granted := s.GrantedTime()
	for _, dest := range pub.Subscribers() {
		s.emit(action.Message{
			Action:       action.CmdPub,
			SourceId:     s.self,
			SourceHandle: handle,
			DestId:       dest.Federate,
			DestHandle:   dest.Interface,
			Time:         granted,
			Counter:      s.Iteration(),
			Payload:      raw,
		})
	}
	return nil
}

// SendMessage enqueues an endpoint message addressed to dest, the
// message-passing counterpart of Publish (spec.md §3's endpoint
// operations). Source filters registered against handle run first
// (spec.md §3's Filter entity: "sits on an endpoint's source or
// destination path"); a conditional-drop filter may reduce this to a
// no-op, a cloning or generating filter may turn it into several
// sends.
func (s *State) SendMessage(handle fedid.InterfaceHandle, dest fedid.GlobalHandle, raw []byte) error {
	src := fedid.GlobalHandle{Federate: s.self, Interface: handle}
	if _, ok := s.registry.Endpoint(handle); !ok {
		return herrors.InvalidParameter("federate %s: send from unknown endpoint handle %s", s.self, handle)
	}

	out := []interfaces.Message{{
		Time:                s.GrantedTime(),
		Counter:             s.Iteration(),
		Payload:             raw,
		Source:              src.String(),
		Destination:         dest.String(),
		OriginalSource:      src.String(),
		OriginalDestination: dest.String(),
	}}
	for _, f := range s.registry.FiltersFor(handle, interfaces.FilterSource) {
		var next []interfaces.Message
		for _, m := range out {
			next = append(next, f.Apply(m)...)
		}
		out = next
	}

	for _, m := range out {
		s.emit(action.Message{
			Action:       action.CmdSendMessage,
			SourceId:     s.self,
			SourceHandle: handle,
			DestId:       dest.Federate,
			DestHandle:   dest.Interface,
			Time:         m.Time,
			Counter:      m.Counter,
			Payload:      m.Payload,
			Aux:          []string{m.Source, m.Destination, m.OriginalSource, m.OriginalDestination},
		})
	}
	return nil
}
