// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package corehub

import (
	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/federate"
)

// RegisterFederate reserves name, wires state's outbound sink to this
// hub's router, and returns the local FederateId the caller should
// use for every subsequent call (spec.md §4.5).
func (h *Hub) RegisterFederate(name string, info FederateInfo, state *federate.State) (fedid.FederateId, error) {
	local, err := h.registerFederate(name, info, state)
	if err != nil {
		h.mu.Lock()
		delete(h.federates, local)
		h.mu.Unlock()
		return fedid.InvalidFederateId, err
	}

	state.SetOutboundSink(func(msg action.Message) {
		h.dispatchOutbound(local, msg)
	})
	return local, nil
}

// dispatchOutbound is the sink every owned FederateState sends through:
// a CMD_REG_FED is acknowledged straight back to the sender, since
// RegisterFederate has already assigned its global id; messages
// addressed to another local federate are routed directly; everything
// else goes to the parent transport.
func (h *Hub) dispatchOutbound(local fedid.FederateId, msg action.Message) {
	if msg.SourceId == 0 {
		msg.SourceId = h.federateGlobal(local)
	}
	if msg.Action == action.CmdRegFed {
		if self, ok := h.Federate(local); ok {
			self.Mailbox().Push(action.Message{Action: action.CmdFedAck, SourceId: msg.SourceId, DestId: msg.SourceId})
		}
		return
	}

	h.mu.RLock()
	localDest, ok := h.localByGlobal[msg.DestId]
	dest := h.federates[localDest]
	h.mu.RUnlock()
	if ok {
		dest.Mailbox().Push(msg)
		return
	}

	if h.parent == nil {
		h.log.Warn("corehub: outbound message has no route and no parent", "action", msg.Action, "dest", msg.DestId)
		return
	}
	if err := h.parent.Send(0, action.Pack(msg)); err != nil {
		h.log.Warn("corehub: send to parent failed", "error", err)
	}
}

// Route wires the local destination of a source/destination target
// reply directly into the addressed federate's mailbox — used when a
// test or an in-process broker resolves matching locally instead of
// round-tripping through a parent transport.
func (h *Hub) Route(msg action.Message) {
	h.route(msg)
}

// AddSourceTarget forwards a source-matching request upstream.
func (h *Hub) AddSourceTarget(local fedid.FederateId, req action.Message) error {
	return h.addSourceTarget(local, req)
}

// AddDestinationTarget forwards a destination-matching request upstream.
func (h *Hub) AddDestinationTarget(local fedid.FederateId, req action.Message) error {
	return h.addDestinationTarget(local, req)
}

// Disconnect drains every owned federate and tears down the parent
// transport.
func (h *Hub) Disconnect() error {
	return h.disconnect()
}

// Federate looks up a locally owned FederateState by its local id.
func (h *Hub) Federate(local fedid.FederateId) (*federate.State, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.federates[local]
	return f, ok
}

// GlobalOf reports the GlobalFederateId assigned to a locally owned
// federate, or InvalidGlobalFederateId if none has been assigned yet.
func (h *Hub) GlobalOf(local fedid.FederateId) fedid.GlobalFederateId {
	return h.federateGlobal(local)
}
