// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package corehub

import (
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/interfaces"
)

// answerQuery handles a CMD_QUERY arriving over the parent transport:
// Aux[0] is the target, Aux[1] the key, and the reply is sent back as
// CMD_QUERY_REPLY addressed to the requester (spec.md §4.5).
func (h *Hub) answerQuery(msg action.Message) {
	if h.parent == nil || len(msg.Aux) < 2 {
		return
	}
	reply := action.Message{
		Action:   action.CmdQueryReply,
		SourceId: msg.DestId,
		DestId:   msg.SourceId,
		Payload:  []byte(h.Query(msg.Aux[0], msg.Aux[1])),
	}
	if err := h.parent.Send(0, action.Pack(reply)); err != nil {
		h.log.Warn("corehub: failed to send query reply", "error", err)
	}
}

// invalidQueryResult is returned verbatim for any query that resolves
// to nothing (spec.md §4.5: "else return #invalid").
const invalidQueryResult = "#invalid"

// Query answers a query(target, key) the way CoordinatorCore routes
// it: federate-targeted keys are read off the named FederateState's
// registry/coordinator, core/broker/global keys are read off the hub
// itself, and anything unrecognized falls through to the
// user-registered callback before giving up with "#invalid"
// (spec.md §4.5).
//
// The reply is a protobuf structpb.Value serialized with
// google.golang.org/protobuf, unmarshaled again, and rendered with the
// Value's String method (protobuf text format) — this
// gives the query envelope a real schema (a repeated string list, a
// scalar, or #invalid) instead of ad hoc string formatting, the way
// original_source's query envelopes carry typed results rather than
// bare strings.
func (h *Hub) Query(target, key string) string {
	if v, ok := h.queryGlobal(target, key); ok {
		return mustEncode(v)
	}
	if v, ok := h.queryFederate(target, key); ok {
		return mustEncode(v)
	}
	if h.queryCallback != nil {
		if s, ok := h.queryCallback(target, key); ok {
			return s
		}
	}
	return invalidQueryResult
}

func (h *Hub) queryGlobal(target, key string) (any, bool) {
	switch target {
	case "", "core", "broker", "global":
	default:
		return nil, false
	}

	switch {
	case key == "list":
		h.mu.RLock()
		defer h.mu.RUnlock()
		names := make([]any, 0, h.globalRegistry.Len())
		h.globalRegistry.Iterate(func(name string, _ fedid.GlobalFederateId) bool {
			names = append(names, name)
			return true
		})
		return names, true
	case key == "exists":
		return target != "" && h.federateExists(target), true
	case key == "global":
		h.mu.RLock()
		defer h.mu.RUnlock()
		out := make(map[string]any, h.globalRegistry.Len())
		h.globalRegistry.Iterate(func(name string, g fedid.GlobalFederateId) bool {
			out[name] = float64(g)
			return true
		})
		return out, true
	case strings.HasPrefix(key, "globals/"):
		name := strings.TrimPrefix(key, "globals/")
		h.mu.RLock()
		g, ok := h.globalRegistry.Get(name)
		h.mu.RUnlock()
		if !ok {
			return nil, false
		}
		return float64(g), true
	}
	return nil, false
}

func (h *Hub) federateExists(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.localOf[name]
	return ok
}

func (h *Hub) queryFederate(target, key string) (any, bool) {
	h.mu.RLock()
	local, ok := h.localOf[target]
	fed := h.federates[local]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}

	reg := fed.Registry()
	coord := fed.Coordinator()

	switch key {
	case "publications":
		return toAny(reg.Names(interfaces.KindPublication)), true
	case "inputs":
		return toAny(reg.Names(interfaces.KindInput)), true
	case "endpoints":
		return toAny(reg.Names(interfaces.KindEndpoint)), true
	case "dependencies":
		return toAny(globalsToStrings(coord.Dependencies())), true
	case "dependents":
		return toAny(globalsToStrings(coord.Dependents())), true
	case "current_time":
		return float64(fed.GrantedTime()), true
	case "global_time":
		return float64(fed.GrantedTime()), true
	case "exists":
		return true, true
	}
	return nil, false
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func globalsToStrings(gs []fedid.GlobalFederateId) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.String()
	}
	return out
}

func mustEncode(v any) string {
	val, err := structpb.NewValue(v)
	if err != nil {
		return invalidQueryResult
	}
	bytes, err := proto.Marshal(val)
	if err != nil {
		return invalidQueryResult
	}
	var decoded structpb.Value
	if err := proto.Unmarshal(bytes, &decoded); err != nil {
		return invalidQueryResult
	}
	return decoded.String()
}
