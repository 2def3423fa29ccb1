// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package inproc is the channel-based Transport used by single-process
// federations and every test in this module (SPEC_FULL.md §8):
// endpoints share a Hub instead of a socket, and Send/Broadcast are
// direct channel sends rather than a wire round-trip.
package inproc

import (
	"fmt"
	"sync"

	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
)

// Hub is the shared registry a set of in-process Transports dial into,
// analogous to the PUB/SUB + ROUTER/DEALER mesh the zmq transport
// builds out of real sockets. One Hub per federation.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[fedid.Route]*Transport
}

// NewHub returns an empty registry.
func NewHub() *Hub {
	return &Hub{endpoints: make(map[fedid.Route]*Transport)}
}

func (h *Hub) register(route fedid.Route, t *Transport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.endpoints[route]; exists {
		return herrors.InvalidParameter("inproc: route %d already registered", route)
	}
	h.endpoints[route] = t
	return nil
}

func (h *Hub) unregister(route fedid.Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.endpoints, route)
}

func (h *Hub) lookup(route fedid.Route) (*Transport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.endpoints[route]
	return t, ok
}

func (h *Hub) all() []*Transport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Transport, 0, len(h.endpoints))
	for _, t := range h.endpoints {
		out = append(out, t)
	}
	return out
}

// Transport is a Hub-backed transport.Transport endpoint identified by
// its own Route. inbox is buffered so a slow reader never blocks a
// peer's Send; when the inbox is full, Send fails instead of waiting.
type Transport struct {
	hub    *Hub
	route  fedid.Route
	inbox  chan []byte
	closed chan struct{}
	once   sync.Once
}

const inboxDepth = 256

// New registers a new endpoint on hub under route and returns its
// Transport. Registering the same route twice is an error.
func New(hub *Hub, route fedid.Route) (*Transport, error) {
	t := &Transport{
		hub:    hub,
		route:  route,
		inbox:  make(chan []byte, inboxDepth),
		closed: make(chan struct{}),
	}
	if err := hub.register(route, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Send delivers msg to the endpoint registered at route.
func (t *Transport) Send(route fedid.Route, msg []byte) error {
	select {
	case <-t.closed:
		return fmt.Errorf("inproc: transport for route %d is closed", t.route)
	default:
	}
	dest, ok := t.hub.lookup(route)
	if !ok {
		return herrors.ConnectionFailure("inproc: no endpoint registered for route %d", route)
	}
	select {
	case dest.inbox <- msg:
		return nil
	case <-dest.closed:
		return herrors.ConnectionFailure("inproc: endpoint for route %d closed mid-send", route)
	default:
		return herrors.ConnectionFailure("inproc: inbox for route %d is full", route)
	}
}

// Broadcast delivers msg to every endpoint on the hub except itself.
func (t *Transport) Broadcast(msg []byte) error {
	select {
	case <-t.closed:
		return fmt.Errorf("inproc: transport for route %d is closed", t.route)
	default:
	}
	for _, dest := range t.hub.all() {
		if dest == t {
			continue
		}
		select {
		case dest.inbox <- msg:
		case <-dest.closed:
		default:
			// A full peer inbox never blocks a broadcaster; the peer
			// will fall behind rather than stall the sender.
		}
	}
	return nil
}

// Recv returns the channel of messages addressed to this endpoint.
func (t *Transport) Recv() <-chan []byte {
	return t.inbox
}

// Close unregisters the endpoint and closes its inbox. Safe to call
// more than once.
func (t *Transport) Close() error {
	t.once.Do(func() {
		t.hub.unregister(t.route)
		close(t.closed)
		close(t.inbox)
	})
	return nil
}
