// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport defines the abstract collaborator CoordinatorCore
// and FederateState use to move encoded ActionMessages between
// processes (SPEC_FULL.md §8). CoordinatorCore carries a Route but
// never interprets it — only the concrete Transport that produced the
// route knows what it means.
package transport

import "github.com/helics/core/fedid"

// Transport moves already-encoded ActionMessage bytes between cores.
// Implementations own framing, addressing, and delivery; callers own
// retry and error handling.
type Transport interface {
	// Send delivers msg to the endpoint named by route.
	Send(route fedid.Route, msg []byte) error

	// Broadcast delivers msg to every endpoint currently reachable.
	Broadcast(msg []byte) error

	// Recv is the inbound stream: every message addressed to this
	// transport's endpoint, in arrival order. Closed when Close runs.
	Recv() <-chan []byte

	// Close releases the transport's resources. Recv's channel is
	// closed as part of Close; Send/Broadcast after Close return an
	// error.
	Close() error
}

// Connector is implemented by transports that need an explicit dial
// step before a route is reachable (transport/zmq's ROUTER/DEALER
// pair); transport/inproc has no such step since every endpoint
// shares one in-process Hub.
type Connector interface {
	Connect(route fedid.Route, routerAddress, pubAddress string) error
}

// ZMQDialer is nil unless the binary is linked with transport/zmq
// (built with `-tags zmq`), whose init() wires in the real
// constructor — the same optional-build-tag registration idiom Go's
// database/sql drivers use, so a core type of "zmq" degrades to a
// clear error instead of a missing-symbol link failure when zmq
// support isn't built in.
var ZMQDialer func(self fedid.Route, routerAddress, pubAddress string) (Transport, error)
