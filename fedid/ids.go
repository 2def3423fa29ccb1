// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fedid defines the identifier algebra of the federation core
// (SPEC_FULL.md §5): process-local handles, broker-assigned global
// ids, and the pairs that uniquely name an interface on the network.
package fedid

import "fmt"

// FederateId is a process-local handle returned by CoordinatorCore at
// registration. It is only meaningful within the core that issued it.
type FederateId uint32

// InvalidFederateId is returned by lookups that find nothing.
const InvalidFederateId FederateId = ^FederateId(0)

func (f FederateId) String() string {
	return fmt.Sprintf("fed#%d", uint32(f))
}

// GlobalFederateId is assigned by the root broker and unique across
// the whole federation, stamped in at registerFederate.
type GlobalFederateId uint64

// InvalidGlobalFederateId marks an id not yet assigned by the broker.
const InvalidGlobalFederateId GlobalFederateId = ^GlobalFederateId(0)

func (g GlobalFederateId) String() string {
	return fmt.Sprintf("gfed#%d", uint64(g))
}

// InterfaceHandle is a per-federate local index into its
// InterfaceRegistry — one table per interface kind, so the same
// numeric value can name a publication in one table and an endpoint
// in another; callers always know which table they're indexing.
type InterfaceHandle uint32

// InvalidInterfaceHandle marks "no such interface".
const InvalidInterfaceHandle InterfaceHandle = ^InterfaceHandle(0)

func (h InterfaceHandle) String() string {
	return fmt.Sprintf("handle#%d", uint32(h))
}

// GlobalHandle uniquely names any publication, input, endpoint,
// filter, or translator on the network (SPEC_FULL.md §5, invariant 1:
// stable from registration to federation shutdown).
type GlobalHandle struct {
	Federate  GlobalFederateId
	Interface InterfaceHandle
}

func (g GlobalHandle) String() string {
	return fmt.Sprintf("%s/%s", g.Federate, g.Interface)
}

// IsValid reports whether both halves of the pair were assigned.
func (g GlobalHandle) IsValid() bool {
	return g.Federate != InvalidGlobalFederateId && g.Interface != InvalidInterfaceHandle
}

// Route is an opaque, transport-owned destination key. CoordinatorCore
// carries it but never interprets it — only the Transport
// implementation that produced it knows how to use it again.
type Route uint64

// NoRoute is the zero value, meaning "deliver locally, don't transport".
const NoRoute Route = 0
