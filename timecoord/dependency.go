// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import "github.com/helics/core/fedid"

// DependencyInfo is what this federate knows about one of its
// dependencies: the earliest time it could still generate an event,
// the minimum event time it has forwarded so far, and the last grant
// it reported (spec.md §4.3).
type DependencyInfo struct {
	Federate     fedid.GlobalFederateId
	NextEvent    fedid.Time
	MinEvent     fedid.Time
	LastGrant    fedid.Time
	Iterating    bool
}

// newDependencyInfo starts a dependency at time zero, eligible to
// generate an event immediately until it reports otherwise.
func newDependencyInfo(fed fedid.GlobalFederateId) *DependencyInfo {
	return &DependencyInfo{Federate: fed, NextEvent: 0, MinEvent: 0, LastGrant: -1}
}

// DependentInfo is what this federate has last reported to one of its
// dependents: the last time communicated, used to suppress redundant
// null messages (spec.md §4.3: "sends a null message ... whenever its
// own advertised next-event time changes materially").
type DependentInfo struct {
	Federate   fedid.GlobalFederateId
	LastReport fedid.Time
}

func newDependentInfo(fed fedid.GlobalFederateId) *DependentInfo {
	return &DependentInfo{Federate: fed, LastReport: -1}
}
