// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import "github.com/helics/core/fedid"

// TimeMessage is the null-message exchanged between a federate and
// its dependencies/dependents (spec.md §4.3: "sends a null message
// ... whenever its own advertised next-event time changes").
type TimeMessage struct {
	From      fedid.GlobalFederateId
	To        fedid.GlobalFederateId
	NextEvent fedid.Time
	MinEvent  fedid.Time
	Iterating bool
}
