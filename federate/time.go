// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"github.com/helics/core/action"
	"github.com/helics/core/timecoord"
)

// dispatchTimeMessage feeds an inbound null message / time report into
// the TimeCoordinator (spec.md §4.4: "CMD_TIME_REQUEST / CMD_TIME_GRANT
// / CMD_TIME_CHECK -> delegate to TimeCoordinator"). A DELAY_PROCESSING
// result needs no action here: the coordinator already buffered it and
// will re-examine it on the next DrainDelayed, which requestTime's
// retry loop triggers after every local state transition.
func (s *State) dispatchTimeMessage(msg action.Message) {
	tm := timecoord.TimeMessage{
		From:      msg.SourceId,
		NextEvent: msg.Time,
		MinEvent:  msg.Time,
		Iterating: msg.Flags&action.FlagIterating != 0,
	}
	s.coord.ProcessTimeMessage(tm)
}

// dispatchForceTimeGrant applies an injected force-grant (spec.md
// §4.4: "grant immediately if actionTime >= time_granted; log warning
// unless IGNORE_TIME_MISMATCH_WARNINGS"), used by real-time mode (S5)
// when no dependency has produced a qualifying event.
func (s *State) dispatchForceTimeGrant(msg action.Message) {
	granted := s.GrantedTime()
	if msg.Time < granted {
		if !s.coord.HasFlag(timecoord.IgnoreTimeMismatchWarnings) {
			s.log.Warn("CMD_FORCE_TIME_GRANT below current granted time", "granted", granted.String(), "forced", msg.Time.String())
		}
		return
	}
	s.setGrantedTime(msg.Time)
}

// requestedEventsMode picks the event-vector mode for an ordinary
// requestTime grant: inclusive, matching the common case where the
// caller wants every record at or before the granted time.
const requestedEventsMode = EventInclusive
