// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import (
	"time"

	"github.com/helics/core/fedid"
)

// RealTimeDeadline reports the wallclock moment a pending request
// should be force-granted if no real grant has arrived by then
// (spec.md §4.3: "schedules a wallclock timer at now + (T_req +
// rt_lag) - start_clock"). ok is false when REALTIME is not set.
func (c *Coordinator) RealTimeDeadline(startClock time.Time) (deadline time.Time, ok bool) {
	if !c.HasFlag(Realtime) {
		return time.Time{}, false
	}
	offset := time.Duration(float64(c.timeRequested+c.props.RtLag) * float64(time.Second))
	return startClock.Add(offset), true
}

// RealTimeSleep reports how long the federate should sleep after a
// grant to stay aligned with wallclock (spec.md §4.3: "if the
// federate is ahead of now - rt_lead, it sleeps the difference").
// Returns zero if REALTIME is unset or the federate is not ahead.
func (c *Coordinator) RealTimeSleep(granted fedid.Time, now, startClock time.Time) time.Duration {
	if !c.HasFlag(Realtime) {
		return 0
	}
	elapsedSinceStart := now.Sub(startClock).Seconds()
	target := float64(granted) - float64(c.props.RtLead)
	ahead := target - elapsedSinceStart
	if ahead <= 0 {
		return 0
	}
	return time.Duration(ahead * float64(time.Second))
}
