// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import (
	"fmt"
	"time"

	"github.com/helics/core/fedid"
)

// BeginWait marks the wallclock moment a requestTime call started
// waiting for a grant; CheckGrantTimeout measures elapsed time from here.
func (c *Coordinator) BeginWait(now time.Time) {
	c.pendingSince = now
	c.pending = true
	c.lastStage = 0
}

// EndWait clears the pending-grant marker once a grant arrives.
func (c *Coordinator) EndWait() {
	c.pending = false
	c.lastStage = 0
}

// CheckGrantTimeout runs the four-stage grant-timeout protocol
// (spec.md §4.3). It is a no-op unless GRANT_TIMEOUT is configured and
// a request is still pending. Returns the newly entered stage (0 if
// none) and, for stage 4, forceDisconnect=true.
func (c *Coordinator) CheckGrantTimeout(now time.Time) (stage int, messages []string, forceDisconnect bool) {
	if !c.pending || c.props.GrantTimeout <= 0 {
		return 0, nil, false
	}
	elapsed := fedid.Time(now.Sub(c.pendingSince).Seconds())
	reached := int(elapsed / c.props.GrantTimeout)
	if reached <= c.lastStage || reached == 0 {
		return 0, nil, false
	}
	if reached > 4 {
		reached = 4
	}
	for stage := c.lastStage + 1; stage <= reached; stage++ {
		messages = append(messages, c.stageMessage(stage))
	}
	c.lastStage = reached
	c.log.Warn(messages[len(messages)-1])
	return reached, messages, reached >= 4
}

func (c *Coordinator) stageMessage(stage int) string {
	switch stage {
	case 1:
		return fmt.Sprintf("grant timeout waiting on %d dependencies", c.blockedDependencyCount())
	case 2:
		return "grant timeout stage 2: resending state to dependencies"
	case 3:
		return "grant timeout stage 3: TIME DEBUGGING dependency state dump"
	default:
		return "grant timeout stage 4: forcing disconnect"
	}
}

// blockedDependencyCount counts dependencies whose next-event time
// does not yet clear the requested time — the suspects named in the
// stage-1 log line.
func (c *Coordinator) blockedDependencyCount() int {
	n := 0
	for _, d := range c.dependencies {
		if d.NextEvent+c.props.InputDelay < c.timeRequested {
			n++
		}
	}
	return n
}
