// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import (
	"time"

	luxlog "github.com/luxfi/log"

	"github.com/helics/core/fedid"
	hlog "github.com/helics/core/log"
)

// epsilon is the tiny margin subtracted from the dependency bound so a
// grant never equals a time a dependency might still generate an
// event at (spec.md §4.3: "T_allow = min over deps (...) - epsilon").
const epsilon = 1e-9

// Coordinator is the per-federate TimeCoordinator (spec.md §4.3),
// grounded on the teacher's `engine/chain/poll` vote-tallying state
// machine: a Coordinator tallies dependency reports the same way a
// poll.Set tallies votes, and converts the tally into one decision
// (here a grant) once the bound crosses the requested time.
type Coordinator struct {
	self fedid.GlobalFederateId
	log  luxlog.Logger

	props Properties
	flags FlagSet

	dependencies map[fedid.GlobalFederateId]*DependencyInfo
	dependents   map[fedid.GlobalFederateId]*DependentInfo

	timeRequested fedid.Time
	iterating     bool
	iterationCount int
	grantedTime   fedid.Time

	delayed      map[fedid.GlobalFederateId][]TimeMessage
	delayedOrder []fedid.GlobalFederateId

	pendingSince time.Time
	pending      bool
	lastStage    int
}

// NewCoordinator builds a Coordinator for federate self.
func NewCoordinator(self fedid.GlobalFederateId, logger luxlog.Logger) *Coordinator {
	if logger == nil {
		logger = hlog.NewNoOpLogger()
	}
	return &Coordinator{
		self:         self,
		log:          logger,
		flags:        NewFlagSet(),
		dependencies: make(map[fedid.GlobalFederateId]*DependencyInfo),
		dependents:   make(map[fedid.GlobalFederateId]*DependentInfo),
		delayed:      make(map[fedid.GlobalFederateId][]TimeMessage),
		grantedTime:  -1,
	}
}

// AddDependency registers fed as a federate this coordinator must wait on.
func (c *Coordinator) AddDependency(fed fedid.GlobalFederateId) {
	if _, ok := c.dependencies[fed]; !ok {
		c.dependencies[fed] = newDependencyInfo(fed)
	}
}

// AddDependent registers fed as a federate waiting on this one.
func (c *Coordinator) AddDependent(fed fedid.GlobalFederateId) {
	if _, ok := c.dependents[fed]; !ok {
		c.dependents[fed] = newDependentInfo(fed)
	}
}

// SetProperty sets a Time-valued timing property.
func (c *Coordinator) SetProperty(p Property, v fedid.Time) { c.props.Set(p, v) }

// SetIntProperty sets an integer-valued timing property.
func (c *Coordinator) SetIntProperty(p Property, v int) { c.props.SetInt(p, v) }

// SetFlag enables or disables a behavioral flag.
func (c *Coordinator) SetFlag(f Flag, on bool) {
	if on {
		c.flags.Add(f)
	} else {
		c.flags.Remove(f)
	}
}

// HasFlag reports whether f is set.
func (c *Coordinator) HasFlag(f Flag) bool { return c.flags.Contains(f) }

// GrantedTime is the last time this federate was granted.
func (c *Coordinator) GrantedTime() fedid.Time { return c.grantedTime }

// Dependencies lists the federates this coordinator waits on, for
// CoordinatorCore's "dependencies" query key.
func (c *Coordinator) Dependencies() []fedid.GlobalFederateId {
	out := make([]fedid.GlobalFederateId, 0, len(c.dependencies))
	for fed := range c.dependencies {
		out = append(out, fed)
	}
	return out
}

// Dependents lists the federates waiting on this coordinator, for
// CoordinatorCore's "dependents" query key.
func (c *Coordinator) Dependents() []fedid.GlobalFederateId {
	out := make([]fedid.GlobalFederateId, 0, len(c.dependents))
	for fed := range c.dependents {
		out = append(out, fed)
	}
	return out
}

// allowedBound computes T_allow: the minimum, over every dependency,
// of that dependency's next possible event time plus INPUT_DELAY,
// minus epsilon. With no dependencies the bound is unconstrained.
func (c *Coordinator) allowedBound() fedid.Time {
	if len(c.dependencies) == 0 {
		return fedid.MaxTime
	}
	bound := fedid.MaxTime
	for _, d := range c.dependencies {
		candidate := d.NextEvent + c.props.InputDelay
		if candidate < bound {
			bound = candidate
		}
	}
	return bound - epsilon
}

// anyDependencyIterating reports whether a dependency has reported it
// is itself mid-iteration at the requested time — this blocks a clean
// grant of T_req even when the bound would otherwise allow it.
func (c *Coordinator) anyDependencyIterating() bool {
	for _, d := range c.dependencies {
		if d.Iterating {
			return true
		}
	}
	return false
}

// RequestTime runs one step of spec.md §4.3's requestTime algorithm.
// inputsChanged reports whether the owning FederateState observed any
// input change since the last grant — the signal that turns an
// iteration request into an ITERATING grant rather than an advance.
func (c *Coordinator) RequestTime(treq fedid.Time, iterate bool, inputsChanged bool) (fedid.Time, GrantResult, []TimeMessage) {
	c.timeRequested = treq
	c.iterating = iterate

	treq = c.props.applyPeriod(treq)
	allow := c.allowedBound()

	var granted fedid.Time
	var result GrantResult

	switch {
	case allow >= treq && !c.anyDependencyIterating():
		granted = treq
		if iterate && inputsChanged {
			result = Iterating
			c.iterationCount++
			if c.props.MaxIterations > 0 && c.iterationCount >= c.props.MaxIterations {
				result = NextStep
				c.iterationCount = 0
			}
		} else {
			result = NextStep
			c.iterationCount = 0
		}
	default:
		granted = allow
		result = NextStep
	}

	if result != Iterating {
		c.grantedTime = granted
		c.pending = false
		c.lastStage = 0
	} else {
		c.pending = true
		if !c.pendingSince.IsZero() {
			// stage tracking continues across iterations of the same request
		}
	}

	outbound := c.reportsToDependents(granted)
	return granted, result, outbound
}

// reportsToDependents builds the null messages due to dependents whose
// last-reported time is now stale (spec.md §4.3: send only when the
// advertised next-event time "changes materially").
func (c *Coordinator) reportsToDependents(next fedid.Time) []TimeMessage {
	var out []TimeMessage
	for _, dep := range c.dependents {
		if dep.LastReport == next {
			continue
		}
		dep.LastReport = next
		out = append(out, TimeMessage{From: c.self, To: dep.Federate, NextEvent: next, MinEvent: next, Iterating: c.iterating})
	}
	return out
}

// ProcessTimeMessage updates dependency state from an inbound report
// and resolves any buffered delayed messages the update unblocks.
func (c *Coordinator) ProcessTimeMessage(msg TimeMessage) MessageResult {
	if queue, delayed := c.delayed[msg.From]; delayed && len(queue) > 0 {
		c.delayed[msg.From] = append(queue, msg)
		return DelayProcessing
	}

	d, ok := c.dependencies[msg.From]
	if !ok {
		return NoEffect
	}
	if msg.NextEvent < c.grantedTime {
		// Cannot safely apply yet: buffer for re-examination after the
		// next state transition (spec.md §4.3 DELAY_PROCESSING).
		c.delayed[msg.From] = append(c.delayed[msg.From], msg)
		c.noteDelayedSender(msg.From)
		return DelayProcessing
	}
	if msg.NextEvent <= d.NextEvent && msg.MinEvent <= d.MinEvent && msg.Iterating == d.Iterating {
		return NoEffect
	}
	d.NextEvent = msg.NextEvent
	d.MinEvent = msg.MinEvent
	d.Iterating = msg.Iterating
	return Processed
}

func (c *Coordinator) noteDelayedSender(fed fedid.GlobalFederateId) {
	for _, f := range c.delayedOrder {
		if f == fed {
			return
		}
	}
	c.delayedOrder = append(c.delayedOrder, fed)
}

// DrainDelayed re-examines every buffered delayed message after a
// state transition, applying whichever now unblock.
func (c *Coordinator) DrainDelayed() []MessageResult {
	var results []MessageResult
	for _, fed := range c.delayedOrder {
		queue := c.delayed[fed]
		var remaining []TimeMessage
		for _, msg := range queue {
			if msg.NextEvent < c.grantedTime {
				remaining = append(remaining, msg)
				continue
			}
			d := c.dependencies[fed]
			if d != nil {
				d.NextEvent = msg.NextEvent
				d.MinEvent = msg.MinEvent
				d.Iterating = msg.Iterating
			}
			results = append(results, Processed)
		}
		c.delayed[fed] = remaining
	}
	return results
}
