// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package timecoord implements the TimeCoordinator component of
// SPEC_FULL.md §4.3: the per-federate Chandy-Misra-style
// null-message time advancement algorithm, with iteration, grant
// timeouts, and real-time mode.
package timecoord

import "github.com/helics/core/fedid"

// Property is the closed set of timing knobs a federate configures
// (spec.md §4.3).
type Property int

const (
	TimeDelta Property = iota
	InputDelay
	OutputDelay
	Period
	Offset
	RtLag
	RtLead
	GrantTimeout
	MaxIterations
	LogLevel
)

func (p Property) String() string {
	switch p {
	case TimeDelta:
		return "TIME_DELTA"
	case InputDelay:
		return "INPUT_DELAY"
	case OutputDelay:
		return "OUTPUT_DELAY"
	case Period:
		return "PERIOD"
	case Offset:
		return "OFFSET"
	case RtLag:
		return "RT_LAG"
	case RtLead:
		return "RT_LEAD"
	case GrantTimeout:
		return "GRANT_TIMEOUT"
	case MaxIterations:
		return "MAX_ITERATIONS"
	case LogLevel:
		return "LOG_LEVEL"
	default:
		return "UNKNOWN_PROPERTY"
	}
}

// Properties holds the current value of every timing property. Time
// properties default to zero; MaxIterations defaults to unlimited (0
// means "no cap" the way the original treats an absent limit).
type Properties struct {
	TimeDelta     fedid.Time
	InputDelay    fedid.Time
	OutputDelay   fedid.Time
	Period        fedid.Time
	Offset        fedid.Time
	RtLag         fedid.Time
	RtLead        fedid.Time
	GrantTimeout  fedid.Time
	MaxIterations int
	LogLevel      int
}

// Set applies a Time-valued property.
func (p *Properties) Set(prop Property, value fedid.Time) {
	switch prop {
	case TimeDelta:
		p.TimeDelta = value
	case InputDelay:
		p.InputDelay = value
	case OutputDelay:
		p.OutputDelay = value
	case Period:
		p.Period = value
	case Offset:
		p.Offset = value
	case RtLag:
		p.RtLag = value
	case RtLead:
		p.RtLead = value
	case GrantTimeout:
		p.GrantTimeout = value
	}
}

// SetInt applies an integer-valued property.
func (p *Properties) SetInt(prop Property, value int) {
	switch prop {
	case MaxIterations:
		p.MaxIterations = value
	case LogLevel:
		p.LogLevel = value
	}
}

// applyPeriod snaps a requested time to the configured PERIOD/OFFSET
// grid, the way the original rounds "next allowed time" requests.
func (p *Properties) applyPeriod(t fedid.Time) fedid.Time {
	if p.Period <= 0 {
		return t
	}
	steps := float64(t-p.Offset) / float64(p.Period)
	n := float64(int64(steps))
	if n < steps {
		n++
	}
	return p.Offset + fedid.Time(n)*p.Period
}
