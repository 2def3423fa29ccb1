// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config is the struct-of-named-fields configuration surface
// the core accepts (spec.md §6): plain Go structs, not a file format.
// File/flag loaders are collaborators outside this package.
package config

import (
	"time"

	"github.com/helics/core/herrors"
)

// Federate is every field a FederateState/TimeCoordinator combination
// accepts at construction (spec.md §6 field table).
type Federate struct {
	Name string

	CoreType       string
	CoreName       string
	CoreInitString string
	BrokerName     string
	BrokerAddress  string

	TimeDelta   time.Duration
	Period      time.Duration
	Offset      time.Duration
	InputDelay  time.Duration
	OutputDelay time.Duration

	RTLag  time.Duration
	RTLead time.Duration

	MaxIterations int

	LogLevel        string
	ConsoleLogLevel string
	FileLogLevel    string
	LogFile         string
	LogBuffer       int

	Flags []string

	GrantTimeout time.Duration

	Profiling             bool
	ProfilingFile         string
	ProfilingAppend       bool
	LocalProfilingCapture bool
	ProfilingMarker       string
}

// Valid checks a Federate config the way the teacher's
// Parameters.Valid() does: a flat switch of range/consistency checks,
// each returning a sentinel error.
func (f Federate) Valid() error {
	if f.Name == "" {
		return ErrMissingName
	}
	if f.MaxIterations < 0 {
		return ErrInvalidMaxIterations
	}
	if f.LogBuffer < 0 {
		return ErrInvalidLogBuffer
	}
	if f.GrantTimeout < 0 {
		return ErrInvalidGrantTimeout
	}
	if f.RTLag < 0 || f.RTLead < 0 {
		return ErrInvalidRealTimeWindow
	}
	if f.BrokerName != "" && f.BrokerAddress == "" && f.CoreType != "inproc" {
		return ErrBrokerAddressRequired
	}
	return nil
}

// Core is the process-level counterpart: the settings a CoordinatorCore
// needs that aren't scoped to one federate.
type Core struct {
	CoreType       string
	CoreName       string
	CoreInitString string
	BrokerAddress  string

	ConnectTimeout time.Duration
	AutoBroker     bool
}

// Valid mirrors Federate.Valid's shape for the core-level fields.
func (c Core) Valid() error {
	if c.CoreType == "" {
		return ErrMissingCoreType
	}
	if c.ConnectTimeout < 0 {
		return ErrInvalidConnectTimeout
	}
	return nil
}

var (
	ErrMissingName            = herrors.InvalidParameter("config: federate name is required")
	ErrInvalidMaxIterations   = herrors.InvalidParameter("config: maxIterations must be >= 0")
	ErrInvalidLogBuffer       = herrors.InvalidParameter("config: logBuffer must be >= 0")
	ErrInvalidGrantTimeout    = herrors.InvalidParameter("config: grantTimeout must be >= 0")
	ErrInvalidRealTimeWindow  = herrors.InvalidParameter("config: rtLag/rtLead must be >= 0")
	ErrBrokerAddressRequired  = herrors.InvalidParameter("config: brokerAddress is required when brokerName is set")
	ErrMissingCoreType        = herrors.InvalidParameter("config: coreType is required")
	ErrInvalidConnectTimeout  = herrors.InvalidParameter("config: connectTimeout must be >= 0")
)
