// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"time"
)

// jsonFederate mirrors Federate with the camel-case field names
// spec.md §6 names as the wire vocabulary (`timeDelta`, `brokerName`,
// ...), independent of the struct's Go field names.
type jsonFederate struct {
	Name string `json:"name"`

	CoreType       string `json:"coreType"`
	CoreName       string `json:"coreName"`
	CoreInitString string `json:"coreInitString"`
	BrokerName     string `json:"brokerName"`
	BrokerAddress  string `json:"brokerAddress"`

	TimeDelta   float64 `json:"timeDelta"`
	Period      float64 `json:"period"`
	Offset      float64 `json:"offset"`
	InputDelay  float64 `json:"inputDelay"`
	OutputDelay float64 `json:"outputDelay"`

	RTLag  float64 `json:"rtLag"`
	RTLead float64 `json:"rtLead"`

	MaxIterations int `json:"maxIterations"`

	LogLevel        string `json:"logLevel"`
	ConsoleLogLevel string `json:"consoleLogLevel"`
	FileLogLevel    string `json:"fileLogLevel"`
	LogFile         string `json:"logFile"`
	LogBuffer       int    `json:"logBuffer"`

	Flags []string `json:"flags"`

	GrantTimeout float64 `json:"grantTimeout"`

	Profiling             bool   `json:"profiling"`
	ProfilingFile         string `json:"profilingFile"`
	ProfilingAppend       bool   `json:"profilingAppend"`
	LocalProfilingCapture bool   `json:"localProfilingCapture"`
	ProfilingMarker       string `json:"profilingMarker"`
}

// FromJSON decodes a Federate config from JSON bytes. Durations in
// the wire format are seconds, matching spec.md §6's `grantTimeout`
// ("timeout in seconds").
func FromJSON(data []byte) (Federate, error) {
	var j jsonFederate
	if err := json.Unmarshal(data, &j); err != nil {
		return Federate{}, err
	}
	f := Federate{
		Name:                  j.Name,
		CoreType:              j.CoreType,
		CoreName:              j.CoreName,
		CoreInitString:        j.CoreInitString,
		BrokerName:            j.BrokerName,
		BrokerAddress:         j.BrokerAddress,
		TimeDelta:             secondsToDuration(j.TimeDelta),
		Period:                secondsToDuration(j.Period),
		Offset:                secondsToDuration(j.Offset),
		InputDelay:            secondsToDuration(j.InputDelay),
		OutputDelay:           secondsToDuration(j.OutputDelay),
		RTLag:                 secondsToDuration(j.RTLag),
		RTLead:                secondsToDuration(j.RTLead),
		MaxIterations:         j.MaxIterations,
		LogLevel:              j.LogLevel,
		ConsoleLogLevel:       j.ConsoleLogLevel,
		FileLogLevel:          j.FileLogLevel,
		LogFile:               j.LogFile,
		LogBuffer:             j.LogBuffer,
		Flags:                 j.Flags,
		GrantTimeout:          secondsToDuration(j.GrantTimeout),
		Profiling:             j.Profiling,
		ProfilingFile:         j.ProfilingFile,
		ProfilingAppend:       j.ProfilingAppend,
		LocalProfilingCapture: j.LocalProfilingCapture,
		ProfilingMarker:       j.ProfilingMarker,
	}
	return f, f.Valid()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
