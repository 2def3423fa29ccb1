// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFederateValidRejectsMissingName(t *testing.T) {
	f := Federate{}
	require.ErrorIs(t, f.Valid(), ErrMissingName)
}

func TestFederateValidRejectsNegativeMaxIterations(t *testing.T) {
	f := Federate{Name: "fed", MaxIterations: -1}
	require.ErrorIs(t, f.Valid(), ErrInvalidMaxIterations)
}

func TestFederateValidRequiresBrokerAddressWithBrokerName(t *testing.T) {
	f := Federate{Name: "fed", CoreType: "zmq", BrokerName: "root"}
	require.ErrorIs(t, f.Valid(), ErrBrokerAddressRequired)
}

func TestFederateValidAllowsInprocWithoutBrokerAddress(t *testing.T) {
	f := Federate{Name: "fed", CoreType: "inproc", BrokerName: "root"}
	require.NoError(t, f.Valid())
}

func TestCoreValidRejectsMissingCoreType(t *testing.T) {
	c := Core{}
	require.ErrorIs(t, c.Valid(), ErrMissingCoreType)
}

func TestFromJSONParsesSecondsIntoDurations(t *testing.T) {
	data := []byte(`{"name":"fedA","coreType":"zmq","grantTimeout":0.5,"maxIterations":3}`)
	f, err := FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, "fedA", f.Name)
	require.Equal(t, 500*time.Millisecond, f.GrantTimeout)
	require.Equal(t, 3, f.MaxIterations)
}

func TestFromJSONPropagatesValidationError(t *testing.T) {
	_, err := FromJSON([]byte(`{"coreType":"zmq"}`))
	require.ErrorIs(t, err, ErrMissingName)
}
