// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package timecoord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/fedid"
)

func TestRequestTimeNoDependenciesGrantsRequested(t *testing.T) {
	c := NewCoordinator(1, nil)
	granted, result, _ := c.RequestTime(5, false, false)
	require.Equal(t, fedid.Time(5), granted)
	require.Equal(t, NextStep, result)
}

// TestSafetyOfGrant is spec.md §8 property 6: granted_time[i] <= min
// over deps d (nextEvent[d] + inputDelay[i]).
func TestSafetyOfGrant(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.AddDependency(2)
	c.SetProperty(InputDelay, 0)
	c.ProcessTimeMessage(TimeMessage{From: 2, NextEvent: 3})

	granted, _, _ := c.RequestTime(10, false, false)
	require.LessOrEqual(t, granted, fedid.Time(3))
}

// TestIterationFixpointStrictlyIncreasing is spec.md §8 property 8: a
// federate that never iterates grants strictly increasing times.
func TestIterationFixpointStrictlyIncreasing(t *testing.T) {
	c := NewCoordinator(1, nil)
	var last fedid.Time = -1
	for _, req := range []fedid.Time{1, 2, 3, 4} {
		granted, result, _ := c.RequestTime(req, false, false)
		require.Equal(t, NextStep, result)
		require.Greater(t, granted, last)
		last = granted
	}
}

func TestRequestTimeIteratesWhenInputsChanged(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.SetIntProperty(MaxIterations, 5)
	_, result, _ := c.RequestTime(1, true, true)
	require.Equal(t, Iterating, result)
}

func TestRequestTimeIterationCapsAtMaxIterations(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.SetIntProperty(MaxIterations, 2)
	_, r1, _ := c.RequestTime(1, true, true)
	require.Equal(t, Iterating, r1)
	_, r2, _ := c.RequestTime(1, true, true)
	require.Equal(t, NextStep, r2)
}

func TestProcessTimeMessageNoEffectOnUnknownSender(t *testing.T) {
	c := NewCoordinator(1, nil)
	result := c.ProcessTimeMessage(TimeMessage{From: 99, NextEvent: 5})
	require.Equal(t, NoEffect, result)
}

func TestProcessTimeMessageDelaysBelowGrantedTime(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.AddDependency(2)
	c.ProcessTimeMessage(TimeMessage{From: 2, NextEvent: 100})
	granted, _, _ := c.RequestTime(10, false, false)
	require.Equal(t, fedid.Time(10), granted)

	result := c.ProcessTimeMessage(TimeMessage{From: 2, NextEvent: 1})
	require.Equal(t, DelayProcessing, result)
}

func TestGrantTimeoutStagesEscalate(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.SetProperty(GrantTimeout, 0.1)
	start := time.Now()
	c.BeginWait(start)

	stage, _, force := c.CheckGrantTimeout(start.Add(150 * time.Millisecond))
	require.Equal(t, 1, stage)
	require.False(t, force)

	stage, _, force = c.CheckGrantTimeout(start.Add(450 * time.Millisecond))
	require.Equal(t, 4, stage)
	require.True(t, force)
}

func TestRealTimeDeadlineRequiresFlag(t *testing.T) {
	c := NewCoordinator(1, nil)
	_, ok := c.RealTimeDeadline(time.Now())
	require.False(t, ok)

	c.SetFlag(Realtime, true)
	c.RequestTime(1, false, false)
	_, ok = c.RealTimeDeadline(time.Now())
	require.True(t, ok)
}

func TestDependentReportsSuppressedWhenUnchanged(t *testing.T) {
	c := NewCoordinator(1, nil)
	c.AddDependent(2)

	_, _, out1 := c.RequestTime(5, false, false)
	require.Len(t, out1, 1)

	_, _, out2 := c.RequestTime(5, false, false)
	require.Len(t, out2, 0)
}
