// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package corehub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/federate"
	"github.com/helics/core/fedid"
	"github.com/helics/core/interfaces"
	"github.com/helics/core/timecoord"
	"github.com/helics/core/values"
)

// registerNamedFederate builds a federate.State the way every cmd/
// app and test helper in this module does — self is a dummy
// placeholder (newTestFederate's long-standing precedent above);
// real cross-federate identity always comes from h.GlobalOf(local).
func registerNamedFederate(t *testing.T, h *Hub, name string) (*federate.State, *interfaces.Registry, fedid.GlobalFederateId) {
	t.Helper()
	reg := interfaces.NewRegistry(0)
	coord := timecoord.NewCoordinator(0, nil)
	s := federate.New(0, 0, reg, coord, nil)
	local, err := h.RegisterFederate(name, FederateInfo{Name: name}, s)
	require.NoError(t, err)
	return s, reg, h.GlobalOf(local)
}

// TestTwoFederatePubSubDeliversAcrossHub wires a publisher and a
// subscriber on one Hub (spec.md §8 S1's shape: a federate publishes
// a double, a dependent federate receives it through its matched
// input) and drives both through real RequestTime calls routed
// entirely by the Hub, not by manually pushed mailbox messages.
func TestTwoFederatePubSubDeliversAcrossHub(t *testing.T) {
	h := New(1, nil)

	a, aReg, globalA := registerNamedFederate(t, h, "A")
	b, bReg, globalB := registerNamedFederate(t, h, "B")

	pubHandle, err := aReg.RegisterPublication("pub1", "double", "")
	require.NoError(t, err)
	inHandle, err := bReg.RegisterInput("in1", "double", "")
	require.NoError(t, err)
	aReg.FinishRegistration()
	bReg.FinishRegistration()

	require.NoError(t, aReg.AddDestination(pubHandle, fedid.GlobalHandle{Federate: globalB, Interface: inHandle}))
	require.NoError(t, bReg.AddSource(inHandle, fedid.GlobalHandle{Federate: globalA, Interface: pubHandle}, "pub1", "double", ""))
	a.Coordinator().AddDependent(globalB)
	b.Coordinator().AddDependency(globalA)

	errCh := make(chan error, 2)

	go func() {
		if err := a.EnterInitializingMode(); err != nil {
			errCh <- err
			return
		}
		if _, err := a.EnterExecutingMode(federate.NoIterations); err != nil {
			errCh <- err
			return
		}
		steps := []float64{1.0, 1.05, 1.2, 1.2}
		for i, val := range steps {
			raw, err := values.Encode(values.NewDouble(val))
			if err != nil {
				errCh <- err
				return
			}
			if err := a.Publish(pubHandle, raw); err != nil {
				errCh <- err
				return
			}
			if _, err := a.RequestTime(fedid.Time(i+1), federate.NoIterations); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	go func() {
		if err := b.EnterInitializingMode(); err != nil {
			errCh <- err
			return
		}
		if _, err := b.EnterExecutingMode(federate.NoIterations); err != nil {
			errCh <- err
			return
		}
		// B must keep requesting time alongside A: computeEvents only
		// pops a delivered record once B is actually granted past it,
		// and B's dependency on A is what makes those grants wait for
		// A's publishes to land first.
		for step := fedid.Time(1); step <= 3; step++ {
			if _, err := b.RequestTime(step, federate.NoIterations); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("federates never finished their scripted run")
		}
	}

	in, ok := bReg.Input(inHandle)
	require.True(t, ok)
	last, ok := in.LastValue(fedid.GlobalHandle{Federate: globalA, Interface: pubHandle})
	require.True(t, ok)
	decoded, err := values.Decode(last)
	require.NoError(t, err)
	require.Equal(t, "1.2", decoded.String())
}

// TestChainOfFederatesProgressesUnderDependency exercises testable
// property 7 (spec.md §8): a linear dependency chain A -> B -> C,
// where every federate periodically requests time, eventually
// observes every federate granted past a finite horizon.
func TestChainOfFederatesProgressesUnderDependency(t *testing.T) {
	h := New(1, nil)

	a, _, globalA := registerNamedFederate(t, h, "A")
	b, _, globalB := registerNamedFederate(t, h, "B")
	c, _, globalC := registerNamedFederate(t, h, "C")

	a.Coordinator().AddDependent(globalB)
	b.Coordinator().AddDependency(globalA)
	b.Coordinator().AddDependent(globalC)
	c.Coordinator().AddDependency(globalB)

	errCh := make(chan error, 3)

	go func() {
		if err := a.EnterInitializingMode(); err != nil {
			errCh <- err
			return
		}
		if _, err := a.EnterExecutingMode(federate.NoIterations); err != nil {
			errCh <- err
			return
		}
		for step := fedid.Time(1); step <= 10; step++ {
			if _, err := a.RequestTime(step, federate.NoIterations); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	go func() {
		if err := b.EnterInitializingMode(); err != nil {
			errCh <- err
			return
		}
		if _, err := b.EnterExecutingMode(federate.NoIterations); err != nil {
			errCh <- err
			return
		}
		grant, err := b.RequestTime(5, federate.NoIterations)
		if err != nil {
			errCh <- err
			return
		}
		if grant.Time != 5 {
			t.Errorf("B: expected grant 5, got %s", grant.Time.String())
		}
		errCh <- nil
	}()

	go func() {
		if err := c.EnterInitializingMode(); err != nil {
			errCh <- err
			return
		}
		if _, err := c.EnterExecutingMode(federate.NoIterations); err != nil {
			errCh <- err
			return
		}
		grant, err := c.RequestTime(3, federate.NoIterations)
		if err != nil {
			errCh <- err
			return
		}
		if grant.Time != 3 {
			t.Errorf("C: expected grant 3, got %s", grant.Time.String())
		}
		errCh <- nil
	}()

	for i := 0; i < 3; i++ {
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("dependency chain never made progress")
		}
	}
}

// TestIteratingFederateConvergesBeforeExecuting is spec.md §8 S2's
// shape and property 8 (spec.md §8: a federate that stops asking to
// iterate is granted a strictly increasing time next): two federates
// on the same Hub each repeat a ForceIteration round a fixed number of
// times and only resolve to NEXT_STEP, and thence to EXECUTING, once
// they ask for a plain, non-iterating round. See
// TestIterateIfNeededStopsOnceInputsStopChanging below for the
// companion case where the ITERATING/NEXT_STEP outcome is driven by
// real input changes rather than this caller-forced flag.
func TestIteratingFederateConvergesBeforeExecuting(t *testing.T) {
	h := New(1, nil)

	a, _, _ := registerNamedFederate(t, h, "A")
	b, _, _ := registerNamedFederate(t, h, "B")

	require.NoError(t, a.EnterInitializingMode())
	require.NoError(t, b.EnterInitializingMode())

	for round := 0; round < 3; round++ {
		aResult, err := a.EnterExecutingMode(federate.ForceIteration)
		require.NoError(t, err)
		require.Equalf(t, timecoord.Iterating, aResult, "A round %d", round)
		require.Equal(t, federate.Initializing, a.Phase())

		bResult, err := b.EnterExecutingMode(federate.ForceIteration)
		require.NoError(t, err)
		require.Equalf(t, timecoord.Iterating, bResult, "B round %d", round)
		require.Equal(t, federate.Initializing, b.Phase())
	}

	aResult, err := a.EnterExecutingMode(federate.NoIterations)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, aResult)
	bResult, err := b.EnterExecutingMode(federate.NoIterations)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, bResult)

	require.Equal(t, federate.Executing, a.Phase())
	require.Equal(t, federate.Executing, b.Phase())
}

// TestIterateIfNeededStopsOnceInputsStopChanging is spec.md §8 S2's
// other half: unlike TestIteratingFederateConvergesBeforeExecuting's
// ForceIteration, this drives IterateIfNeeded with real published
// values, so the ITERATING/NEXT_STEP outcome depends on whether a
// subscribed input actually received new data, not on a caller-chosen
// flag.
func TestIterateIfNeededStopsOnceInputsStopChanging(t *testing.T) {
	h := New(1, nil)

	a, aReg, globalA := registerNamedFederate(t, h, "A")
	b, bReg, globalB := registerNamedFederate(t, h, "B")

	xPub, err := aReg.RegisterPublication("x", "double", "")
	require.NoError(t, err)
	yIn, err := aReg.RegisterInput("y", "double", "")
	require.NoError(t, err)
	yPub, err := bReg.RegisterPublication("y", "double", "")
	require.NoError(t, err)
	xIn, err := bReg.RegisterInput("x", "double", "")
	require.NoError(t, err)
	require.NoError(t, aReg.SetInputDelta(yIn, 0))
	require.NoError(t, bReg.SetInputDelta(xIn, 0))
	require.NoError(t, aReg.SetProperty(interfaces.KindInput, yIn, interfaces.HandleOnlyUpdateOnChange, 0, true))
	require.NoError(t, bReg.SetProperty(interfaces.KindInput, xIn, interfaces.HandleOnlyUpdateOnChange, 0, true))
	aReg.FinishRegistration()
	bReg.FinishRegistration()

	require.NoError(t, aReg.AddDestination(xPub, fedid.GlobalHandle{Federate: globalB, Interface: xIn}))
	require.NoError(t, bReg.AddSource(xIn, fedid.GlobalHandle{Federate: globalA, Interface: xPub}, "x", "double", ""))
	require.NoError(t, bReg.AddDestination(yPub, fedid.GlobalHandle{Federate: globalA, Interface: yIn}))
	require.NoError(t, aReg.AddSource(yIn, fedid.GlobalHandle{Federate: globalB, Interface: yPub}, "y", "double", ""))

	require.NoError(t, a.EnterInitializingMode())
	require.NoError(t, b.EnterInitializingMode())

	publishBoth := func(val float64) {
		raw, err := values.Encode(values.NewDouble(val))
		require.NoError(t, err)
		require.NoError(t, a.Publish(xPub, raw))
		require.NoError(t, b.Publish(yPub, raw))
	}

	// Round 1 and 2: both sides publish a fresh value every round, so
	// each sees a real change in its subscribed input and iterates.
	for round, val := range []float64{0, 1} {
		publishBoth(val)
		aResult, err := a.EnterExecutingMode(federate.IterateIfNeeded)
		require.NoError(t, err)
		require.Equalf(t, timecoord.Iterating, aResult, "A round %d", round)
		bResult, err := b.EnterExecutingMode(federate.IterateIfNeeded)
		require.NoError(t, err)
		require.Equalf(t, timecoord.Iterating, bResult, "B round %d", round)
	}

	// Round 3: nobody publishes anything new. With no fresh record to
	// report as an event, IterateIfNeeded must resolve to NEXT_STEP.
	aResult, err := a.EnterExecutingMode(federate.IterateIfNeeded)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, aResult)
	bResult, err := b.EnterExecutingMode(federate.IterateIfNeeded)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, bResult)

	require.Equal(t, federate.Executing, a.Phase())
	require.Equal(t, federate.Executing, b.Phase())
}

// TestSourceFilterShiftsEndpointMessageTime is spec.md §8 S3's shape:
// a source filter on the sending endpoint shifts a message's time
// before it crosses the Hub to the receiving endpoint.
func TestSourceFilterShiftsEndpointMessageTime(t *testing.T) {
	h := New(1, nil)

	a, aReg, globalA := registerNamedFederate(t, h, "A")
	b, bReg, globalB := registerNamedFederate(t, h, "B")

	epHandle, err := aReg.RegisterEndpoint("e", "default")
	require.NoError(t, err)
	destHandle, err := bReg.RegisterEndpoint("e2", "default")
	require.NoError(t, err)

	srcHandle := fedid.GlobalHandle{Federate: globalA, Interface: epHandle}
	_, err = aReg.RegisterFilter("shift", interfaces.FilterSource, "default", "default")
	require.NoError(t, err)
	f, ok := aReg.Filter("shift")
	require.True(t, ok)
	f.AddTarget(srcHandle)
	f.SetOperator(interfaces.TimeShiftOperator(2))

	aReg.FinishRegistration()
	bReg.FinishRegistration()

	require.NoError(t, a.EnterInitializingMode())
	_, err = a.EnterExecutingMode(federate.NoIterations)
	require.NoError(t, err)
	require.NoError(t, b.EnterInitializingMode())
	_, err = b.EnterExecutingMode(federate.NoIterations)
	require.NoError(t, err)

	dest := fedid.GlobalHandle{Federate: globalB, Interface: destHandle}
	require.NoError(t, a.SendMessage(epHandle, dest, []byte("m")))

	require.Eventually(t, func() bool {
		ep, ok := bReg.Endpoint(destHandle)
		if !ok {
			return false
		}
		_, has := ep.Front()
		return has
	}, 2*time.Second, 10*time.Millisecond)

	ep, ok := bReg.Endpoint(destHandle)
	require.True(t, ok)
	msg, ok := ep.Front()
	require.True(t, ok)
	require.Equal(t, fedid.Time(2), msg.Time)
	require.Equal(t, "m", string(msg.Payload))
}
