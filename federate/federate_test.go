// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/interfaces"
	"github.com/helics/core/timecoord"
)

func newTestState(self fedid.GlobalFederateId) *State {
	registry := interfaces.NewRegistry(0)
	coord := timecoord.NewCoordinator(self, nil)
	return New(self, fedid.FederateId(self), registry, coord, nil)
}

func TestEnterInitializingModeStandalone(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.EnterInitializingMode())
	require.Equal(t, Initializing, s.Phase())
}

func TestEnterInitializingModeRejectedWhenNotCreated(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.EnterInitializingMode())
	err := s.EnterInitializingMode()
	require.Error(t, err)
}

func TestEnterExecutingModeNoDependenciesGrantsImmediately(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.EnterInitializingMode())

	result, err := s.EnterExecutingMode(NoIterations)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, result)
	require.Equal(t, Executing, s.Phase())
}

func TestRequestTimeRejectedOutsideExecuting(t *testing.T) {
	s := newTestState(1)
	_, err := s.RequestTime(5, NoIterations)
	require.Error(t, err)
}

func TestRequestTimeWithDependencyBlocksThenGrants(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.EnterInitializingMode())
	_, err := s.EnterExecutingMode(NoIterations)
	require.NoError(t, err)

	s.coord.AddDependency(2)

	done := make(chan TimeGrant, 1)
	errCh := make(chan error, 1)
	go func() {
		grant, err := s.RequestTime(5, NoIterations)
		done <- grant
		errCh <- err
	}()

	time.Sleep(30 * time.Millisecond)
	s.Mailbox().Push(action.Message{Action: action.CmdTimeGrant, SourceId: 2, Time: 100})

	select {
	case grant := <-done:
		require.NoError(t, <-errCh)
		require.Equal(t, fedid.Time(5), grant.Time)
		require.Equal(t, timecoord.NextStep, grant.Result)
	case <-time.After(2 * time.Second):
		t.Fatal("requestTime never unblocked after dependency report")
	}
}

func TestDispatchPubDeliversToInput(t *testing.T) {
	s := newTestState(1)
	h, err := s.registry.RegisterInput("in1", "double", "")
	require.NoError(t, err)

	srcHandle := fedid.GlobalHandle{Federate: 2, Interface: 7}
	require.NoError(t, s.registry.AddSource(h, srcHandle, "B/pub1", "double", ""))

	s.dispatch(action.Message{
		Action:       action.CmdPub,
		SourceId:     2,
		SourceHandle: 7,
		DestHandle:   h,
		Time:         1.0,
		Payload:      []byte("1.0"),
	})

	in, ok := s.registry.Input(h)
	require.True(t, ok)
	require.Equal(t, 1, in.QueueDepth())
}

func TestDispatchSendMessageDeliversToEndpoint(t *testing.T) {
	s := newTestState(1)
	h, err := s.registry.RegisterEndpoint("e1", "")
	require.NoError(t, err)

	s.dispatch(action.Message{
		Action:     action.CmdSendMessage,
		DestHandle: h,
		Time:       3.0,
		Payload:    []byte("hello"),
		Aux:        []string{"A/e", "B/e1"},
	})

	ep, ok := s.registry.Endpoint(h)
	require.True(t, ok)
	require.True(t, ep.HasPendingMessage())
	msg, ok := ep.Front()
	require.True(t, ok)
	require.Equal(t, fedid.Time(3.0), msg.Time)
	require.Equal(t, "A/e", msg.OriginalSource)
}

func TestDispatchErrorEntersErrorState(t *testing.T) {
	s := newTestState(1)
	s.dispatch(action.Message{Action: action.CmdError, SourceId: 2, Aux: []string{"boom"}})
	require.Equal(t, Errored, s.Phase())
	require.Error(t, s.LastError())
}

func TestFinalizeIsIdempotent(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.Finalize())
	require.Equal(t, Finished, s.Phase())
	require.NoError(t, s.Finalize())
	require.Equal(t, Finished, s.Phase())
}

func TestOnlyOneOutstandingAsyncCall(t *testing.T) {
	s := newTestState(1)
	require.NoError(t, s.EnterInitializingMode())

	fut, err := s.EnterExecutingModeAsync(NoIterations)
	require.NoError(t, err)

	_, err = s.EnterExecutingModeAsync(NoIterations)
	require.Error(t, err)

	result, err := s.EnterExecutingModeComplete(fut)
	require.NoError(t, err)
	require.Equal(t, timecoord.NextStep, result)
}

func TestForceTimeGrantAppliesImmediately(t *testing.T) {
	s := newTestState(1)
	s.setGrantedTime(0)
	s.dispatch(action.Message{Action: action.CmdForceTimeGrant, Time: 1.0})
	require.Equal(t, fedid.Time(1.0), s.GrantedTime())
}
