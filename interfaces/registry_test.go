// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/fedid"
)

func newHandle(fed fedid.GlobalFederateId, h fedid.InterfaceHandle) fedid.GlobalHandle {
	return fedid.GlobalHandle{Federate: fed, Interface: h}
}

func TestRegisterPublicationDuplicateKeyErrors(t *testing.T) {
	r := NewRegistry(0)
	_, err := r.RegisterPublication("p1", "double", "")
	require.NoError(t, err)
	_, err = r.RegisterPublication("p1", "double", "")
	require.Error(t, err)
}

func TestRegistrationClosedAfterFinish(t *testing.T) {
	r := NewRegistry(0)
	r.FinishRegistration()
	_, err := r.RegisterInput("in1", "double", "")
	require.Error(t, err)
}

// TestAddSourceIdempotence is spec.md §8 property 9.
func TestAddSourceIdempotence(t *testing.T) {
	r := NewRegistry(0)
	h, err := r.RegisterInput("in1", "double", "")
	require.NoError(t, err)

	src := newHandle(1, 5)
	require.NoError(t, r.AddSource(h, src, "A/pub1", "double", ""))
	require.NoError(t, r.AddSource(h, src, "A/pub1", "double", ""))

	in, ok := r.Input(h)
	require.True(t, ok)
	require.Len(t, in.Sources(), 1)
}

func TestAddSourceTypeMismatchStrictErrors(t *testing.T) {
	r := NewRegistry(0)
	h, err := r.RegisterInput("in1", "double", "")
	require.NoError(t, err)
	require.NoError(t, r.SetProperty(KindInput, h, StrictTypeChecking, 0, true))

	err = r.AddSource(h, newHandle(1, 1), "A/pub1", "string", "")
	require.Error(t, err)
}

// TestInputQueueStrictOrdering is spec.md §8 property 5.
func TestInputQueueStrictOrdering(t *testing.T) {
	r := NewRegistry(0)
	h, err := r.RegisterInput("in1", "double", "")
	require.NoError(t, err)
	src := newHandle(1, 1)
	require.NoError(t, r.AddSource(h, src, "A/pub1", "double", ""))

	in, _ := r.Input(h)
	require.NoError(t, in.Deliver(src, fedid.TimeIteration{Time: 0}, []byte{1}))
	require.NoError(t, in.Deliver(src, fedid.TimeIteration{Time: 1}, []byte{2}))
	err = in.Deliver(src, fedid.TimeIteration{Time: 0}, []byte{3})
	require.Error(t, err)
}

func TestInputPriorityOrdersPopReady(t *testing.T) {
	r := NewRegistry(0)
	h, _ := r.RegisterInput("in1", "double", "")
	in, _ := r.Input(h)

	low := newHandle(1, 1)
	high := newHandle(2, 1)
	require.NoError(t, in.AddSource(low, "A/low", "double", ""))
	require.NoError(t, in.AddSource(high, "B/high", "double", ""))
	in.SetPriority(high)

	require.NoError(t, in.Deliver(low, fedid.TimeIteration{Time: 0}, []byte("low")))
	require.NoError(t, in.Deliver(high, fedid.TimeIteration{Time: 0}, []byte("high")))

	got := in.PopReady(fedid.TimeIteration{Time: 0})
	require.Len(t, got, 2)
	require.Equal(t, []byte("high"), got[0].bytes)
	require.Equal(t, []byte("low"), got[1].bytes)
}

// TestEndpointOrderingNonDecreasingTime is spec.md §8 property 4.
func TestEndpointOrderingNonDecreasingTime(t *testing.T) {
	r := NewRegistry(0)
	h, err := r.RegisterEndpoint("ep1", "default")
	require.NoError(t, err)
	e, _ := r.Endpoint(h)

	e.Enqueue(Message{Time: 5, OriginalSource: "B"})
	e.Enqueue(Message{Time: 1, OriginalSource: "A"})
	e.Enqueue(Message{Time: 3, OriginalSource: "C"})

	var last fedid.Time = -1
	for {
		m, ok := e.Front()
		if !ok {
			break
		}
		require.GreaterOrEqual(t, m.Time, last)
		last = m.Time
		e.PopUpTo(m.Time)
	}
}

func TestEndpointPopUpToRespectsGrantedTime(t *testing.T) {
	r := NewRegistry(0)
	h, _ := r.RegisterEndpoint("ep1", "default")
	e, _ := r.Endpoint(h)

	e.Enqueue(Message{Time: 1})
	e.Enqueue(Message{Time: 2})
	e.Enqueue(Message{Time: 4})

	got := e.PopUpTo(2)
	require.Len(t, got, 2)
	require.True(t, e.HasPendingMessage())
}

func TestCheckInterfacesForIssuesRequiredConnectionMissing(t *testing.T) {
	r := NewRegistry(0)
	h, err := r.RegisterPublication("p1", "double", "")
	require.NoError(t, err)
	require.NoError(t, r.SetProperty(KindPublication, h, ConnectionRequired, 0, true))

	issues := r.CheckInterfacesForIssues()
	require.Len(t, issues, 1)
	require.Equal(t, IssueRequiredConnectionMissing, issues[0].Code)
	require.Len(t, r.Diagnostics.Recent(), 1)
}

func TestFilterCloningOperatorEmitsExtra(t *testing.T) {
	f := NewFilter(0, "f1", FilterSource, "default", "default")
	f.SetOperator(CloningOperator(func(m Message) []Message {
		return []Message{{Time: m.Time, Payload: []byte("clone")}}
	}))

	out := f.Apply(Message{Time: 1, Payload: []byte("orig")})
	require.Len(t, out, 2)
	require.Equal(t, MessageFlagCloned, out[1].Flags)
}

func TestFilterConditionalDropOperator(t *testing.T) {
	f := NewFilter(0, "f1", FilterSource, "default", "default")
	f.SetOperator(ConditionalDropOperator(func(m Message) bool { return len(m.Payload) > 0 }))

	require.Len(t, f.Apply(Message{Payload: nil}), 0)
	require.Len(t, f.Apply(Message{Payload: []byte{1}}), 1)
}

func TestCompatibleWildcardsAndCoercion(t *testing.T) {
	require.True(t, compatible("any", "double", false))
	require.True(t, compatible("double", "double", true))
	require.True(t, compatible("double", "int64", false))
	require.False(t, compatible("double", "int64", true))
	require.False(t, compatible("double", "string", true))
}
