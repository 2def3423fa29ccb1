// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package inproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendDeliversToRegisteredRoute(t *testing.T) {
	hub := NewHub()
	a, err := New(hub, 1)
	require.NoError(t, err)
	b, err := New(hub, 2)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Send(2, []byte("hello")))

	select {
	case msg := <-b.Recv():
		require.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("b never received a's message")
	}
}

func TestSendToUnknownRouteErrors(t *testing.T) {
	hub := NewHub()
	a, err := New(hub, 1)
	require.NoError(t, err)
	defer a.Close()

	err = a.Send(99, []byte("x"))
	require.Error(t, err)
}

func TestBroadcastReachesAllButSelf(t *testing.T) {
	hub := NewHub()
	a, err := New(hub, 1)
	require.NoError(t, err)
	b, err := New(hub, 2)
	require.NoError(t, err)
	c, err := New(hub, 3)
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()
	defer c.Close()

	require.NoError(t, a.Broadcast([]byte("all")))

	for _, rx := range []*Transport{b, c} {
		select {
		case msg := <-rx.Recv():
			require.Equal(t, "all", string(msg))
		case <-time.After(time.Second):
			t.Fatal("peer never received broadcast")
		}
	}

	select {
	case msg := <-a.Recv():
		t.Fatalf("broadcaster received its own message: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegisterSameRouteTwiceFails(t *testing.T) {
	hub := NewHub()
	a, err := New(hub, 1)
	require.NoError(t, err)
	defer a.Close()

	_, err = New(hub, 1)
	require.Error(t, err)
}

func TestCloseUnregistersAndStopsRecv(t *testing.T) {
	hub := NewHub()
	a, err := New(hub, 1)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	b, err := New(hub, 1)
	require.NoError(t, err)
	defer b.Close()
}
