// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
)

func TestMailboxPushPopOrder(t *testing.T) {
	m := NewMailbox()
	m.Push(action.Message{Action: action.CmdPub, Counter: 1})
	m.Push(action.Message{Action: action.CmdPub, Counter: 2})

	msg, ok := m.Pop()
	require.True(t, ok)
	require.Equal(t, fedid.Iteration(1), msg.Counter)

	msg, ok = m.Pop()
	require.True(t, ok)
	require.Equal(t, fedid.Iteration(2), msg.Counter)
}

func TestMailboxPopBlocksUntilPush(t *testing.T) {
	m := NewMailbox()
	done := make(chan action.Message, 1)
	go func() {
		msg, ok := m.Pop()
		require.True(t, ok)
		done <- msg
	}()

	time.Sleep(20 * time.Millisecond)
	m.Push(action.Message{Action: action.CmdStop})

	select {
	case msg := <-done:
		require.Equal(t, action.CmdStop, msg.Action)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push")
	}
}

func TestMailboxCloseUnblocksPop(t *testing.T) {
	m := NewMailbox()
	done := make(chan bool, 1)
	go func() {
		_, ok := m.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	m.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
}

func TestMailboxPopTimeoutExpires(t *testing.T) {
	m := NewMailbox()
	_, ok, timedOut := m.PopTimeout(20 * time.Millisecond)
	require.False(t, ok)
	require.True(t, timedOut)
}

func TestMailboxPopTimeoutReceivesMessage(t *testing.T) {
	m := NewMailbox()
	m.Push(action.Message{Action: action.CmdStop})
	msg, ok, timedOut := m.PopTimeout(time.Second)
	require.True(t, ok)
	require.False(t, timedOut)
	require.Equal(t, action.CmdStop, msg.Action)
}

func TestMailboxTryPopNonBlocking(t *testing.T) {
	m := NewMailbox()
	_, ok := m.TryPop()
	require.False(t, ok)

	m.Push(action.Message{Action: action.CmdPub})
	msg, ok := m.TryPop()
	require.True(t, ok)
	require.Equal(t, action.CmdPub, msg.Action)
	require.Equal(t, 0, m.Len())
}
