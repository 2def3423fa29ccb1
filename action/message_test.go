// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helics/core/fedid"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	m := Message{
		Action:       CmdTimeRequest,
		Flags:        FlagIterating | FlagRequired,
		Counter:      3,
		Time:         42.5,
		SourceId:     1,
		SourceHandle: 2,
		DestId:       3,
		DestHandle:   4,
		Payload:      []byte("hello"),
		Aux:          []string{"A/pub1", "B/in1"},
	}

	buf := Pack(m)
	require.GreaterOrEqual(t, len(buf), headerSize)

	got, err := Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestPackUnpackEmptyPayloadAndAux(t *testing.T) {
	m := Message{Action: CmdStop, SourceId: 1, DestId: 2}
	buf := Pack(m)
	got, err := Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, CmdStop, got.Action)
	require.Empty(t, got.Payload)
	require.Empty(t, got.Aux)
}

func TestUnpackTruncatedHeaderErrors(t *testing.T) {
	_, err := Unpack([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestUnpackTruncatedPayloadErrors(t *testing.T) {
	buf := Pack(Message{Action: CmdPub, Payload: []byte("payload")})
	_, err := Unpack(buf[:headerSize+1])
	require.Error(t, err)
}

func TestMessageSourceDestHandles(t *testing.T) {
	m := Message{SourceId: 7, SourceHandle: 8, DestId: 9, DestHandle: 10}
	require.Equal(t, fedid.GlobalHandle{Federate: 7, Interface: 8}, m.Source())
	require.Equal(t, fedid.GlobalHandle{Federate: 9, Interface: 10}, m.Dest())
}
