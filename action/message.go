// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package action

import (
	"encoding/binary"
	"math"

	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
	"github.com/helics/core/utils/wrappers"
)

// headerSize is the fixed 32-byte ActionMessage header (spec.md §6):
// action:4, flags:2, counter:2, time:8, source_id:4, source_handle:4,
// dest_id:4, dest_handle:4.
const headerSize = 32

// Message is the universal intra-core command record (spec.md §3):
// created by a federate or received from transport, moved into a
// destination queue, consumed exactly once.
type Message struct {
	Action Code
	Flags  Flag
	Counter fedid.Iteration
	Time   fedid.Time

	SourceId     fedid.GlobalFederateId
	SourceHandle fedid.InterfaceHandle
	DestId       fedid.GlobalFederateId
	DestHandle   fedid.InterfaceHandle

	Payload []byte
	Aux     []string
}

// Pack serializes m to its wire form: 32-byte header, varint-prefixed
// payload, varint count of length-prefixed auxiliary strings.
func Pack(m Message) []byte {
	p := wrappers.NewPacker(headerSize + len(m.Payload) + 16)
	p.PackInt(uint32(m.Action))
	p.PackBytes(uint16Bytes(uint16(m.Flags)))
	p.PackBytes(uint16Bytes(uint16(m.Counter)))
	p.PackLong(math.Float64bits(float64(m.Time)))
	p.PackInt(uint32(m.SourceId))
	p.PackInt(uint32(m.SourceHandle))
	p.PackInt(uint32(m.DestId))
	p.PackInt(uint32(m.DestHandle))

	var varintBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(varintBuf[:], uint64(len(m.Payload)))
	p.PackBytes(varintBuf[:n])
	p.PackBytes(m.Payload)

	n = binary.PutUvarint(varintBuf[:], uint64(len(m.Aux)))
	p.PackBytes(varintBuf[:n])
	for _, s := range m.Aux {
		n = binary.PutUvarint(varintBuf[:], uint64(len(s)))
		p.PackBytes(varintBuf[:n])
		p.PackBytes([]byte(s))
	}
	return p.Bytes
}

func uint16Bytes(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// Unpack parses buf produced by Pack.
func Unpack(buf []byte) (Message, error) {
	if len(buf) < headerSize {
		return Message{}, herrors.InvalidParameter("action message shorter than %d-byte header (got %d)", headerSize, len(buf))
	}
	u := wrappers.NewUnpacker(buf)
	var m Message
	m.Action = Code(u.UnpackInt())
	flagBytes := u.UnpackBytes(2)
	counterBytes := u.UnpackBytes(2)
	m.Time = fedid.Time(math.Float64frombits(u.UnpackLong()))
	m.SourceId = fedid.GlobalFederateId(u.UnpackInt())
	m.SourceHandle = fedid.InterfaceHandle(u.UnpackInt())
	m.DestId = fedid.GlobalFederateId(u.UnpackInt())
	m.DestHandle = fedid.InterfaceHandle(u.UnpackInt())
	if u.Err != nil {
		return Message{}, herrors.InvalidParameter("action message header truncated: %v", u.Err)
	}
	m.Flags = Flag(uint16(flagBytes[0])<<8 | uint16(flagBytes[1]))
	m.Counter = fedid.Iteration(uint16(counterBytes[0])<<8 | uint16(counterBytes[1]))

	rest := buf[headerSize:]
	payloadLen, n := binary.Uvarint(rest)
	if n <= 0 {
		return Message{}, herrors.InvalidParameter("action message: malformed payload length varint")
	}
	rest = rest[n:]
	if uint64(len(rest)) < payloadLen {
		return Message{}, herrors.InvalidParameter("action message: payload truncated")
	}
	m.Payload = append([]byte(nil), rest[:payloadLen]...)
	rest = rest[payloadLen:]

	auxCount, n := binary.Uvarint(rest)
	if n <= 0 {
		return Message{}, herrors.InvalidParameter("action message: malformed aux count varint")
	}
	rest = rest[n:]
	m.Aux = make([]string, 0, auxCount)
	for i := uint64(0); i < auxCount; i++ {
		strLen, n := binary.Uvarint(rest)
		if n <= 0 {
			return Message{}, herrors.InvalidParameter("action message: malformed aux string length varint")
		}
		rest = rest[n:]
		if uint64(len(rest)) < strLen {
			return Message{}, herrors.InvalidParameter("action message: aux string %d truncated", i)
		}
		m.Aux = append(m.Aux, string(rest[:strLen]))
		rest = rest[strLen:]
	}
	return m, nil
}

// Source reports the message's source as a GlobalHandle.
func (m Message) Source() fedid.GlobalHandle {
	return fedid.GlobalHandle{Federate: m.SourceId, Interface: m.SourceHandle}
}

// Dest reports the message's destination as a GlobalHandle.
func (m Message) Dest() fedid.GlobalHandle {
	return fedid.GlobalHandle{Federate: m.DestId, Interface: m.DestHandle}
}
