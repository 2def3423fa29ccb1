// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import "github.com/helics/core/fedid"

// Translator is simultaneously a publication, an input, and an
// endpoint: it converts between the value channel and the message
// channel (spec.md §3). It composes the three rather than
// re-implementing their bookkeeping.
type Translator struct {
	Handle fedid.InterfaceHandle
	Key    string

	Pub *Publication
	In  *Input
	Ep  *Endpoint

	// ToMessage converts a value publication into a message payload
	// when relaying value -> message channel.
	ToMessage func(valueBytes []byte) []byte
	// ToValue converts a received message's payload into value bytes
	// when relaying message -> value channel.
	ToValue func(msg Message) []byte
}

// NewTranslator builds the three backing interfaces under one handle
// namespace; handles must already be distinct per-table allocations
// from the owning Registry.
func NewTranslator(handle fedid.InterfaceHandle, key string, pubHandle, inHandle, epHandle fedid.InterfaceHandle, typ string) *Translator {
	return &Translator{
		Handle: handle,
		Key:    key,
		Pub:    NewPublication(pubHandle, key, typ, ""),
		In:     NewInput(inHandle, key, typ, ""),
		Ep:     NewEndpoint(epHandle, key, typ),
	}
}

func (t *Translator) Kind() Kind { return KindTranslator }

// RelayToMessage turns the translator's publication bytes into an
// outgoing message on its endpoint.
func (t *Translator) RelayToMessage(valueBytes []byte, source, destination string) Message {
	payload := valueBytes
	if t.ToMessage != nil {
		payload = t.ToMessage(valueBytes)
	}
	return Message{Payload: payload, Source: source, Destination: destination, OriginalSource: source, OriginalDestination: destination}
}

// RelayToValue turns a received message into value bytes delivered on
// the translator's input.
func (t *Translator) RelayToValue(m Message) []byte {
	if t.ToValue != nil {
		return t.ToValue(m)
	}
	return m.Payload
}
