// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import "github.com/helics/core/fedid"

// FilterOperator transforms a message in flight. It returns the set of
// messages to actually deliver (zero for a drop, one for identity/
// time-shift/payload rewrite, more than one for a cloning or
// generating filter) (spec.md §3).
type FilterOperator func(Message) []Message

// IdentityOperator passes the message through unchanged.
func IdentityOperator(m Message) []Message { return []Message{m} }

// TimeShiftOperator returns an operator that adds delta to every
// message's Time.
func TimeShiftOperator(delta fedid.Time) FilterOperator {
	return func(m Message) []Message {
		m.Time += delta
		return []Message{m}
	}
}

// PayloadOperator returns an operator that replaces a message's
// payload via fn, leaving routing fields untouched.
func PayloadOperator(fn func([]byte) []byte) FilterOperator {
	return func(m Message) []Message {
		m.Payload = fn(m.Payload)
		return []Message{m}
	}
}

// ConditionalDropOperator returns an operator that drops a message
// when keep returns false.
func ConditionalDropOperator(keep func(Message) bool) FilterOperator {
	return func(m Message) []Message {
		if keep(m) {
			return []Message{m}
		}
		return nil
	}
}

// CloningOperator returns an operator that delivers the original
// message plus one clone per entry produced by extra.
func CloningOperator(extra func(Message) []Message) FilterOperator {
	return func(m Message) []Message {
		out := []Message{m}
		for _, c := range extra(m) {
			c.Flags |= MessageFlagCloned
			out = append(out, c)
		}
		return out
	}
}

// GeneratingOperator returns an operator that fabricates entirely new
// messages instead of passing the input through.
func GeneratingOperator(generate func(Message) []Message) FilterOperator {
	return func(m Message) []Message {
		out := generate(m)
		for i := range out {
			out[i].Flags |= MessageFlagGenerated
		}
		return out
	}
}

// Filter sits on an endpoint's source or destination path (spec.md §3).
type Filter struct {
	Handle fedid.InterfaceHandle
	Key    string
	Side   FilterSide

	InputType  string
	OutputType string

	targets  []fedid.GlobalHandle
	operator FilterOperator
}

// NewFilter constructs a Filter with the identity operator by default.
func NewFilter(handle fedid.InterfaceHandle, key string, side FilterSide, inType, outType string) *Filter {
	return &Filter{Handle: handle, Key: key, Side: side, InputType: inType, OutputType: outType, operator: IdentityOperator}
}

func (f *Filter) Kind() Kind { return KindFilter }

// SetOperator installs the transform this filter applies.
func (f *Filter) SetOperator(op FilterOperator) {
	if op == nil {
		op = IdentityOperator
	}
	f.operator = op
}

// AddTarget attaches an endpoint this filter applies to, idempotent on re-add.
func (f *Filter) AddTarget(g fedid.GlobalHandle) {
	for _, t := range f.targets {
		if t == g {
			return
		}
	}
	f.targets = append(f.targets, g)
}

// Targets returns the endpoints this filter applies to.
func (f *Filter) Targets() []fedid.GlobalHandle {
	out := make([]fedid.GlobalHandle, len(f.targets))
	copy(out, f.targets)
	return out
}

// Apply runs the filter's operator over m.
func (f *Filter) Apply(m Message) []Message {
	return f.operator(m)
}
