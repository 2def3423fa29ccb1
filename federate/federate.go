// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package federate implements the FederateState component of
// SPEC_FULL.md §4.4: the per-federate state machine, mailbox, and
// blocking/async user-facing API, composed from an interfaces.Registry
// and a timecoord.Coordinator.
package federate

import (
	"sync"
	"sync/atomic"
	"time"

	luxlog "github.com/luxfi/log"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
	"github.com/helics/core/interfaces"
	hlog "github.com/helics/core/log"
	"github.com/helics/core/timecoord"
)

// OutboundSink hands an ActionMessage to whatever routes it onward —
// ordinarily CoordinatorCore. A standalone federate under test leaves
// it nil and the message is simply dropped.
type OutboundSink func(action.Message)

// State is the per-federate state machine, mailbox, and user-facing
// API of spec.md §4.4, composed from an interfaces.Registry and a
// timecoord.Coordinator the way the teacher's engine/core/state.go
// machine composes a validator set and a poll tracker.
type State struct {
	mu sync.Mutex

	self  fedid.GlobalFederateId
	local fedid.FederateId
	log   luxlog.Logger

	registry *interfaces.Registry
	coord    *timecoord.Coordinator
	mailbox  *Mailbox

	send OutboundSink

	phase     Phase
	lastError error

	grantedTime fedid.Time
	iteration   fedid.Iteration

	startClock time.Time

	// busy is the single-processing-loop test-and-set guard (spec.md
	// §5: "exactly one thread may execute inside a FederateState's
	// processing loop at any moment; others wait ... (short backoff,
	// ~50 ms) or use the async split API").
	busy atomic.Bool

	// asyncPending enforces "exactly one outstanding async call" per
	// federate; a second Async call while one is in flight is an
	// InvalidFunctionCall.
	asyncPending atomic.Bool
}

// New builds a State in phase CREATED.
func New(self fedid.GlobalFederateId, local fedid.FederateId, registry *interfaces.Registry, coord *timecoord.Coordinator, logger luxlog.Logger) *State {
	if logger == nil {
		logger = hlog.NewNoOpLogger()
	}
	return &State{
		self:        self,
		local:       local,
		registry:    registry,
		coord:       coord,
		mailbox:     NewMailbox(),
		log:         logger,
		phase:       Created,
		grantedTime: -1,
		startClock:  time.Time{},
	}
}

// SetOutboundSink wires (or rewires) where dispatched messages go.
func (s *State) SetOutboundSink(sink OutboundSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = sink
}

// Self reports this federate's globally assigned id.
func (s *State) Self() fedid.GlobalFederateId { return s.self }

// Mailbox exposes the inbound queue for a transport reader thread or
// a CoordinatorCore router to push into.
func (s *State) Mailbox() *Mailbox { return s.mailbox }

// Registry exposes the owned InterfaceRegistry for registration calls
// made while still in CREATED.
func (s *State) Registry() *interfaces.Registry { return s.registry }

// Coordinator exposes the owned TimeCoordinator, for CoordinatorCore's
// "dependencies"/"dependents" query keys.
func (s *State) Coordinator() *timecoord.Coordinator { return s.coord }

// Iteration reports the current request's iteration count, for
// CoordinatorCore's "current_time" query family
// (original_source's FederateState::getCurrentIteration).
func (s *State) Iteration() fedid.Iteration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iteration
}

// QueueDepth reports the number of undelivered ActionMessages waiting
// in this federate's mailbox, for CoordinatorCore's query family
// (original_source's FederateState::getQueueSize).
func (s *State) QueueDepth() int {
	return s.mailbox.Len()
}

// Phase reports the current lifecycle state.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LastError reports the most recent recorded failure, or nil.
func (s *State) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// GrantedTime reports the highest time this federate has been
// authorized to advance to.
func (s *State) GrantedTime() fedid.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grantedTime
}

// transition and fail lock mu themselves: dispatch runs under the
// processing-loop guard (single writer), but Phase()/LastError() are
// read from other goroutines and must see a consistent value.

func (s *State) transition(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.canTransitionTo(next) {
		return herrors.InvalidFunctionCall("federate %s: cannot transition %s -> %s", s.self, s.phase, next)
	}
	s.phase = next
	return nil
}

// fail records err and moves to ERROR unconditionally — callers use
// this only for federation-wide problems (spec.md §7 propagation
// policy), never for an ordinary rejected call.
func (s *State) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Errored
	s.lastError = err
}

func (s *State) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *State) setGrantedTime(t fedid.Time) {
	s.mu.Lock()
	s.grantedTime = t
	s.mu.Unlock()
}

func (s *State) currentPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// acquire implements the single-processing-loop test-and-set guard;
// callers must call release via defer.
func (s *State) acquire() {
	for !s.busy.CompareAndSwap(false, true) {
		time.Sleep(50 * time.Millisecond)
	}
}

func (s *State) release() { s.busy.Store(false) }

// emit hands msg to the outbound sink if one is wired.
func (s *State) emit(msg action.Message) {
	s.mu.Lock()
	sink := s.send
	s.mu.Unlock()
	if sink != nil {
		sink(msg)
	}
}

// drainMailbox applies every message currently queued without
// blocking — used after a local state change to pick up anything a
// concurrent producer already pushed.
func (s *State) drainMailbox() {
	for {
		msg, ok := s.mailbox.TryPop()
		if !ok {
			return
		}
		s.dispatch(msg)
	}
}

// dispatch applies one inbound ActionMessage (spec.md §4.4's
// action-code table). Only called with acquire() held.
func (s *State) dispatch(msg action.Message) {
	switch msg.Action {
	case action.CmdPub:
		s.dispatchPub(msg)
	case action.CmdSendMessage:
		s.dispatchSendMessage(msg)
	case action.CmdAddPublisher, action.CmdAddSubscriber, action.CmdAddDependency, action.CmdAddEndpoint, action.CmdAddFilter:
		s.dispatchAddInterface(msg)
	case action.CmdTimeGrant, action.CmdTimeCheck:
		s.dispatchTimeMessage(msg)
	case action.CmdForceTimeGrant:
		s.dispatchForceTimeGrant(msg)
	case action.CmdFedAck:
		s.dispatchFedAck(msg)
	case action.CmdInitGrant:
		_ = s.transition(Initializing)
	case action.CmdExecGrant:
		_ = s.transition(Executing)
	case action.CmdError:
		s.fail(herrors.FunctionExecutionFailure("federate %s received CMD_ERROR from %s: %s", s.self, msg.Source(), firstAux(msg)))
	case action.CmdStop, action.CmdDisconnect:
		if p := s.currentPhase(); !p.Terminal() {
			s.setPhase(Finished)
		}
		s.mailbox.Close()
	default:
		s.log.Warn("federate received unhandled action", "action", msg.Action.String(), "federate", s.self.String())
	}
}

func (s *State) dispatchFedAck(msg action.Message) {
	if msg.Flags&action.FlagError != 0 {
		s.fail(herrors.RegistrationFailure("federate %s registration rejected: %s", s.self, firstAux(msg)))
		return
	}
	_ = s.transition(Initializing)
}

// dispatchPub delivers a published value to the matching input's
// source queue (spec.md §4.4: "look up input by dest handle; validate
// source; append to the matching source queue").
func (s *State) dispatchPub(msg action.Message) {
	in, ok := s.registry.Input(msg.DestHandle)
	if !ok {
		s.log.Warn("CMD_PUB to unknown input handle", "handle", msg.DestHandle.String())
		return
	}
	key := fedid.TimeIteration{Time: msg.Time, Iteration: msg.Counter}
	if err := in.Deliver(msg.Source(), key, msg.Payload); err != nil {
		s.log.Warn("CMD_PUB delivery rejected", "error", err.Error())
	}
}

// dispatchSendMessage inserts an inbound endpoint message into the
// matching endpoint's deque (spec.md §4.4), after running it through
// any destination filters registered against the target endpoint.
func (s *State) dispatchSendMessage(msg action.Message) {
	ep, ok := s.registry.Endpoint(msg.DestHandle)
	if !ok {
		s.log.Warn("CMD_SEND_MESSAGE to unknown endpoint handle", "handle", msg.DestHandle.String())
		return
	}
	m := interfaces.Message{
		Time:                msg.Time,
		Counter:             msg.Counter,
		Payload:             msg.Payload,
		Source:              auxAt(msg, 0),
		Destination:         auxAt(msg, 1),
		OriginalSource:      auxOr(msg, 2, auxAt(msg, 0)),
		OriginalDestination: auxOr(msg, 3, auxAt(msg, 1)),
	}

	out := []interfaces.Message{m}
	for _, f := range s.registry.FiltersFor(msg.DestHandle, interfaces.FilterDestination) {
		var next []interfaces.Message
		for _, in := range out {
			next = append(next, f.Apply(in)...)
		}
		out = next
	}
	for _, delivered := range out {
		ep.Enqueue(delivered)
	}
}

// dispatchAddInterface applies a registration reply that arrived from
// the parent core after global matching (spec.md §4.5: "replies come
// back as CMD_ADD_PUBLISHER / CMD_ADD_SUBSCRIBER targeted at the
// local federate").
func (s *State) dispatchAddInterface(msg action.Message) {
	var err error
	switch msg.Action {
	case action.CmdAddPublisher:
		// An input now has a new publisher: the dest handle is our
		// input, the source identifies the publication feeding it.
		err = s.registry.AddSource(msg.DestHandle, msg.Source(), auxAt(msg, 0), auxAt(msg, 1), auxAt(msg, 2))
	case action.CmdAddSubscriber:
		// A publisher now has a new subscriber: the dest handle is our
		// publication, the source identifies the subscribing input.
		err = s.registry.AddDestination(msg.DestHandle, msg.Source())
	case action.CmdAddDependency:
		s.coord.AddDependency(msg.SourceId)
		s.coord.AddDependent(msg.SourceId)
	case action.CmdAddEndpoint:
		if ep, ok := s.registry.Endpoint(msg.DestHandle); ok {
			ep.AddTarget(msg.Source())
		}
	case action.CmdAddFilter:
		if f, ok := s.registry.Filter(auxAt(msg, 0)); ok {
			f.AddTarget(msg.Source())
		}
	}
	if err != nil {
		s.log.Warn("interface registration reply rejected", "action", msg.Action.String(), "error", err.Error())
	}
}

func firstAux(msg action.Message) string { return auxAt(msg, 0) }

func auxAt(msg action.Message, i int) string {
	if i < len(msg.Aux) {
		return msg.Aux[i]
	}
	return ""
}

func auxOr(msg action.Message, i int, fallback string) string {
	if v := auxAt(msg, i); v != "" {
		return v
	}
	return fallback
}
