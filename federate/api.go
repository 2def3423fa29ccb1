// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"time"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
	"github.com/helics/core/timecoord"
)

// waitPollInterval is how often a blocking wait re-examines the
// mailbox for a grant-timeout tick, matching the ~50ms cadence of the
// processing-loop backoff (spec.md §5).
const waitPollInterval = 50 * time.Millisecond

// TimeGrant is the result of a requestTime round: the granted time,
// the coordinator's verdict, and the event vector of inputs whose
// newest record counts as a change (spec.md §4.4).
type TimeGrant struct {
	Time   fedid.Time
	Result timecoord.GrantResult
	Events []fedid.InterfaceHandle
}

// EnterInitializingMode moves CREATED -> INITIALIZING, closing
// interface registration and, if an outbound sink is wired, sending
// CMD_REG_FED through it and blocking on the CMD_FED_ACK (spec.md §4.5).
func (s *State) EnterInitializingMode() error {
	s.acquire()
	defer s.release()

	if p := s.currentPhase(); p != Created {
		return herrors.InvalidFunctionCall("enterInitializingMode: federate %s is %s, not CREATED", s.self, p)
	}
	s.registry.FinishRegistration()

	s.mu.Lock()
	sink := s.send
	s.mu.Unlock()
	if sink == nil {
		return s.transition(Initializing)
	}

	s.emit(action.Message{Action: action.CmdRegFed, SourceId: s.self})
	for {
		msg, ok := s.mailbox.Pop()
		if !ok {
			return herrors.FunctionExecutionFailure("federate %s: mailbox closed before CMD_FED_ACK", s.self)
		}
		s.dispatch(msg)
		switch s.currentPhase() {
		case Initializing:
			return nil
		case Errored:
			return s.LastError()
		}
	}
}

// EnterExecutingMode makes one implicit time-zero request. On NEXT_STEP
// it moves INITIALIZING -> EXECUTING; on ITERATING the federate stays
// INITIALIZING and the caller calls it again (spec.md §8 S2).
func (s *State) EnterExecutingMode(iterate IterationRequest) (timecoord.GrantResult, error) {
	s.acquire()
	defer s.release()

	if p := s.currentPhase(); p != Initializing {
		return timecoord.Errored, herrors.InvalidFunctionCall("enterExecutingMode: federate %s is %s, not INITIALIZING", s.self, p)
	}

	grant, err := s.requestTimeLocked(0, iterate)
	if err != nil {
		return grant.Result, err
	}
	if grant.Result != timecoord.Iterating {
		if err := s.transition(Executing); err != nil {
			return grant.Result, err
		}
	}
	return grant.Result, nil
}

// RequestTime blocks until the coordinator grants a time >= treq (or
// reports ITERATING at treq, or the federate errors/halts).
func (s *State) RequestTime(treq fedid.Time, iterate IterationRequest) (TimeGrant, error) {
	s.acquire()
	defer s.release()

	if p := s.currentPhase(); p != Executing {
		return TimeGrant{Time: s.GrantedTime(), Result: timecoord.Errored}, herrors.InvalidFunctionCall("requestTime: federate %s is %s, not EXECUTING", s.self, p)
	}
	return s.requestTimeLocked(treq, iterate)
}

// requestTimeLocked is the shared implementation behind RequestTime
// and EnterExecutingMode's implicit request. Callers must already
// hold the processing-loop guard (acquire()).
func (s *State) requestTimeLocked(treq fedid.Time, iterate IterationRequest) (TimeGrant, error) {
	now := time.Now()
	s.mu.Lock()
	if s.startClock.IsZero() {
		s.startClock = now
	}
	s.mu.Unlock()

	s.coord.BeginWait(now)

	for {
		// Pick up anything already pushed before judging inputsChanged:
		// on an iterating round that resolves without blocking, nothing
		// else drains the mailbox between publish and the next request.
		s.drainMailbox()
		s.coord.DrainDelayed()
		inputsChanged := iterate == ForceIteration || s.anyInputChanged(treq)
		granted, result, outbound := s.coord.RequestTime(treq, iterate.wantsIteration(), inputsChanged)
		for _, tm := range outbound {
			flags := action.Flag(0)
			if tm.Iterating {
				flags |= action.FlagIterating
			}
			s.emit(action.Message{Action: action.CmdTimeGrant, SourceId: s.self, DestId: tm.To, Time: tm.NextEvent, Flags: flags})
		}

		if result == timecoord.Iterating {
			s.coord.EndWait()
			s.setGrantedTime(granted)
			s.iteration++
			return TimeGrant{Time: granted, Result: result}, nil
		}
		if granted >= treq {
			s.coord.EndWait()
			s.setGrantedTime(granted)
			events := s.computeEvents(granted, s.iteration, requestedEventsMode)
			s.iteration = 0
			return TimeGrant{Time: granted, Result: result, Events: events}, nil
		}

		// Not yet final: the bound is still held back by a dependency
		// that hasn't reported far enough. Wait for more mailbox
		// traffic, periodically checking the grant-timeout escalation.
		msg, ok, timedOut := s.mailbox.PopTimeout(waitPollInterval)
		if timedOut {
			if stage, _, force := s.coord.CheckGrantTimeout(time.Now()); force {
				s.fail(herrors.FunctionExecutionFailure("federate %s: grant timeout stage %d forced disconnect", s.self, stage))
				return TimeGrant{Time: s.GrantedTime(), Result: timecoord.Errored}, s.LastError()
			}
			continue
		}
		if !ok {
			return TimeGrant{Time: s.GrantedTime(), Result: timecoord.Halted}, nil
		}
		s.dispatch(msg)
		if s.currentPhase() == Errored {
			return TimeGrant{Time: s.GrantedTime(), Result: timecoord.Errored}, s.LastError()
		}
		s.drainMailbox()
	}
}

// Finalize is the only cooperative cancellation primitive: always
// safe, idempotent after the first call (spec.md §5).
func (s *State) Finalize() error {
	s.acquire()
	defer s.release()

	if s.currentPhase().Terminal() {
		return nil
	}
	s.emit(action.Message{Action: action.CmdDisconnect, SourceId: s.self})
	s.setPhase(Finished)
	s.mailbox.Close()
	return nil
}

// --- Async split API (spec.md §9: future-returning at the boundary) ---

func (s *State) beginAsync() error {
	if !s.asyncPending.CompareAndSwap(false, true) {
		return herrors.InvalidFunctionCall("federate %s already has an outstanding async call", s.self)
	}
	return nil
}

// EnterInitializingModeAsync starts EnterInitializingMode on the
// federate's processing loop and returns a Future for the result.
func (s *State) EnterInitializingModeAsync() (*Future[struct{}], error) {
	if err := s.beginAsync(); err != nil {
		return nil, err
	}
	fut := newFuture[struct{}]()
	go func() {
		err := s.EnterInitializingMode()
		s.asyncPending.Store(false)
		fut.deliver(struct{}{}, err)
	}()
	return fut, nil
}

// EnterInitializingModeComplete blocks on a Future from
// EnterInitializingModeAsync.
func (s *State) EnterInitializingModeComplete(fut *Future[struct{}]) error {
	_, err := fut.Wait()
	return err
}

// EnterExecutingModeAsync starts EnterExecutingMode asynchronously.
func (s *State) EnterExecutingModeAsync(iterate IterationRequest) (*Future[timecoord.GrantResult], error) {
	if err := s.beginAsync(); err != nil {
		return nil, err
	}
	fut := newFuture[timecoord.GrantResult]()
	go func() {
		result, err := s.EnterExecutingMode(iterate)
		s.asyncPending.Store(false)
		fut.deliver(result, err)
	}()
	return fut, nil
}

// EnterExecutingModeComplete blocks on a Future from
// EnterExecutingModeAsync.
func (s *State) EnterExecutingModeComplete(fut *Future[timecoord.GrantResult]) (timecoord.GrantResult, error) {
	return fut.Wait()
}

// RequestTimeAsync starts RequestTime asynchronously.
func (s *State) RequestTimeAsync(treq fedid.Time, iterate IterationRequest) (*Future[TimeGrant], error) {
	if err := s.beginAsync(); err != nil {
		return nil, err
	}
	fut := newFuture[TimeGrant]()
	go func() {
		grant, err := s.RequestTime(treq, iterate)
		s.asyncPending.Store(false)
		fut.deliver(grant, err)
	}()
	return fut, nil
}

// RequestTimeComplete blocks on a Future from RequestTimeAsync.
func (s *State) RequestTimeComplete(fut *Future[TimeGrant]) (TimeGrant, error) {
	return fut.Wait()
}
