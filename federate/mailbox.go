// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"sync"
	"time"

	"github.com/helics/core/action"
)

// Mailbox is the thread-safe MPSC queue a FederateState drains from
// its single processing loop (spec.md §4.4: "accepting ActionMessage
// by value"). Multiple producers — other federates, the core hub, a
// transport reader thread — call Push concurrently; exactly one
// consumer (the FederateState's own processing path) calls Pop.
type Mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []action.Message
	closed  bool
}

// NewMailbox builds an empty Mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Push enqueues msg, waking any blocked Pop caller.
func (m *Mailbox) Push(msg action.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.queue = append(m.queue, msg)
	m.cond.Signal()
}

// Pop blocks until a message is available or the mailbox is closed.
// ok is false only when the mailbox is closed and drained.
func (m *Mailbox) Pop() (msg action.Message, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return action.Message{}, false
	}
	msg = m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}

// TryPop returns immediately: the next message if any, or ok=false
// without blocking. Used by State.drainMailbox.
func (m *Mailbox) TryPop() (msg action.Message, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return action.Message{}, false
	}
	msg = m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}

// PopTimeout blocks for up to d waiting for a message. timedOut is
// true if d elapsed first; ok is false with timedOut false when the
// mailbox is closed and drained. A timer wakes the wait at the
// deadline, so no message is taken after PopTimeout has returned.
func (m *Mailbox) PopTimeout(d time.Duration) (msg action.Message, ok bool, timedOut bool) {
	deadline := time.Now().Add(d)
	timer := time.AfterFunc(d, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed && time.Now().Before(deadline) {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return action.Message{}, false, !m.closed
	}
	msg, m.queue = m.queue[0], m.queue[1:]
	return msg, true, false
}

// Len reports the current queue depth.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close marks the mailbox closed and wakes any blocked Pop callers.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
}
