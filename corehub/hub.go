// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package corehub implements CoordinatorCore (spec.md §4.5): the
// process-level hub that multiplexes many FederateStates, routes
// ActionMessages among them and to a parent broker via an abstract
// Transport, performs global registration, enforces disconnect, and
// answers queries.
package corehub

import (
	"sync"
	"sync/atomic"
	"time"

	luxlog "github.com/luxfi/log"

	"github.com/helics/core/action"
	"github.com/helics/core/fedid"
	"github.com/helics/core/federate"
	hlog "github.com/helics/core/log"
	"github.com/helics/core/metrics"
	"github.com/helics/core/transport"
	"github.com/helics/core/utils/linked"
)

// FederateInfo is the registration-time description of a federate,
// passed to registerFederate the way the original's FederateInfo
// struct accompanies CMD_REG_FED.
type FederateInfo struct {
	Name         string
	CoreType     string
	ParentExists bool
}

// ConnectTimeout bounds how long registerFederate waits for CMD_FED_ACK
// before failing (spec.md §4.5: CONNECT_TIMEOUT "drops to error after
// elapsed ticks").
const ConnectTimeout = 5 * time.Second

// Hub is one CoordinatorCore: owner of every local FederateState, the
// global name->id registry, and the parent Transport connection.
//
// Grounded on the teacher's core/router.go dispatch-by-target shape:
// a Hub is a router keyed by GlobalFederateId the same way the
// teacher's router dispatches by NodeID, plus the registration/query
// handshake original_source's CoreBroker.cpp adds on top.
type Hub struct {
	mu sync.RWMutex

	self     fedid.Route
	parent   transport.Transport
	nextFed  atomic.Uint64

	federates     map[fedid.FederateId]*federate.State
	globalOf      map[fedid.FederateId]fedid.GlobalFederateId
	localByGlobal map[fedid.GlobalFederateId]fedid.FederateId
	nameOf        map[fedid.FederateId]string
	localOf       map[string]fedid.FederateId
	globalRegistry *linked.Hashmap[string, fedid.GlobalFederateId]

	pendingAck map[fedid.FederateId]chan action.Message

	log     luxlog.Logger
	metrics *metrics.Metrics

	queryCallback func(target, key string) (string, bool)

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Hub at construction.
type Option func(*Hub)

// WithLogger overrides the no-op default logger.
func WithLogger(l luxlog.Logger) Option { return func(h *Hub) { h.log = l } }

// WithMetrics attaches a prometheus registration point.
func WithMetrics(m *metrics.Metrics) Option { return func(h *Hub) { h.metrics = m } }

// WithQueryCallback installs the fallback handler for queries not
// covered by a well-known key (spec.md §4.5: "fall through to a
// user-registered query callback, else return #invalid").
func WithQueryCallback(cb func(target, key string) (string, bool)) Option {
	return func(h *Hub) { h.queryCallback = cb }
}

// New builds a Hub. parent may be nil, meaning this hub is the root
// broker and registerFederate assigns global ids locally instead of
// asking upstream.
func New(self fedid.Route, parent transport.Transport, opts ...Option) *Hub {
	h := &Hub{
		self:           self,
		parent:         parent,
		federates:      make(map[fedid.FederateId]*federate.State),
		globalOf:       make(map[fedid.FederateId]fedid.GlobalFederateId),
		localByGlobal:  make(map[fedid.GlobalFederateId]fedid.FederateId),
		nameOf:         make(map[fedid.FederateId]string),
		localOf:        make(map[string]fedid.FederateId),
		globalRegistry: linked.NewHashmap[string, fedid.GlobalFederateId](),
		pendingAck:     make(map[fedid.FederateId]chan action.Message),
		log:            hlog.NewNoOpLogger(),
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.parent != nil {
		h.wg.Add(1)
		go h.recvLoop()
	}
	return h
}

// recvLoop drains the parent transport and routes every inbound
// ActionMessage to the local federate it's addressed to, or handles
// it itself when addressed to the hub (CMD_FED_ACK, CMD_QUERY).
func (h *Hub) recvLoop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.stopCh:
			return
		case raw, ok := <-h.parent.Recv():
			if !ok {
				return
			}
			msg, err := action.Unpack(raw)
			if err != nil {
				h.log.Warn("corehub: dropping malformed message from parent", "error", err)
				continue
			}
			h.route(msg)
		}
	}
}

func (h *Hub) route(msg action.Message) {
	switch msg.Action {
	case action.CmdFedAck:
		h.completeAck(fedid.FederateId(msg.DestId), msg)
		return
	case action.CmdQuery:
		h.answerQuery(msg)
		return
	}

	h.mu.RLock()
	local, ok := h.localByGlobal[msg.DestId]
	dest := h.federates[local]
	h.mu.RUnlock()
	if !ok {
		h.log.Warn("corehub: no local federate for inbound message", "dest", msg.DestId, "action", msg.Action)
		return
	}
	dest.Mailbox().Push(msg)
}

// registerFederate reserves name with the parent (or, at the root,
// assigns a global id directly) and returns the local FederateId a
// caller uses from then on (spec.md §4.5).
func (h *Hub) registerFederate(name string, info FederateInfo, state *federate.State) (fedid.FederateId, error) {
	h.mu.Lock()
	if _, exists := h.globalRegistry.Get(name); exists {
		h.mu.Unlock()
		return fedid.InvalidFederateId, regFailure(name)
	}
	local := fedid.FederateId(h.nextFed.Add(1))
	h.federates[local] = state
	h.nameOf[local] = name
	h.localOf[name] = local
	h.mu.Unlock()

	if h.parent == nil {
		global := fedid.GlobalFederateId(local)
		h.mu.Lock()
		h.globalRegistry.Put(name, global)
		h.globalOf[local] = global
		h.localByGlobal[global] = local
		h.mu.Unlock()
		return local, nil
	}

	ack := make(chan action.Message, 1)
	h.mu.Lock()
	h.pendingAck[local] = ack
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pendingAck, local)
		h.mu.Unlock()
	}()

	req := action.Message{
		Action:     action.CmdRegFed,
		DestId:     fedid.GlobalFederateId(local),
		SourceId:   fedid.GlobalFederateId(local),
		Aux:        []string{name, info.CoreType},
	}
	if err := h.parent.Send(0, action.Pack(req)); err != nil {
		return fedid.InvalidFederateId, err
	}

	select {
	case reply := <-ack:
		if reply.Flags&action.FlagError != 0 {
			return fedid.InvalidFederateId, regFailure(name)
		}
		global := fedid.GlobalFederateId(reply.SourceId)
		h.mu.Lock()
		h.globalRegistry.Put(name, global)
		h.globalOf[local] = global
		h.localByGlobal[global] = local
		h.mu.Unlock()
		return local, nil
	case <-time.After(ConnectTimeout):
		return fedid.InvalidFederateId, regFailure(name)
	}
}

func (h *Hub) completeAck(local fedid.FederateId, msg action.Message) {
	h.mu.RLock()
	ack, ok := h.pendingAck[local]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case ack <- msg:
	default:
	}
}

// addSourceTarget forwards a source-matching request for inHandle to
// the parent; the reply arrives later, addressed back at the local
// federate, as CMD_ADD_PUBLISHER (spec.md §4.5).
func (h *Hub) addSourceTarget(local fedid.FederateId, req action.Message) error {
	return h.forwardToParent(local, req)
}

// addDestinationTarget forwards a destination-matching request the
// same way; the reply arrives as CMD_ADD_SUBSCRIBER.
func (h *Hub) addDestinationTarget(local fedid.FederateId, req action.Message) error {
	return h.forwardToParent(local, req)
}

func (h *Hub) forwardToParent(local fedid.FederateId, req action.Message) error {
	if h.parent == nil {
		return connFailure("no broker configured for federate %s", local)
	}
	req.SourceId = h.federateGlobal(local)
	return h.parent.Send(0, action.Pack(req))
}

func (h *Hub) federateGlobal(local fedid.FederateId) fedid.GlobalFederateId {
	h.mu.RLock()
	defer h.mu.RUnlock()
	g, ok := h.globalOf[local]
	if !ok {
		return fedid.InvalidGlobalFederateId
	}
	return g
}

// disconnect drains every local FederateState, forwards CMD_DISCONNECT
// to the parent, and closes the transport (spec.md §4.5).
func (h *Hub) disconnect() error {
	h.mu.RLock()
	fds := make([]*federate.State, 0, len(h.federates))
	for _, f := range h.federates {
		fds = append(fds, f)
	}
	h.mu.RUnlock()

	for _, f := range fds {
		if err := f.Finalize(); err != nil {
			h.log.Warn("corehub: federate finalize failed during disconnect", "error", err)
		}
	}

	if h.parent != nil {
		_ = h.parent.Send(0, action.Pack(action.Message{Action: action.CmdDisconnect, SourceId: fedid.GlobalFederateId(h.self)}))
	}

	h.stopOnce.Do(func() { close(h.stopCh) })
	h.wg.Wait()

	if h.parent != nil {
		return h.parent.Close()
	}
	return nil
}
