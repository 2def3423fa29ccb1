// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build zmq
// +build zmq

// Package zmq is the multi-process Transport, built on ZeroMQ
// ROUTER/DEALER sockets so every endpoint can both send to and
// receive from any other endpoint it knows the address of
// (SPEC_FULL.md §8). Broadcast rides a PUB/SUB pair the same way
// the teacher's utils/transport/zmq does.
package zmq

import (
	"context"
	"sync"

	zmq4 "github.com/go-zeromq/zmq4"

	"github.com/helics/core/fedid"
	"github.com/helics/core/herrors"
)

// Transport is a ZeroMQ-backed endpoint: a ROUTER socket for
// point-to-point Send, a PUB socket for Broadcast, and a SUB socket
// dialed to every peer's PUB for the broadcast side of Recv.
type Transport struct {
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	router  zmq4.Socket
	pub     zmq4.Socket
	sub     zmq4.Socket
	peers   map[fedid.Route]string // route -> dealer endpoint
	dealers map[fedid.Route]zmq4.Socket
	inbox   chan []byte
	self    fedid.Route
}

const inboxDepth = 256

// Config names the two listen addresses an endpoint binds: one for
// direct ROUTER/DEALER traffic, one for PUB/SUB broadcast.
type Config struct {
	Self          fedid.Route
	RouterAddress string
	PubAddress    string
}

// New binds the router and pub sockets described by cfg. Peers are
// added afterward with Connect.
func New(cfg Config) (*Transport, error) {
	ctx, cancel := context.WithCancel(context.Background())

	router := zmq4.NewRouter(ctx)
	if err := router.Listen(cfg.RouterAddress); err != nil {
		cancel()
		return nil, herrors.ConnectionFailure("zmq: bind router %s: %v", cfg.RouterAddress, err)
	}

	pub := zmq4.NewPub(ctx)
	if err := pub.Listen(cfg.PubAddress); err != nil {
		router.Close()
		cancel()
		return nil, herrors.ConnectionFailure("zmq: bind pub %s: %v", cfg.PubAddress, err)
	}

	sub := zmq4.NewSub(ctx)
	if err := sub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		router.Close()
		pub.Close()
		cancel()
		return nil, herrors.ConnectionFailure("zmq: subscribe option: %v", err)
	}

	t := &Transport{
		ctx:     ctx,
		cancel:  cancel,
		router:  router,
		pub:     pub,
		sub:     sub,
		peers:   make(map[fedid.Route]string),
		dealers: make(map[fedid.Route]zmq4.Socket),
		inbox:   make(chan []byte, inboxDepth),
		self:    cfg.Self,
	}

	t.wg.Add(2)
	go t.recvRouter()
	go t.recvSub()

	return t, nil
}

// Connect dials a peer's router and pub addresses so Send and
// Broadcast can reach it.
func (t *Transport) Connect(route fedid.Route, routerAddress, pubAddress string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dealer := zmq4.NewDealer(t.ctx)
	if err := dealer.Dial(routerAddress); err != nil {
		return herrors.ConnectionFailure("zmq: dial dealer %s: %v", routerAddress, err)
	}
	if err := t.sub.Dial(pubAddress); err != nil {
		dealer.Close()
		return herrors.ConnectionFailure("zmq: dial sub %s: %v", pubAddress, err)
	}
	t.peers[route] = routerAddress
	t.dealers[route] = dealer
	return nil
}

// Send delivers msg to the dealer dialed for route.
func (t *Transport) Send(route fedid.Route, msg []byte) error {
	t.mu.RLock()
	dealer, ok := t.dealers[route]
	t.mu.RUnlock()
	if !ok {
		return herrors.ConnectionFailure("zmq: no dealer connected for route %d", route)
	}
	return dealer.Send(zmq4.NewMsgFrom(msg))
}

// Broadcast publishes msg to every subscriber.
func (t *Transport) Broadcast(msg []byte) error {
	return t.pub.Send(zmq4.NewMsgFrom(msg))
}

// Recv returns the merged stream of router- and sub-delivered
// messages.
func (t *Transport) Recv() <-chan []byte {
	return t.inbox
}

// Close tears down every socket and stops the receive goroutines.
func (t *Transport) Close() error {
	t.cancel()
	t.wg.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.router.Close()
	t.pub.Close()
	t.sub.Close()
	for _, d := range t.dealers {
		d.Close()
	}
	close(t.inbox)
	return nil
}

func (t *Transport) recvRouter() {
	defer t.wg.Done()
	for {
		msg, err := t.router.Recv()
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			continue
		}
		// ROUTER delivers the sender's identity frame before payload.
		if len(msg.Frames) < 2 {
			continue
		}
		t.deliver(msg.Frames[1])
	}
}

func (t *Transport) recvSub() {
	defer t.wg.Done()
	for {
		msg, err := t.sub.Recv()
		if err != nil {
			if t.ctx.Err() != nil {
				return
			}
			continue
		}
		if len(msg.Frames) == 0 {
			continue
		}
		t.deliver(msg.Frames[0])
	}
}

func (t *Transport) deliver(payload []byte) {
	select {
	case t.inbox <- payload:
	case <-t.ctx.Done():
	}
}
