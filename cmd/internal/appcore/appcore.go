// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package appcore is the thin wiring shared by the bundled CLIs
// cmd/helics-player and cmd/helics-recorder (cmd/helics-broker and
// cmd/helics-connector do not use it): a single federate joined to a CoordinatorCore
// over either an in-process or a ZeroMQ Transport (SPEC_FULL.md §4).
// The apps themselves stay domain-specific; this package only builds
// the plumbing underneath them, the way the teacher's cmd/checker
// builds a config.Config and leaves the reporting to main.
package appcore

import (
	"flag"
	"fmt"

	"github.com/helics/core/corehub"
	"github.com/helics/core/fedid"
	"github.com/helics/core/federate"
	"github.com/helics/core/interfaces"
	"github.com/helics/core/timecoord"
	"github.com/helics/core/transport"
)

// Flags is the command-line surface every app shares: how to name
// itself and how to reach a broker.
type Flags struct {
	Name          string
	CoreType      string
	RouterAddress string
	PubAddress    string
	BrokerRouter  string
	BrokerPub     string
	StopTime      float64
}

// Bind registers the shared flags on fs, defaulting Name to
// defaultName. Callers add their own app-specific flags to the same
// FlagSet before calling fs.Parse.
func Bind(fs *flag.FlagSet, defaultName string) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Name, "name", defaultName, "federate name")
	fs.StringVar(&f.CoreType, "coretype", "inproc", `core type: "inproc" (self-contained, single process) or "zmq"`)
	fs.StringVar(&f.RouterAddress, "router", "tcp://127.0.0.1:0", "this federate's zmq router bind address")
	fs.StringVar(&f.PubAddress, "pub", "tcp://127.0.0.1:0", "this federate's zmq pub bind address")
	fs.StringVar(&f.BrokerRouter, "broker", "", "broker zmq router address to dial (coretype zmq only)")
	fs.StringVar(&f.BrokerPub, "brokerpub", "", "broker zmq pub address to dial (coretype zmq only)")
	fs.Float64Var(&f.StopTime, "stop", 0, "simulation stop time")
	return f
}

// Federation is one federate joined to a CoordinatorCore, the common
// starting point of every bundled app.
type Federation struct {
	Hub      *corehub.Hub
	State    *federate.State
	Registry *interfaces.Registry
	Local    fedid.FederateId
}

// Join builds the core type named by f and registers one federate
// named f.Name on it.
//
// "inproc" gives the federate its own root Hub with no parent
// transport — the Go analogue of original_source's CoreType::TEST,
// used throughout BrokerAppTests.cpp for self-contained runs that
// don't need a separate broker process. "zmq" dials f.BrokerRouter/
// f.BrokerPub over transport/zmq and requires the binary to be built
// with -tags zmq (transport.ZMQDialer is nil otherwise).
func Join(f *Flags) (*Federation, error) {
	var parent transport.Transport

	switch f.CoreType {
	case "", "inproc":
		// No parent: this process is its own root broker.
	case "zmq":
		if transport.ZMQDialer == nil {
			return nil, fmt.Errorf("appcore: coretype zmq requires building with -tags zmq")
		}
		t, err := transport.ZMQDialer(fedid.Route(1), f.RouterAddress, f.PubAddress)
		if err != nil {
			return nil, fmt.Errorf("appcore: zmq transport: %w", err)
		}
		if c, ok := t.(transport.Connector); ok && f.BrokerRouter != "" {
			if err := c.Connect(fedid.Route(0), f.BrokerRouter, f.BrokerPub); err != nil {
				t.Close()
				return nil, fmt.Errorf("appcore: connect to broker: %w", err)
			}
		}
		parent = t
	default:
		return nil, fmt.Errorf("appcore: unknown coretype %q", f.CoreType)
	}

	hub := corehub.New(fedid.Route(1), parent)

	registry := interfaces.NewRegistry(0)
	coord := timecoord.NewCoordinator(0, nil)
	state := federate.New(0, 0, registry, coord, nil)

	local, err := hub.RegisterFederate(f.Name, corehub.FederateInfo{Name: f.Name, CoreType: f.CoreType, ParentExists: parent != nil}, state)
	if err != nil {
		if parent != nil {
			parent.Close()
		}
		return nil, fmt.Errorf("appcore: register federate %q: %w", f.Name, err)
	}

	return &Federation{Hub: hub, State: state, Registry: registry, Local: local}, nil
}

// Close finalizes the federate and tears down the hub.
func (fed *Federation) Close() error {
	if err := fed.State.Finalize(); err != nil {
		return err
	}
	return fed.Hub.Disconnect()
}
