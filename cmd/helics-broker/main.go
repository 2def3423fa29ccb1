// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command helics-broker runs a standalone root CoordinatorCore: the
// Go counterpart of the broker application exercised by
// original_source's tests/helics/apps/BrokerAppTests.cpp and
// CoreAppTests.cpp (there is no standalone brokerMain.cpp in the
// original sources — the broker is a library type, BrokerApp, driven
// directly by its test suite, so this command's flag surface follows
// that suite's constructor options instead of a single main.cpp).
//
// A broker started this way owns no federates of its own. With
// -coretype zmq (built with -tags zmq) it binds the router and pub
// addresses, but the Hub is not attached to that listener: nothing
// arriving there is read, so registrations and queries from other
// cores are not answered.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/helics/core/corehub"
	"github.com/helics/core/fedid"
	"github.com/helics/core/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "helics-broker:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("helics-broker", flag.ExitOnError)
	name := fs.String("name", "broker", "broker identifier")
	coreType := fs.String("coretype", "inproc", `core type: "inproc" (process-local, no listener) or "zmq"`)
	routerAddress := fs.String("router", "tcp://127.0.0.1:23404", "zmq router bind address (coretype zmq only)")
	pubAddress := fs.String("pub", "tcp://127.0.0.1:23405", "zmq pub bind address (coretype zmq only)")
	fs.Parse(os.Args[1:])

	var listener transport.Transport
	switch *coreType {
	case "", "inproc":
	case "zmq":
		if transport.ZMQDialer == nil {
			return fmt.Errorf("coretype zmq requires building with -tags zmq")
		}
		t, err := transport.ZMQDialer(fedid.Route(1), *routerAddress, *pubAddress)
		if err != nil {
			return fmt.Errorf("bind zmq listener: %w", err)
		}
		listener = t
		defer listener.Close()
	default:
		return fmt.Errorf("unknown coretype %q", *coreType)
	}

	// A broker is a root Hub with no owned federates and no parent
	// transport: registerFederate and Query are never called here, only
	// Disconnect (spec.md §4.5).
	hub := corehub.New(fedid.Route(1), nil, corehub.WithQueryCallback(func(target, key string) (string, bool) {
		return "", false
	}))

	if listener != nil {
		fmt.Printf("helics-broker: %q listening router=%s pub=%s\n", *name, *routerAddress, *pubAddress)
	} else {
		fmt.Printf("helics-broker: %q running in-process (no listener)\n", *name)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("helics-broker: shutting down")
	return hub.Disconnect()
}
