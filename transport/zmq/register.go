// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build zmq
// +build zmq

package zmq

import (
	"github.com/helics/core/fedid"
	"github.com/helics/core/transport"
)

func init() {
	transport.ZMQDialer = func(self fedid.Route, routerAddress, pubAddress string) (transport.Transport, error) {
		return New(Config{Self: self, RouterAddress: routerAddress, PubAddress: pubAddress})
	}
}
