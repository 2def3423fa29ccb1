// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command helics-connector wires together publications and inputs
// declared by name in a manifest file, without either side knowing
// the other's identity up front — the Go counterpart of
// original_source's src/helics/apps/connectorMain.cpp
// (helics::apps::Connector).
//
// Matching two remote cores' interfaces requires a broker that
// relays the match as CMD_ADD_PUBLISHER/CMD_ADD_SUBSCRIBER to each
// owning core; corehub's current registration protocol only covers a
// core registering itself with its own parent (SPEC_FULL.md §4.5), so
// this command hosts every named federate locally on one root Hub and
// applies the match directly against both sides' InterfaceRegistry —
// the same effect a broker-relayed match has within a single process,
// and exactly the scope exercised by the bundled manifest format
// below.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/helics/core/corehub"
	"github.com/helics/core/federate"
	"github.com/helics/core/fedid"
	"github.com/helics/core/interfaces"
	"github.com/helics/core/timecoord"
)

type manifest struct {
	Federates   []manifestFederate   `json:"federates"`
	Connections []manifestConnection `json:"connections"`
}

type manifestFederate struct {
	Name         string              `json:"name"`
	Publications []manifestInterface `json:"publications"`
	Inputs       []manifestInterface `json:"inputs"`
}

type manifestInterface struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Units string `json:"units"`
}

// manifestConnection names a publication and an input by their fully
// qualified "federate/key" address, the same addressing scheme
// original_source's Connector uses for its source/target pairs.
type manifestConnection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func loadManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// endpointSite is one federate hosted by this connector run: its
// local id, its InterfaceRegistry, and its State (so the dependency
// graph the matches imply is visible to the coordinator too).
type endpointSite struct {
	local    fedid.FederateId
	global   fedid.GlobalFederateId
	registry *interfaces.Registry
	state    *federate.State
	pubs     map[string]fedid.InterfaceHandle
	inputs   map[string]fedid.InterfaceHandle
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "helics-connector:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("helics-connector", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "path to a JSON manifest of federates and connections")
	fs.Parse(os.Args[1:])

	if *manifestPath == "" {
		return fmt.Errorf("-manifest is required")
	}
	m, err := loadManifest(*manifestPath)
	if err != nil {
		return err
	}

	sites, linked, err := applyManifest(m)
	if err != nil {
		return err
	}
	fmt.Printf("helics-connector: %d federate(s), %d connection(s) applied\n", len(sites), linked)
	return nil
}

// applyManifest hosts every federate named in m on one root Hub and
// applies every connection directly against both sides'
// InterfaceRegistry, per the package doc's single-process scope.
func applyManifest(m manifest) (map[string]*endpointSite, int, error) {
	hub := corehub.New(fedid.Route(1), nil)
	sites := make(map[string]*endpointSite, len(m.Federates))

	for _, mf := range m.Federates {
		registry := interfaces.NewRegistry(0)
		coord := timecoord.NewCoordinator(0, nil)
		state := federate.New(0, 0, registry, coord, nil)

		local, err := hub.RegisterFederate(mf.Name, corehub.FederateInfo{Name: mf.Name}, state)
		if err != nil {
			return nil, 0, fmt.Errorf("register federate %q: %w", mf.Name, err)
		}
		site := &endpointSite{
			local:    local,
			global:   hub.GlobalOf(local),
			registry: registry,
			state:    state,
			pubs:     make(map[string]fedid.InterfaceHandle),
			inputs:   make(map[string]fedid.InterfaceHandle),
		}
		for _, p := range mf.Publications {
			h, err := registry.RegisterPublication(p.Key, p.Type, p.Units)
			if err != nil {
				return nil, 0, fmt.Errorf("federate %q: register publication %q: %w", mf.Name, p.Key, err)
			}
			site.pubs[p.Key] = h
		}
		for _, in := range mf.Inputs {
			h, err := registry.RegisterInput(in.Key, in.Type, in.Units)
			if err != nil {
				return nil, 0, fmt.Errorf("federate %q: register input %q: %w", mf.Name, in.Key, err)
			}
			site.inputs[in.Key] = h
		}
		registry.FinishRegistration()
		sites[mf.Name] = site
	}

	linked := 0
	for _, c := range m.Connections {
		srcFed, srcKey, err := splitAddress(c.Source)
		if err != nil {
			return nil, 0, err
		}
		dstFed, dstKey, err := splitAddress(c.Target)
		if err != nil {
			return nil, 0, err
		}
		src, ok := sites[srcFed]
		if !ok {
			return nil, 0, fmt.Errorf("connection %q -> %q: unknown federate %q", c.Source, c.Target, srcFed)
		}
		dst, ok := sites[dstFed]
		if !ok {
			return nil, 0, fmt.Errorf("connection %q -> %q: unknown federate %q", c.Source, c.Target, dstFed)
		}
		pubHandle, ok := src.pubs[srcKey]
		if !ok {
			return nil, 0, fmt.Errorf("federate %q has no publication %q", srcFed, srcKey)
		}
		inHandle, ok := dst.inputs[dstKey]
		if !ok {
			return nil, 0, fmt.Errorf("federate %q has no input %q", dstFed, dstKey)
		}
		pub, _ := src.registry.Publication(pubHandle)

		if err := src.registry.AddDestination(pubHandle, fedid.GlobalHandle{Federate: dst.global, Interface: inHandle}); err != nil {
			return nil, 0, fmt.Errorf("link %s -> %s: %w", c.Source, c.Target, err)
		}
		if err := dst.registry.AddSource(inHandle, fedid.GlobalHandle{Federate: src.global, Interface: pubHandle}, pub.Key, pub.Type, pub.Units); err != nil {
			return nil, 0, fmt.Errorf("link %s -> %s: %w", c.Source, c.Target, err)
		}
		src.state.Coordinator().AddDependent(dst.global)
		dst.state.Coordinator().AddDependency(src.global)
		fmt.Printf("helics-connector: linked %s -> %s\n", c.Source, c.Target)
		linked++
	}

	return sites, linked, nil
}

func splitAddress(addr string) (fed, key string, err error) {
	for i := 0; i < len(addr); i++ {
		if addr[i] == '/' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("address %q is not of the form \"federate/key\"", addr)
}
