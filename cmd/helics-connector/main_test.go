// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAddress(t *testing.T) {
	fed, key, err := splitAddress("fedA/pub1")
	require.NoError(t, err)
	require.Equal(t, "fedA", fed)
	require.Equal(t, "pub1", key)

	_, _, err = splitAddress("nopath")
	require.Error(t, err)
}

func TestApplyManifestLinksPublicationToInput(t *testing.T) {
	m := manifest{
		Federates: []manifestFederate{
			{Name: "A", Publications: []manifestInterface{{Key: "out", Type: "double"}}},
			{Name: "B", Inputs: []manifestInterface{{Key: "in", Type: "double"}}},
		},
		Connections: []manifestConnection{{Source: "A/out", Target: "B/in"}},
	}

	sites, linked, err := applyManifest(m)
	require.NoError(t, err)
	require.Equal(t, 1, linked)

	a, b := sites["A"], sites["B"]
	pub, ok := a.registry.Publication(a.pubs["out"])
	require.True(t, ok)
	require.Len(t, pub.Subscribers(), 1)

	in, ok := b.registry.Input(b.inputs["in"])
	require.True(t, ok)
	require.Len(t, in.Sources(), 1)
}

func TestApplyManifestUnknownFederateErrors(t *testing.T) {
	m := manifest{
		Federates:   []manifestFederate{{Name: "A", Publications: []manifestInterface{{Key: "out", Type: "double"}}}},
		Connections: []manifestConnection{{Source: "A/out", Target: "ghost/in"}},
	}
	_, _, err := applyManifest(m)
	require.Error(t, err)
}

func TestLoadManifestRoundTrip(t *testing.T) {
	m := manifest{
		Federates: []manifestFederate{
			{Name: "A", Publications: []manifestInterface{{Key: "out", Type: "double"}}},
			{Name: "B", Inputs: []manifestInterface{{Key: "in", Type: "double"}}},
		},
		Connections: []manifestConnection{{Source: "A/out", Target: "B/in"}},
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := loadManifest(path)
	require.NoError(t, err)
	require.Equal(t, m, loaded)
}
