// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package appcore

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinInprocRegistersFederate(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Bind(fs, "fedA")

	fed, err := Join(f)
	require.NoError(t, err)
	require.NotZero(t, fed.Local)
	require.NoError(t, fed.Close())
}

func TestJoinUnknownCoreTypeErrors(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Bind(fs, "fedA")
	f.CoreType = "bogus"

	_, err := Join(f)
	require.Error(t, err)
}

func TestJoinZMQWithoutBuildTagErrors(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := Bind(fs, "fedA")
	f.CoreType = "zmq"

	_, err := Join(f)
	require.Error(t, err)
}
