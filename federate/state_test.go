// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhaseTransitions(t *testing.T) {
	require.True(t, Created.canTransitionTo(Initializing))
	require.True(t, Created.canTransitionTo(Errored))
	require.False(t, Created.canTransitionTo(Executing))

	require.True(t, Initializing.canTransitionTo(Executing))
	require.False(t, Initializing.canTransitionTo(Created))

	require.True(t, Executing.canTransitionTo(Finished))
	require.True(t, Executing.canTransitionTo(Errored))
	require.False(t, Executing.canTransitionTo(Initializing))

	require.False(t, Finished.canTransitionTo(Executing))
}

func TestPhaseTerminal(t *testing.T) {
	require.False(t, Created.Terminal())
	require.False(t, Initializing.Terminal())
	require.False(t, Executing.Terminal())
	require.True(t, Finished.Terminal())
	require.True(t, Errored.Terminal())
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "CREATED", Created.String())
	require.Equal(t, "EXECUTING", Executing.String())
	require.Equal(t, "ERROR", Errored.String())
}
