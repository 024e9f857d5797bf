package wiring

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lautenbacher.net/gowiring/hardware"
)

func newTestLibrary(t *testing.T, cfg Configuration) (*Library, *hardware.Sim) {
	t.Helper()
	sim := hardware.NewSim()
	l, err := newLibrary(sim, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, sim
}

var allModes = []Mode{
	Output,
	PwmOutput,
	ClockOutput,
	Input(PullNone),
	Input(PullDown),
	Input(PullUp),
}
