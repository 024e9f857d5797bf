package wiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/gowiring/hardware"
)

func TestNewPinStartsAsOutput(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	sim.ResetCalls()

	p := l.Pin(15)
	assert.Equal(t, 15, p.Number())
	assert.Equal(t, Output, p.Mode())
	assert.Equal(t, Default, p.Configuration())
	assert.Empty(t, sim.Calls(), "creating a pin touches no hardware")
}

func TestDefaultScenarioPin15(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	p := l.Pin(15)

	require.NoError(t, p.SetMode(Output))
	assert.Equal(t, Output, p.Mode())
	require.NoError(t, p.DigitalWrite(High))
	assert.Equal(t, hardware.High, sim.Pin(15).Level)

	require.NoError(t, p.SetMode(Input(PullUp)))
	err := p.DigitalWrite(High)
	assert.ErrorIs(t, err, ErrIllegalMode)
	assert.Equal(t, Input(PullUp), p.Mode())
}

func TestSysScenarioPin7(t *testing.T) {
	l, sim := newTestLibrary(t, SysfsOnly)
	sim.ResetCalls()
	p := l.Pin(7)

	err := p.SetMode(Output)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, Output, p.Mode())
	assert.Empty(t, sim.Calls())
}

func TestWriteAfterModeChange(t *testing.T) {
	l, _ := newTestLibrary(t, GpioNumbering)
	for _, m := range allModes {
		p := l.Pin(18)
		require.NoError(t, p.SetMode(m))
		err := p.DigitalWrite(Low)
		if m == Output {
			assert.NoError(t, err, m.String())
		} else {
			assert.ErrorIs(t, err, ErrIllegalMode, m.String())
		}
	}
}

func TestSysRejectsEveryModeChange(t *testing.T) {
	l, sim := newTestLibrary(t, SysfsOnly)
	sim.ResetCalls()
	p := l.Pin(17)
	for _, m := range allModes {
		assert.ErrorIs(t, p.SetMode(m), ErrConfiguration, m.String())
	}
	for _, r := range []ResistorMode{PullNone, PullDown, PullUp} {
		assert.ErrorIs(t, p.SetResistorMode(r), ErrConfiguration, r.String())
	}
	assert.ErrorIs(t, p.PwmWrite(100), ErrConfiguration)
	assert.Equal(t, Output, p.Mode())
	assert.Empty(t, sim.Calls())
}

func TestSysStillReadsAndWrites(t *testing.T) {
	l, sim := newTestLibrary(t, SysfsOnly)
	p := l.Pin(17)
	require.NoError(t, p.DigitalWrite(High))
	assert.Equal(t, High, p.DigitalRead())
	assert.Equal(t, 1, sim.CallCount("DigitalWrite"))
}

func TestSetResistorModeNeedsInput(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	for _, m := range []Mode{Output, PwmOutput, ClockOutput} {
		p := l.Pin(1)
		require.NoError(t, p.SetMode(m))
		sim.ResetCalls()
		err := p.SetResistorMode(PullUp)
		assert.ErrorIs(t, err, ErrIllegalMode, m.String())
		assert.Equal(t, m, p.Mode())
		assert.Zero(t, sim.CallCount("PullUpDnControl"))
	}
}

func TestSetResistorModeOnInput(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	p := l.Pin(4)
	require.NoError(t, p.SetMode(Input(PullNone)))
	require.NoError(t, p.SetResistorMode(PullDown))
	assert.Equal(t, Input(PullDown), p.Mode())
	assert.Equal(t, hardware.PudDown, sim.Pin(4).Pull)
}

func TestSetModeInputAppliesPull(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	sim.ResetCalls()
	require.NoError(t, l.Pin(3).SetMode(Input(PullUp)))

	assert.Equal(t, []hardware.Call{
		{Op: "PinMode", Args: []int{3, hardware.ModeInput}},
		{Op: "PullUpDnControl", Args: []int{3, hardware.PudUp}},
	}, sim.Calls())
}

func TestSetModeCodes(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	p := l.Pin(1)
	require.NoError(t, p.SetMode(PwmOutput))
	assert.Equal(t, hardware.ModePwmOutput, sim.Pin(1).Mode)
	require.NoError(t, p.SetMode(ClockOutput))
	assert.Equal(t, hardware.ModeGpioClock, sim.Pin(1).Mode)
}

func TestRejectedWriteHasNoSideEffect(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	p := l.Pin(2)
	require.NoError(t, p.SetMode(Input(PullNone)))
	sim.ResetCalls()
	assert.Error(t, p.DigitalWrite(High))
	assert.Empty(t, sim.Calls())
}

func TestPinPassthroughs(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	p := l.Pin(100)
	sim.SetAnalog(100, 512)
	assert.Equal(t, 512, p.AnalogRead())
	p.AnalogWrite(33)
	assert.Equal(t, 33, sim.Pin(100).Analog)

	pwm := l.Pin(1)
	require.NoError(t, pwm.PwmWrite(700))
	assert.Equal(t, 700, sim.Pin(1).Pwm)

	in := l.Pin(0)
	require.NoError(t, in.SetMode(Input(PullNone)))
	sim.SetInput(0, hardware.High)
	assert.Equal(t, High, in.DigitalRead())
}

func TestPinHandlesAreIndependent(t *testing.T) {
	l, _ := newTestLibrary(t, Default)
	a, b := l.Pin(5), l.Pin(5)
	require.NoError(t, a.SetMode(Input(PullUp)))
	assert.Equal(t, Output, b.Mode())
	assert.NoError(t, b.DigitalWrite(High))
}
