package wiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/gowiring/hardware"
)

func TestTypedViews(t *testing.T) {
	l, sim := newTestLibrary(t, GpioNumbering)

	out, err := l.Pin(17).AsOutput()
	require.NoError(t, err)
	out.DigitalWrite(High)
	assert.Equal(t, hardware.High, sim.Pin(17).Level)
	out.AnalogWrite(9)
	assert.Equal(t, 9, sim.Pin(17).Analog)
	assert.Equal(t, Output, out.Pin().Mode())

	in, err := l.Pin(22).AsInput(PullUp)
	require.NoError(t, err)
	assert.Equal(t, High, in.DigitalRead())
	in.SetResistorMode(PullDown)
	assert.Equal(t, Low, in.DigitalRead())
	assert.Equal(t, Input(PullDown), in.Pin().Mode())
	sim.SetAnalog(22, 77)
	assert.Equal(t, 77, in.AnalogRead())

	pwm, err := l.Pin(18).AsPwmOutput()
	require.NoError(t, err)
	pwm.PwmWrite(300)
	assert.Equal(t, 300, sim.Pin(18).Pwm)
	assert.Equal(t, PwmOutput, pwm.Pin().Mode())

	clk, err := l.Pin(4).AsClockOutput()
	require.NoError(t, err)
	clk.SetFrequency(100000)
	assert.Equal(t, 100000, sim.Pin(4).ClockHz)
	assert.Equal(t, ClockOutput, clk.Pin().Mode())
}

func TestTypedViewsUnderSys(t *testing.T) {
	l, _ := newTestLibrary(t, SysfsOnly)
	p := l.Pin(17)

	_, err := p.AsOutput()
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = p.AsInput(PullNone)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = p.AsPwmOutput()
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = p.AsClockOutput()
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestViewGoesStaleOnModeChange(t *testing.T) {
	l, sim := newTestLibrary(t, GpioNumbering)
	p := l.Pin(5)

	in, err := p.AsInput(PullNone)
	require.NoError(t, err)
	assert.False(t, in.Stale())
	require.NoError(t, p.SetResistorMode(PullDown))
	assert.False(t, in.Stale(), "pull changes keep the pin an input")

	require.NoError(t, p.SetMode(Output))
	assert.True(t, in.Stale())
	sim.ResetCalls()
	in.SetResistorMode(PullUp)
	assert.Empty(t, sim.Calls())
	assert.Equal(t, Output, p.Mode())
	assert.Equal(t, hardware.ModeOutput, sim.Pin(5).Mode)
	assert.NoError(t, p.DigitalWrite(High))

	out, err := p.AsOutput()
	require.NoError(t, err)
	require.NoError(t, p.SetMode(Input(PullNone)))
	sim.ResetCalls()
	out.DigitalWrite(High)
	out.AnalogWrite(3)
	assert.Empty(t, sim.Calls())
	assert.Equal(t, Input(PullNone), p.Mode())

	pwm, err := p.AsPwmOutput()
	require.NoError(t, err)
	clk, err := l.Pin(4).AsClockOutput()
	require.NoError(t, err)
	require.NoError(t, p.SetMode(Output))
	require.NoError(t, clk.Pin().SetMode(Output))
	sim.ResetCalls()
	pwm.PwmWrite(100)
	clk.SetFrequency(1000)
	assert.Empty(t, sim.Calls())
}
