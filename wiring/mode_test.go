package wiring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/gowiring/hardware"
)

func TestParseConfiguration(t *testing.T) {
	tests := map[string]Configuration{
		"":     Default,
		"wpi":  Default,
		"def":  Default,
		"GPIO": GpioNumbering,
		"bcm":  GpioNumbering,
		"phys": PhysicalNumbering,
		"sys":  SysfsOnly,
	}
	for in, want := range tests {
		got, err := ParseConfiguration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseConfiguration("board")
	assert.ErrorContains(t, err, "unknown numbering")
}

func TestConfigurationString(t *testing.T) {
	for _, c := range []Configuration{Default, GpioNumbering, PhysicalNumbering, SysfsOnly} {
		parsed, err := ParseConfiguration(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "Configuration(9)", Configuration(9).String())
}

func TestModeCodes(t *testing.T) {
	assert.Equal(t, hardware.ModeOutput, Output.Code())
	assert.Equal(t, hardware.ModeInput, Input(PullUp).Code())
	assert.Equal(t, hardware.ModePwmOutput, PwmOutput.Code())
	assert.Equal(t, hardware.ModeGpioClock, ClockOutput.Code())

	assert.Equal(t, Output, Mode{}, "zero mode is output")
	assert.True(t, Input(PullNone).IsInput())
	assert.False(t, PwmOutput.IsInput())
	assert.Equal(t, PullUp, Input(PullUp).Resistor())
	assert.Equal(t, PullNone, Output.Resistor())
	assert.NotEqual(t, Input(PullUp), Input(PullDown))
	assert.Equal(t, "input(pull_down)", Input(PullDown).String())
}

func TestResistorCodes(t *testing.T) {
	assert.Equal(t, 0, PullNone.Code())
	assert.Equal(t, 1, PullDown.Code())
	assert.Equal(t, 2, PullUp.Code())
}

func TestLevelFromCode(t *testing.T) {
	assert.Equal(t, Low, LevelFromCode(0))
	assert.Equal(t, High, LevelFromCode(1))
	assert.Equal(t, High, LevelFromCode(-3))
	assert.Equal(t, 1, High.Code())
	assert.Equal(t, "low", Low.String())
}

func TestEdgeAndPwmCodes(t *testing.T) {
	assert.Equal(t, hardware.EdgeFalling, EdgeFalling.Code())
	assert.Equal(t, hardware.EdgeBoth, EdgeBoth.Code())
	assert.Equal(t, hardware.EdgeSetup, EdgeSetup.Code())
	assert.Equal(t, hardware.PwmModeBalanced, PwmBalanced.Code())
	assert.Equal(t, hardware.PwmModeMarkSpace, PwmMarkSpace.Code())
}
