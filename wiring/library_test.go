package wiring

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/gowiring/hardware"
)

func TestSetupMatchesConfiguration(t *testing.T) {
	tests := []struct {
		cfg       Configuration
		setupCall string
		numbering string
	}{
		{Default, "Setup", "wpi"},
		{GpioNumbering, "SetupGpio", "gpio"},
		{PhysicalNumbering, "SetupPhys", "phys"},
		{SysfsOnly, "SetupSys", "sys"},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.String(), func(t *testing.T) {
			l, sim := newTestLibrary(t, tt.cfg)
			assert.Equal(t, tt.cfg, l.Configuration())
			assert.Equal(t, 1, sim.CallCount(tt.setupCall))
			assert.Equal(t, tt.numbering, sim.Numbering())
		})
	}
}

func TestSetupFailure(t *testing.T) {
	sim := hardware.NewSim()
	sim.FailNext("Setup", -1)
	l, err := newLibrary(sim, Default)
	require.NotNil(t, l)
	assert.ErrorIs(t, err, ErrHardwareFailure)

	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, -1, werr.Status)
	assert.Equal(t, "setup", werr.Op)
}

func resetShared(t *testing.T) {
	t.Helper()
	reset := func() {
		once = sync.Once{}
		shared, sharedErr = nil, nil
	}
	reset()
	t.Cleanup(reset)
}

func TestNewRunsSetupOnce(t *testing.T) {
	resetShared(t)
	sim := hardware.NewSim()
	other := hardware.NewSim()

	var wg sync.WaitGroup
	libs := make([]*Library, 8)
	for i := range libs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := New(PhysicalNumbering, WithDriver(sim))
			assert.NoError(t, err)
			libs[i] = l
		}()
	}
	wg.Wait()

	l, err := New(SysfsOnly, WithDriver(other))
	require.NoError(t, err)
	for _, got := range libs {
		assert.Same(t, l, got)
	}
	assert.Equal(t, PhysicalNumbering, l.Configuration())
	assert.Equal(t, PhysicalNumbering, l.Pin(3).Configuration())
	assert.Equal(t, 1, sim.SetupCount())
	assert.Equal(t, "phys", sim.Numbering())
	assert.Zero(t, other.SetupCount())
}

func TestNewKeepsSetupError(t *testing.T) {
	resetShared(t)
	sim := hardware.NewSim()
	sim.FailNext("SetupGpio", -1)

	_, err := New(GpioNumbering, WithDriver(sim))
	assert.ErrorIs(t, err, ErrHardwareFailure)
	_, again := New(GpioNumbering, WithDriver(sim))
	assert.Equal(t, err, again)
	assert.Equal(t, 1, sim.CallCount("SetupGpio"))
}

func TestGlobalPassthroughs(t *testing.T) {
	l, sim := newTestLibrary(t, Default)

	l.DigitalWriteByte(0x0f)
	assert.Equal(t, hardware.High, sim.Pin(0).Level)
	assert.Equal(t, hardware.Low, sim.Pin(7).Level)

	l.PwmSetMode(PwmMarkSpace)
	l.PwmSetRange(2000)
	l.PwmSetClock(192)
	mode, rng, div := sim.PwmSettings()
	assert.Equal(t, hardware.PwmModeMarkSpace, mode)
	assert.Equal(t, uint32(2000), rng)
	assert.Equal(t, 192, div)

	l.SetPadDrive(0, 5)
	assert.Equal(t, 5, sim.PadDrive(0))

	assert.Equal(t, 2, l.BoardRevision())
	assert.Equal(t, 17, l.WpiPinToGpio(0))
	assert.Equal(t, 4, l.PhysPinToGpio(7))

	l.Delay(2)
	assert.GreaterOrEqual(t, l.Millis(), uint32(2))
	start := l.Micros()
	l.DelayMicroseconds(10)
	assert.GreaterOrEqual(t, l.Micros()-start, uint32(10))
}

func TestSysPassesGlobalCallsThrough(t *testing.T) {
	l, sim := newTestLibrary(t, SysfsOnly)
	sim.ResetCalls()

	l.PwmSetRange(10)
	l.PwmSetRange(20)
	l.PwmSetMode(PwmBalanced)
	l.PwmSetClock(2)
	l.SetPadDrive(1, 3)
	l.DigitalWriteByte(1)

	assert.Equal(t, 2, sim.CallCount("PwmSetRange"))
	assert.Equal(t, 1, sim.CallCount("SetPadDrive"))
	assert.Equal(t, 1, sim.CallCount("DigitalWriteByte"))
	_, seen := l.warned.Load("pwm_set_range")
	assert.True(t, seen)
}

func TestPromoteThreadPriority(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	require.NoError(t, l.PromoteThreadPriority(55))
	assert.Equal(t, 55, sim.Priority())

	require.NoError(t, l.PromoteThreadPriority(500))
	assert.Equal(t, 99, sim.Priority())

	sim.FailNext("PiHiPri", 1)
	assert.ErrorIs(t, l.PromoteThreadPriority(10), ErrHardwareFailure)
}

func TestRegisterISR(t *testing.T) {
	l, sim := newTestLibrary(t, GpioNumbering)
	in := l.Pin(23)
	require.NoError(t, in.SetMode(Input(PullNone)))

	var fired atomic.Int32
	require.NoError(t, l.RegisterISR(23, EdgeRising, func() { fired.Add(1) }))
	sim.SetInput(23, hardware.High)
	sim.SetInput(23, hardware.Low)
	sim.SetInput(23, hardware.High)
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, time.Millisecond)
}

func TestRegisterISRErrors(t *testing.T) {
	l, sim := newTestLibrary(t, Default)
	sim.ResetCalls()
	assert.ErrorIs(t, l.RegisterISR(1, EdgeBoth, nil), ErrConfiguration)
	assert.Empty(t, sim.Calls())

	sim.FailNext("ISR", -1)
	assert.ErrorIs(t, l.RegisterISR(1, EdgeBoth, func() {}), ErrHardwareFailure)
}
