// Package wiring is a typed layer over a wiringPi style hardware driver.
//
// A Library is set up once per process. Pins handed out by it track the mode
// they were last set to and refuse operations that don't fit that mode or
// the library's Configuration before anything reaches the hardware. Bus
// devices wrap the descriptor returned by their setup call.
package wiring

import (
	"log/slog"
	"sync"

	"lautenbacher.net/gowiring/hardware"
	"lautenbacher.net/gowiring/util"
)

var (
	once      sync.Once
	shared    *Library
	sharedErr error
)

// Library is the handle to the initialised hardware subsystem.
type Library struct {
	cfg    Configuration
	drv    hardware.Driver
	warned sync.Map
}

type options struct {
	driver hardware.Driver
}

// Option tunes the first call to New.
type Option func(*options)

// WithDriver selects the hardware driver instead of hardware.Default.
func WithDriver(d hardware.Driver) Option {
	return func(o *options) { o.driver = d }
}

// New initialises the hardware for cfg on the first call in the process.
// Every later call returns the same Library and the same setup error,
// whatever configuration and options it is passed.
func New(cfg Configuration, opts ...Option) (*Library, error) {
	first := false
	once.Do(func() {
		first = true
		o := options{}
		for _, opt := range opts {
			opt(&o)
		}
		if o.driver == nil {
			o.driver = hardware.Default()
		}
		shared, sharedErr = newLibrary(o.driver, cfg)
	})
	if !first && cfg != shared.cfg {
		slog.Debug("Library already set up, ignoring configuration",
			"requested", cfg.String(), "effective", shared.cfg.String())
	}
	return shared, sharedErr
}

func newLibrary(drv hardware.Driver, cfg Configuration) (*Library, error) {
	l := &Library{cfg: cfg, drv: drv}
	var status int
	switch cfg {
	case GpioNumbering:
		status = drv.SetupGpio()
	case PhysicalNumbering:
		status = drv.SetupPhys()
	case SysfsOnly:
		status = drv.SetupSys()
	default:
		status = drv.Setup()
	}
	if status < 0 {
		slog.Error("Hardware setup failed", "driver", drv.Name(), "configuration", cfg.String(), "status", status)
		return l, hardwareFailure("setup", -1, status)
	}
	slog.Info("Hardware ready", "driver", drv.Name(), "configuration", cfg.String())
	return l, nil
}

// Configuration returns the configuration the library was set up with.
func (l *Library) Configuration() Configuration {
	return l.cfg
}

// Pin returns a new handle for pin number in the library's numbering. The
// handle starts in Output mode; nothing is sent to the hardware.
func (l *Library) Pin(number int) *Pin {
	return &Pin{number: number, mode: Output, cfg: l.cfg, drv: l.drv}
}

// warnSys logs once per operation when a call is made that the driver
// ignores under SysfsOnly.
func (l *Library) warnSys(op string) {
	if l.cfg != SysfsOnly {
		return
	}
	if _, seen := l.warned.LoadOrStore(op, struct{}{}); !seen {
		slog.Warn("Call has no effect with sysfs configuration", "op", op)
	}
}

// DigitalWriteByte writes the 8 bits of value to the first 8 pins.
func (l *Library) DigitalWriteByte(value byte) {
	l.warnSys("digital_write_byte")
	l.drv.DigitalWriteByte(int(value))
}

func (l *Library) PwmSetMode(mode PwmMode) {
	l.warnSys("pwm_set_mode")
	l.drv.PwmSetMode(mode.Code())
}

func (l *Library) PwmSetRange(rng uint32) {
	l.warnSys("pwm_set_range")
	l.drv.PwmSetRange(rng)
}

// PwmSetClock sets the divisor applied to the 19.2MHz PWM base clock.
func (l *Library) PwmSetClock(divisor int) {
	l.warnSys("pwm_set_clock")
	l.drv.PwmSetClock(divisor)
}

func (l *Library) SetPadDrive(group, value int) {
	l.warnSys("set_pad_drive")
	l.drv.SetPadDrive(group, value)
}

func (l *Library) BoardRevision() int {
	return l.drv.PiBoardRev()
}

func (l *Library) WpiPinToGpio(pin int) int {
	return l.drv.WpiPinToGpio(pin)
}

func (l *Library) PhysPinToGpio(pin int) int {
	return l.drv.PhysPinToGpio(pin)
}

// Millis counts milliseconds since setup.
func (l *Library) Millis() uint32 { return l.drv.Millis() }

// Micros counts microseconds since setup.
func (l *Library) Micros() uint32 { return l.drv.Micros() }

func (l *Library) Delay(ms uint32) { l.drv.Delay(ms) }

func (l *Library) DelayMicroseconds(us uint32) { l.drv.DelayMicroseconds(us) }

// PromoteThreadPriority moves the calling thread to real-time round robin
// scheduling and locks the calling goroutine to that thread for good, so
// call it from the goroutine doing the timing critical work. Priorities
// above MaxThreadPriority are capped.
func (l *Library) PromoteThreadPriority(priority ThreadPriority) error {
	p := util.Clamp(priority, 0, MaxThreadPriority)
	if status := l.drv.PiHiPri(int(p)); status != 0 {
		return hardwareFailure("promote_thread_priority", -1, status)
	}
	return nil
}

// RegisterISR runs fn on its own goroutine for every matching edge on pin.
func (l *Library) RegisterISR(pin int, edge EdgeType, fn func()) error {
	if fn == nil {
		return configurationError("register_isr", pin, "nil callback")
	}
	if status := l.drv.ISR(pin, edge.Code(), fn); status < 0 {
		return hardwareFailure("register_isr", pin, status)
	}
	slog.Debug("ISR registered", "pin", pin, "edge", edge.String())
	return nil
}

// Close releases the driver. The library can't be used afterwards.
func (l *Library) Close() error {
	return l.drv.Close()
}
