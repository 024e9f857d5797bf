package wiring

import (
	"log/slog"

	"lautenbacher.net/gowiring/hardware"
)

// Pin is a handle on one pin. It remembers the mode it last applied and
// rejects operations that don't fit it without touching the hardware.
// Handles are independent: two handles for the same pin don't see each
// other's mode changes. A Pin is not safe for concurrent use.
type Pin struct {
	number int
	mode   Mode
	cfg    Configuration
	drv    hardware.Driver
	// gen counts SetMode calls; views hold the value they were made at.
	gen uint64
}

func (p *Pin) Number() int { return p.number }

func (p *Pin) Mode() Mode { return p.mode }

func (p *Pin) Configuration() Configuration { return p.cfg }

// SetMode applies mode. Input modes also apply their resistor state.
func (p *Pin) SetMode(mode Mode) error {
	if p.cfg == SysfsOnly {
		return configurationError("set_mode", p.number, "pin modes are fixed when exported through sysfs")
	}
	p.drv.PinMode(p.number, mode.Code())
	if mode.IsInput() {
		p.drv.PullUpDnControl(p.number, mode.Resistor().Code())
	}
	slog.Debug("Pin mode set", "pin", p.number, "mode", mode.String())
	p.mode = mode
	p.gen++
	return nil
}

// SetResistorMode changes the pull of a pin in Input mode.
func (p *Pin) SetResistorMode(r ResistorMode) error {
	if p.cfg == SysfsOnly {
		return configurationError("set_resistor_mode", p.number, "pulls are fixed when exported through sysfs")
	}
	if !p.mode.IsInput() {
		return illegalMode("set_resistor_mode", p.number, p.mode)
	}
	p.drv.PullUpDnControl(p.number, r.Code())
	p.mode = Input(r)
	return nil
}

// DigitalWrite requires Output mode.
func (p *Pin) DigitalWrite(level Level) error {
	if p.mode != Output {
		return illegalMode("digital_write", p.number, p.mode)
	}
	p.drv.DigitalWrite(p.number, level.Code())
	return nil
}

func (p *Pin) DigitalRead() Level {
	return LevelFromCode(p.drv.DigitalRead(p.number))
}

// AnalogRead reads an analog value through an extension; pins of the Pi
// itself have no ADC.
func (p *Pin) AnalogRead() int {
	return p.drv.AnalogRead(p.number)
}

func (p *Pin) AnalogWrite(value int) {
	p.drv.AnalogWrite(p.number, value)
}

// PwmWrite sets the duty cycle, 0 up to the range set with PwmSetRange.
func (p *Pin) PwmWrite(value int) error {
	if p.cfg == SysfsOnly {
		return configurationError("pwm_write", p.number, "no PWM control through sysfs")
	}
	p.drv.PwmWrite(p.number, value)
	return nil
}
