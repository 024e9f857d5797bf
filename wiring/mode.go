package wiring

import (
	"fmt"
	"strings"

	"lautenbacher.net/gowiring/hardware"
)

// Configuration selects the pin numbering scheme and how much control the
// library has over pin setup. It is fixed by the first call to New.
type Configuration int

const (
	// Default uses wiringPi pin numbers.
	Default Configuration = iota
	// GpioNumbering uses Broadcom GPIO numbers.
	GpioNumbering
	// PhysicalNumbering uses positions on the P1 header.
	PhysicalNumbering
	// SysfsOnly uses Broadcom numbers on pins exported through
	// /sys/class/gpio beforehand. Modes and pulls can't be changed.
	SysfsOnly
)

func (c Configuration) String() string {
	switch c {
	case Default:
		return "default"
	case GpioNumbering:
		return "gpio"
	case PhysicalNumbering:
		return "phys"
	case SysfsOnly:
		return "sys"
	}
	return fmt.Sprintf("Configuration(%d)", int(c))
}

// ParseConfiguration accepts the names the gpio utility uses.
func ParseConfiguration(s string) (Configuration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "def", "default", "wpi":
		return Default, nil
	case "gpio", "bcm":
		return GpioNumbering, nil
	case "phys", "physical":
		return PhysicalNumbering, nil
	case "sys", "sysfs":
		return SysfsOnly, nil
	}
	return Default, fmt.Errorf("unknown numbering %q (use wpi, gpio, phys or sys)", s)
}

// ResistorMode is the internal pull resistor state of an input.
type ResistorMode int

const (
	PullNone ResistorMode = iota
	PullDown
	PullUp
)

func (r ResistorMode) Code() int {
	switch r {
	case PullDown:
		return hardware.PudDown
	case PullUp:
		return hardware.PudUp
	}
	return hardware.PudOff
}

func (r ResistorMode) String() string {
	switch r {
	case PullDown:
		return "pull_down"
	case PullUp:
		return "pull_up"
	}
	return "pull_none"
}

type modeKind uint8

const (
	kindOutput modeKind = iota
	kindInput
	kindPwmOutput
	kindClockOutput
)

// Mode is what a pin is set up for. Input carries its resistor state, the
// other modes carry nothing. The zero Mode is Output.
type Mode struct {
	kind modeKind
	pull ResistorMode
}

var (
	Output      = Mode{kind: kindOutput}
	PwmOutput   = Mode{kind: kindPwmOutput}
	ClockOutput = Mode{kind: kindClockOutput}
)

func Input(r ResistorMode) Mode {
	return Mode{kind: kindInput, pull: r}
}

func (m Mode) IsInput() bool { return m.kind == kindInput }

// Resistor is PullNone for every mode but Input.
func (m Mode) Resistor() ResistorMode {
	if m.kind != kindInput {
		return PullNone
	}
	return m.pull
}

// Code is the driver's pinMode value.
func (m Mode) Code() int {
	switch m.kind {
	case kindInput:
		return hardware.ModeInput
	case kindPwmOutput:
		return hardware.ModePwmOutput
	case kindClockOutput:
		return hardware.ModeGpioClock
	}
	return hardware.ModeOutput
}

func (m Mode) String() string {
	switch m.kind {
	case kindInput:
		return "input(" + m.pull.String() + ")"
	case kindPwmOutput:
		return "pwm_output"
	case kindClockOutput:
		return "clock_output"
	}
	return "output"
}

// Level is a digital logic level.
type Level int

const (
	Low Level = iota
	High
)

// LevelFromCode maps 0 to Low and anything else to High.
func LevelFromCode(v int) Level {
	if v == hardware.Low {
		return Low
	}
	return High
}

func (l Level) Code() int {
	if l == Low {
		return hardware.Low
	}
	return hardware.High
}

func (l Level) String() string {
	if l == Low {
		return "low"
	}
	return "high"
}

// PwmMode selects how the PWM generator spreads the duty cycle.
type PwmMode int

const (
	PwmMarkSpace PwmMode = iota
	PwmBalanced
)

func (m PwmMode) Code() int {
	if m == PwmMarkSpace {
		return hardware.PwmModeMarkSpace
	}
	return hardware.PwmModeBalanced
}

// EdgeType selects which transitions trigger an interrupt callback.
// EdgeSetup leaves the edge as configured outside the process.
type EdgeType int

const (
	EdgeSetup EdgeType = iota
	EdgeFalling
	EdgeRising
	EdgeBoth
)

func (e EdgeType) Code() int {
	switch e {
	case EdgeFalling:
		return hardware.EdgeFalling
	case EdgeRising:
		return hardware.EdgeRising
	case EdgeBoth:
		return hardware.EdgeBoth
	}
	return hardware.EdgeSetup
}

func (e EdgeType) String() string {
	switch e {
	case EdgeFalling:
		return "falling"
	case EdgeRising:
		return "rising"
	case EdgeBoth:
		return "both"
	}
	return "setup"
}

// ThreadPriority is a real-time scheduling priority, 0 to 99.
type ThreadPriority int

const MaxThreadPriority ThreadPriority = 99
