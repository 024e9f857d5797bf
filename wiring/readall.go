package wiring

import "lautenbacher.net/gowiring/hardware"

// HeaderPins is the number of positions on the P1 header of current boards.
const HeaderPins = 40

// HeaderPin is one row of a readall listing. Power and ground positions
// have Gpio and Wpi set to -1.
type HeaderPin struct {
	Phys  int
	Name  string
	Gpio  int
	Wpi   int
	Alt   int
	Level Level
}

// HasGpio reports whether the position carries a GPIO.
func (h HeaderPin) HasGpio() bool { return h.Gpio >= 0 }

// ModeName is the readall label of the pin function, blank when unknown.
func (h HeaderPin) ModeName() string {
	if h.Alt < 0 || h.Alt >= len(hardware.AltNames) {
		return ""
	}
	return hardware.AltNames[h.Alt]
}

// ReadAll reads function and level of every header position.
func (l *Library) ReadAll() []HeaderPin {
	rev := l.drv.PiBoardRev()
	pins := make([]HeaderPin, 0, HeaderPins)
	for phys := 1; phys <= HeaderPins; phys++ {
		h := HeaderPin{
			Phys: phys,
			Name: hardware.HeaderName(rev, phys),
			Gpio: hardware.PhysToGpio(rev, phys),
			Wpi:  -1,
			Alt:  -1,
		}
		if h.HasGpio() {
			h.Wpi = hardware.GpioToWpi(rev, h.Gpio)
			if n := l.pinNumber(h); n >= 0 {
				h.Alt = l.drv.GetAlt(n)
				h.Level = LevelFromCode(l.drv.DigitalRead(n))
			}
		}
		pins = append(pins, h)
	}
	return pins
}

// pinNumber is the number of a header position in the library's numbering.
func (l *Library) pinNumber(h HeaderPin) int {
	switch l.cfg {
	case GpioNumbering, SysfsOnly:
		return h.Gpio
	case PhysicalNumbering:
		return h.Phys
	}
	return h.Wpi
}
