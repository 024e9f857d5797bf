package wiring

import "lautenbacher.net/gowiring/hardware"

// ShiftOrder is the bit order on the data line.
type ShiftOrder uint8

const (
	LSBFirst ShiftOrder = hardware.LSBFirst
	MSBFirst ShiftOrder = hardware.MSBFirst
)

func (o ShiftOrder) String() string {
	if o == MSBFirst {
		return "msb_first"
	}
	return "lsb_first"
}

// ShiftDevice is a shift register on a data and clock pin pair.
type ShiftDevice struct {
	drv   hardware.Driver
	data  uint8
	clock uint8
	order ShiftOrder
}

// NewShiftDevice binds a shift register. The pins need to be set up by the
// caller: clock as output, data as output or input depending on direction.
func (l *Library) NewShiftDevice(data, clock int, order ShiftOrder) *ShiftDevice {
	return &ShiftDevice{drv: l.drv, data: uint8(data), clock: uint8(clock), order: order}
}

func (d *ShiftDevice) ShiftIn() byte {
	return d.drv.ShiftIn(d.data, d.clock, uint8(d.order))
}

func (d *ShiftDevice) ShiftOut(value byte) {
	d.drv.ShiftOut(d.data, d.clock, uint8(d.order), value)
}
