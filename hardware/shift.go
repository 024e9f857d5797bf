package hardware

import "lautenbacher.net/gowiring/util"

// levelIO is the part of a backend the bit-banged shifter needs.
type levelIO interface {
	DigitalRead(pin int) int
	DigitalWrite(pin, value int)
}

// shiftIn samples 8 bits from dPin, raising cPin before each sample and
// lowering it afterwards.
func shiftIn(io levelIO, dPin, cPin, order uint8) uint8 {
	var value uint8
	for i := 0; i < 8; i++ {
		io.DigitalWrite(int(cPin), High)
		bit := uint8(io.DigitalRead(int(dPin)) & 1)
		if order == MSBFirst {
			value |= bit << (7 - i)
		} else {
			value |= bit << i
		}
		io.DigitalWrite(int(cPin), Low)
	}
	return value
}

// shiftOut presents each bit on dPin and pulses cPin high then low.
func shiftOut(io levelIO, dPin, cPin, order, val uint8) {
	for i := 0; i < 8; i++ {
		n := uint(i)
		if order == MSBFirst {
			n = uint(7 - i)
		}
		io.DigitalWrite(int(dPin), util.Bit(val, n))
		io.DigitalWrite(int(cPin), High)
		io.DigitalWrite(int(cPin), Low)
	}
}
