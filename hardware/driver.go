// Package hardware is the low-level access layer behind package wiring.
//
// The Driver surface mirrors the wiringPi C API: arguments are
// plain pin numbers and integer codes, results are integer status codes or
// raw data. Translating those codes into typed values and errors is the job
// of package wiring, never of a backend.
package hardware

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Setupper performs the one-time initialisation for a pin numbering scheme.
// Every call returns 0 on success and a negative value on failure.
type Setupper interface {
	Setup() int
	SetupGpio() int
	SetupPhys() int
	SetupSys() int
}

// GPIO is the per-pin surface plus the PWM generator controls.
type GPIO interface {
	PinMode(pin, mode int)
	PullUpDnControl(pin, pud int)
	DigitalRead(pin int) int
	DigitalWrite(pin, value int)
	AnalogRead(pin int) int
	AnalogWrite(pin, value int)
	PwmWrite(pin, value int)
	GpioClockSet(pin, freq int)
	DigitalWriteByte(value int)
	PwmSetMode(mode int)
	PwmSetRange(rng uint32)
	PwmSetClock(divisor int)
	// GetAlt reports the function a pin is currently set to, or -1 when the
	// backend cannot tell.
	GetAlt(pin int) int
}

// Board covers board identification and process level controls.
type Board interface {
	PiBoardRev() int
	WpiPinToGpio(pin int) int
	PhysPinToGpio(pin int) int
	SetPadDrive(group, value int)
	PiHiPri(priority int) int
}

// Clock reports and spends time relative to setup.
type Clock interface {
	Millis() uint32
	Micros() uint32
	Delay(ms uint32)
	DelayMicroseconds(us uint32)
}

// Interrupts registers a callback for edges on a pin. The callback runs on
// its own goroutine.
type Interrupts interface {
	ISR(pin, edge int, fn func()) int
}

// I2C follows wiringPiI2C: setup returns a descriptor or -1.
type I2C interface {
	I2CSetup(devID int) int
	I2CRead(fd int) int
	I2CWrite(fd, data int) int
	I2CReadReg8(fd, reg int) int
	I2CWriteReg8(fd, reg, data int) int
	I2CReadReg16(fd, reg int) int
	I2CWriteReg16(fd, reg, data int) int
}

// SPI follows wiringPiSPI: data is exchanged in place.
type SPI interface {
	SPISetup(channel, speed int) int
	SPIDataRW(channel int, data []byte) int
}

// Serial follows wiringSerial. SerialGetchar blocks for at most
// SerialReadTimeout and returns -1 when nothing arrived.
type Serial interface {
	SerialOpen(device string, baud int) int
	SerialClose(fd int)
	SerialPutchar(fd int, c byte)
	SerialPuts(fd int, s string)
	SerialDataAvail(fd int) int
	SerialGetchar(fd int) int
	SerialFlush(fd int)
}

// Shifter clocks 8 bits in or out on a data/clock pin pair.
type Shifter interface {
	ShiftIn(dPin, cPin, order uint8) uint8
	ShiftOut(dPin, cPin, order, val uint8)
}

// Driver is the complete collaborator surface.
type Driver interface {
	Setupper
	GPIO
	Board
	Clock
	Interrupts
	I2C
	SPI
	Serial
	Shifter
	Name() string
	Close() error
}

var (
	registryMu sync.Mutex
	registry   = map[string]func() Driver{}
)

// Register makes a backend available to Open. Backends call it from init.
func Register(name string, factory func() Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("hardware: backend registered twice: " + name)
	}
	registry[name] = factory
}

// Open returns a fresh, not yet set up, instance of the named backend.
func Open(name string) (Driver, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown hardware backend %q (available: %v)", name, Backends())
	}
	slog.Debug("Opening hardware backend", "backend", name)
	return factory(), nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default prefers the native wiringPi binding when it was compiled in and
// falls back to go-rpio otherwise.
func Default() Driver {
	for _, name := range []string{BackendWiringPi, BackendRpio} {
		if d, err := Open(name); err == nil {
			return d
		}
	}
	return NewSim()
}
