//go:build wiringpi && cgo

package hardware

/*
#cgo LDFLAGS: -lwiringPi
#include <stdlib.h>
#include <stdint.h>
#include <wiringPi.h>
#include <wiringPiI2C.h>
#include <wiringPiSPI.h>
#include <wiringSerial.h>
#include <wiringShift.h>

extern int gowiringISR(int pin, int edge);
*/
import "C"

import (
	"sync"
	"unsafe"
)

func init() {
	Register(BackendWiringPi, func() Driver { return WiringPi{} })
}

var (
	isrMu    sync.Mutex
	isrTable [64][]func()
)

//export goWiringISR
func goWiringISR(pin C.int) {
	isrMu.Lock()
	fns := isrTable[int(pin)&63]
	isrMu.Unlock()
	for _, fn := range fns {
		go fn()
	}
}

// WiringPi binds the installed libwiringPi. It only exists in binaries built
// with the wiringpi tag.
type WiringPi struct{}

func (WiringPi) Name() string { return BackendWiringPi }

func (WiringPi) Setup() int     { return int(C.wiringPiSetup()) }
func (WiringPi) SetupGpio() int { return int(C.wiringPiSetupGpio()) }
func (WiringPi) SetupPhys() int { return int(C.wiringPiSetupPhys()) }
func (WiringPi) SetupSys() int  { return int(C.wiringPiSetupSys()) }

func (WiringPi) PinMode(pin, mode int)        { C.pinMode(C.int(pin), C.int(mode)) }
func (WiringPi) PullUpDnControl(pin, pud int) { C.pullUpDnControl(C.int(pin), C.int(pud)) }
func (WiringPi) DigitalRead(pin int) int      { return int(C.digitalRead(C.int(pin))) }
func (WiringPi) DigitalWrite(pin, value int)  { C.digitalWrite(C.int(pin), C.int(value)) }
func (WiringPi) AnalogRead(pin int) int       { return int(C.analogRead(C.int(pin))) }
func (WiringPi) AnalogWrite(pin, value int)   { C.analogWrite(C.int(pin), C.int(value)) }
func (WiringPi) PwmWrite(pin, value int)      { C.pwmWrite(C.int(pin), C.int(value)) }
func (WiringPi) GpioClockSet(pin, freq int)   { C.gpioClockSet(C.int(pin), C.int(freq)) }
func (WiringPi) DigitalWriteByte(value int)   { C.digitalWriteByte(C.int(value)) }
func (WiringPi) PwmSetMode(mode int)          { C.pwmSetMode(C.int(mode)) }
func (WiringPi) PwmSetRange(rng uint32)       { C.pwmSetRange(C.uint(rng)) }
func (WiringPi) PwmSetClock(divisor int)      { C.pwmSetClock(C.int(divisor)) }
func (WiringPi) GetAlt(pin int) int           { return int(C.getAlt(C.int(pin))) }

func (WiringPi) PiBoardRev() int              { return int(C.piBoardRev()) }
func (WiringPi) WpiPinToGpio(pin int) int     { return int(C.wpiPinToGpio(C.int(pin))) }
func (WiringPi) PhysPinToGpio(pin int) int    { return int(C.physPinToGpio(C.int(pin))) }
func (WiringPi) SetPadDrive(group, value int) { C.setPadDrive(C.int(group), C.int(value)) }
func (WiringPi) PiHiPri(priority int) int     { return int(C.piHiPri(C.int(priority))) }

func (WiringPi) Millis() uint32              { return uint32(C.millis()) }
func (WiringPi) Micros() uint32              { return uint32(C.micros()) }
func (WiringPi) Delay(ms uint32)             { C.delay(C.uint(ms)) }
func (WiringPi) DelayMicroseconds(us uint32) { C.delayMicroseconds(C.uint(us)) }

// ISR keeps fn in a Go side table; the C side owns one trampoline per pin
// since wiringPi callbacks carry no argument.
func (WiringPi) ISR(pin, edge int, fn func()) int {
	if pin < 0 || pin > 63 {
		return -1
	}
	isrMu.Lock()
	first := len(isrTable[pin]) == 0
	isrTable[pin] = append(isrTable[pin], fn)
	isrMu.Unlock()
	if !first {
		return 0
	}
	status := int(C.gowiringISR(C.int(pin), C.int(edge)))
	if status < 0 {
		isrMu.Lock()
		isrTable[pin] = nil
		isrMu.Unlock()
	}
	return status
}

func (WiringPi) I2CSetup(devID int) int    { return int(C.wiringPiI2CSetup(C.int(devID))) }
func (WiringPi) I2CRead(fd int) int        { return int(C.wiringPiI2CRead(C.int(fd))) }
func (WiringPi) I2CWrite(fd, data int) int { return int(C.wiringPiI2CWrite(C.int(fd), C.int(data))) }
func (WiringPi) I2CReadReg8(fd, reg int) int {
	return int(C.wiringPiI2CReadReg8(C.int(fd), C.int(reg)))
}
func (WiringPi) I2CWriteReg8(fd, reg, data int) int {
	return int(C.wiringPiI2CWriteReg8(C.int(fd), C.int(reg), C.int(data)))
}
func (WiringPi) I2CReadReg16(fd, reg int) int {
	return int(C.wiringPiI2CReadReg16(C.int(fd), C.int(reg)))
}
func (WiringPi) I2CWriteReg16(fd, reg, data int) int {
	return int(C.wiringPiI2CWriteReg16(C.int(fd), C.int(reg), C.int(data)))
}

func (WiringPi) SPISetup(channel, speed int) int {
	return int(C.wiringPiSPISetup(C.int(channel), C.int(speed)))
}

func (WiringPi) SPIDataRW(channel int, data []byte) int {
	if len(data) == 0 {
		return 0
	}
	return int(C.wiringPiSPIDataRW(C.int(channel), (*C.uchar)(unsafe.Pointer(&data[0])), C.int(len(data))))
}

func (WiringPi) SerialOpen(device string, baud int) int {
	cs := C.CString(device)
	defer C.free(unsafe.Pointer(cs))
	return int(C.serialOpen(cs, C.int(baud)))
}

func (WiringPi) SerialClose(fd int)           { C.serialClose(C.int(fd)) }
func (WiringPi) SerialPutchar(fd int, c byte) { C.serialPutchar(C.int(fd), C.uchar(c)) }
func (WiringPi) SerialDataAvail(fd int) int   { return int(C.serialDataAvail(C.int(fd))) }
func (WiringPi) SerialGetchar(fd int) int     { return int(C.serialGetchar(C.int(fd))) }
func (WiringPi) SerialFlush(fd int)           { C.serialFlush(C.int(fd)) }

func (WiringPi) SerialPuts(fd int, s string) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	C.serialPuts(C.int(fd), cs)
}

func (WiringPi) ShiftIn(dPin, cPin, order uint8) uint8 {
	return uint8(C.shiftIn(C.uint8_t(dPin), C.uint8_t(cPin), C.uint8_t(order)))
}

func (WiringPi) ShiftOut(dPin, cPin, order, val uint8) {
	C.shiftOut(C.uint8_t(dPin), C.uint8_t(cPin), C.uint8_t(order), C.uint8_t(val))
}

// Close is a no-op, libwiringPi has no teardown.
func (WiringPi) Close() error { return nil }
