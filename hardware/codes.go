package hardware

import "time"

// Backend names understood by Open.
const (
	BackendSim      = "sim"
	BackendRpio     = "rpio"
	BackendPeriph   = "periph"
	BackendWiringPi = "wiringpi"
)

// Pin modes as passed to PinMode and reported by GetAlt.
const (
	ModeInput     = 0
	ModeOutput    = 1
	ModePwmOutput = 2
	ModeGpioClock = 3
)

// Resistor states for PullUpDnControl.
const (
	PudOff  = 0
	PudDown = 1
	PudUp   = 2
)

// Logic levels.
const (
	Low  = 0
	High = 1
)

// PWM generator modes.
const (
	PwmModeMarkSpace = 0
	PwmModeBalanced  = 1
)

// Interrupt edge selectors for ISR.
const (
	EdgeSetup   = 0
	EdgeFalling = 1
	EdgeRising  = 2
	EdgeBoth    = 3
)

// Bit orders for ShiftIn and ShiftOut.
const (
	LSBFirst = 0
	MSBFirst = 1
)

const (
	// SerialReadTimeout is how long SerialGetchar waits for a byte.
	SerialReadTimeout = 10 * time.Second

	// pwmBaseClock is the 19.2MHz oscillator feeding the PWM clock divider.
	pwmBaseClock = 19200000

	defaultPwmRange   = 1024
	defaultPwmDivisor = 32
	maxPriority       = 99
)

// Function select codes as reported by GetAlt, following the BCM2835
// GPFSEL encoding.
const (
	AltInput  = 0
	AltOutput = 1
	AltFunc5  = 2
	AltFunc4  = 3
	AltFunc0  = 4
	AltFunc1  = 5
	AltFunc2  = 6
	AltFunc3  = 7
)

// AltNames labels function select codes the way gpio readall does.
var AltNames = [8]string{"IN", "OUT", "ALT5", "ALT4", "ALT0", "ALT1", "ALT2", "ALT3"}

// altForMode returns the function select code a pinMode call leaves a GPIO
// in, -1 for unknown modes.
func altForMode(gpio, mode int) int {
	switch mode {
	case ModeInput:
		return AltInput
	case ModeOutput:
		return AltOutput
	case ModePwmOutput:
		if gpio == 18 || gpio == 19 {
			return AltFunc5
		}
		return AltFunc0
	case ModeGpioClock:
		if gpio == 20 || gpio == 21 {
			return AltFunc5
		}
		return AltFunc0
	}
	return -1
}
