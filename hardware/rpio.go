package hardware

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
	"lautenbacher.net/gowiring/util"
)

func init() {
	Register(BackendRpio, func() Driver { return NewRpio() })
}

// Rpio drives the GPIO, PWM, clock and SPI blocks through go-rpio's
// /dev/gpiomem mapping. I2C goes through periph.io, serial through
// tarm/serial.
type Rpio struct {
	*native
	opened bool

	spiMu     sync.Mutex
	spiOpen   bool
	spiSpeeds map[int]int
}

func NewRpio() *Rpio {
	return &Rpio{
		native:    newNative(),
		spiSpeeds: make(map[int]int),
	}
}

func (r *Rpio) Name() string { return BackendRpio }

func (r *Rpio) Setup() int     { return r.open(numberingWpi) }
func (r *Rpio) SetupGpio() int { return r.open(numberingGpio) }
func (r *Rpio) SetupPhys() int { return r.open(numberingPhys) }
func (r *Rpio) SetupSys() int  { return r.open(numberingSys) }

func (r *Rpio) open(scheme numbering) int {
	slog.Info("Initialise GPIO via rpio...", "numbering", scheme.String())
	if err := rpio.Open(); err != nil {
		slog.Error("Failed to open rpio", "error", err)
		return -1
	}
	r.opened = true
	r.setup(scheme)
	return 0
}

// PinMode is ignored in sys mode, where pins are configured by the gpio
// utility before the program starts.
func (r *Rpio) PinMode(pin, mode int) {
	if r.isSys() {
		return
	}
	g := r.gpio(pin)
	if g < 0 {
		return
	}
	p := rpio.Pin(g)
	switch mode {
	case ModeInput:
		p.Input()
	case ModeOutput:
		p.Output()
	case ModePwmOutput:
		p.Pwm()
		_, divisor := r.pwmSettings()
		p.Freq(pwmBaseClock / divisor)
	case ModeGpioClock:
		p.Clock()
	default:
		slog.Warn("Unsupported pin mode", "pin", pin, "mode", mode)
		return
	}
	r.recordMode(g, mode)
}

func (r *Rpio) PullUpDnControl(pin, pud int) {
	if r.isSys() {
		return
	}
	g := r.gpio(pin)
	if g < 0 {
		return
	}
	switch pud {
	case PudOff:
		rpio.Pin(g).Pull(rpio.PullOff)
	case PudDown:
		rpio.Pin(g).Pull(rpio.PullDown)
	case PudUp:
		rpio.Pin(g).Pull(rpio.PullUp)
	default:
		slog.Warn("Unsupported resistor mode", "pin", pin, "pud", pud)
	}
}

func (r *Rpio) DigitalRead(pin int) int {
	g := r.gpio(pin)
	if g < 0 {
		return Low
	}
	if rpio.Pin(g).Read() == rpio.High {
		return High
	}
	return Low
}

func (r *Rpio) DigitalWrite(pin, value int) {
	g := r.gpio(pin)
	if g < 0 {
		return
	}
	if value == Low {
		rpio.Pin(g).Low()
	} else {
		rpio.Pin(g).High()
	}
}

func (r *Rpio) DigitalWriteByte(value int) {
	for i, g := range byteGpios(r.PiBoardRev()) {
		if util.Bit(uint8(value), uint(i)) == Low {
			rpio.Pin(g).Low()
		} else {
			rpio.Pin(g).High()
		}
	}
}

func (r *Rpio) PwmWrite(pin, value int) {
	if r.isSys() {
		return
	}
	g := r.gpio(pin)
	if g < 0 {
		return
	}
	rng, _ := r.pwmSettings()
	duty := uint32(0)
	if value > 0 {
		duty = uint32(value)
	}
	rpio.Pin(g).DutyCycle(min(duty, rng), rng)
}

// PwmSetClock re-clocks every pin already in PWM mode.
func (r *Rpio) PwmSetClock(divisor int) {
	if r.isSys() {
		return
	}
	r.mu.Lock()
	r.pwmDivisor = divisor
	r.mu.Unlock()
	_, divisor = r.pwmSettings()
	for _, g := range r.pinsInMode(ModePwmOutput) {
		rpio.Pin(g).Freq(pwmBaseClock / divisor)
	}
}

func (r *Rpio) GpioClockSet(pin, freq int) {
	g := r.gpio(pin)
	if g < 0 || freq <= 0 {
		return
	}
	rpio.Pin(g).Freq(freq)
}

// SetPadDrive is accepted but has no effect: go-rpio doesn't map the pad
// control registers.
func (r *Rpio) SetPadDrive(group, value int) {
	slog.Debug("Pad drive not available through rpio", "group", group, "value", value)
}

func (r *Rpio) ISR(pin, edge int, fn func()) int {
	g := r.gpio(pin)
	if g < 0 {
		return -1
	}
	p := rpio.Pin(g)
	p.Input()
	r.recordMode(g, ModeInput)
	switch edge {
	case EdgeFalling:
		p.Detect(rpio.FallEdge)
	case EdgeRising:
		p.Detect(rpio.RiseEdge)
	default:
		// EdgeSetup leaves the edge choice to whoever exported the pin;
		// with direct register access that means both.
		p.Detect(rpio.AnyEdge)
	}
	r.goISR(pin, func() bool {
		time.Sleep(isrPollInterval)
		return p.EdgeDetected()
	}, fn)
	slog.Debug("ISR registered", "pin", pin, "gpio", g, "edge", edgeName(edge))
	return 0
}

func (r *Rpio) SPISetup(channel, speed int) int {
	if channel < 0 || channel > 1 {
		return -1
	}
	r.spiMu.Lock()
	defer r.spiMu.Unlock()
	if !r.spiOpen {
		if err := rpio.SpiBegin(rpio.Spi0); err != nil {
			slog.Error("Failed to begin spi", "error", err)
			return -1
		}
		r.spiOpen = true
	}
	r.spiSpeeds[channel] = speed
	return channel
}

func (r *Rpio) SPIDataRW(channel int, data []byte) int {
	r.spiMu.Lock()
	defer r.spiMu.Unlock()
	speed, ok := r.spiSpeeds[channel]
	if !ok {
		return -1
	}
	rpio.SpiChipSelect(uint8(channel))
	rpio.SpiSpeed(speed)
	rpio.SpiExchange(data)
	return len(data)
}

func (r *Rpio) ShiftIn(dPin, cPin, order uint8) uint8 {
	return shiftIn(r, dPin, cPin, order)
}

func (r *Rpio) ShiftOut(dPin, cPin, order, val uint8) {
	shiftOut(r, dPin, cPin, order, val)
}

func (r *Rpio) Close() error {
	r.closeNative()
	for _, g := range r.pinsInMode(ModeInput) {
		rpio.Pin(g).Detect(rpio.NoEdge)
	}
	r.spiMu.Lock()
	if r.spiOpen {
		rpio.SpiEnd(rpio.Spi0)
		r.spiOpen = false
	}
	r.spiMu.Unlock()
	if !r.opened {
		return nil
	}
	r.opened = false
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("failed to close rpio: %w", err)
	}
	return nil
}
