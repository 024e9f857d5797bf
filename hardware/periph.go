package hardware

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
	"lautenbacher.net/gowiring/util"
)

func init() {
	Register(BackendPeriph, func() Driver { return NewPeriph() })
}

// edgeWaitTimeout bounds WaitForEdge so ISR goroutines notice Close.
const edgeWaitTimeout = 100 * time.Millisecond

// Periph drives pins through periph.io's registries. In sys mode pins come
// from the sysfs driver, which only sees GPIOs exported beforehand.
type Periph struct {
	*native

	pinMu sync.Mutex
	pins  map[int]gpio.PinIO
	pulls map[int]gpio.Pull

	spiMu    sync.Mutex
	spiPorts map[int]spi.PortCloser
	spiConns map[int]spi.Conn
}

func NewPeriph() *Periph {
	return &Periph{
		native:   newNative(),
		pins:     make(map[int]gpio.PinIO),
		pulls:    make(map[int]gpio.Pull),
		spiPorts: make(map[int]spi.PortCloser),
		spiConns: make(map[int]spi.Conn),
	}
}

func (p *Periph) Name() string { return BackendPeriph }

func (p *Periph) Setup() int     { return p.open(numberingWpi) }
func (p *Periph) SetupGpio() int { return p.open(numberingGpio) }
func (p *Periph) SetupPhys() int { return p.open(numberingPhys) }
func (p *Periph) SetupSys() int  { return p.open(numberingSys) }

func (p *Periph) open(scheme numbering) int {
	slog.Info("Initialise GPIO via periph.io...", "numbering", scheme.String())
	if _, err := host.Init(); err != nil {
		slog.Error("Failed to init periph", "error", err)
		return -1
	}
	p.setup(scheme)
	return 0
}

func (p *Periph) pin(pin int) gpio.PinIO {
	g := p.gpio(pin)
	if g < 0 {
		return nil
	}
	return p.bcm(g, pin)
}

// bcm looks up a pin by Broadcom number; pin is only used for logging.
func (p *Periph) bcm(g, pin int) gpio.PinIO {
	p.pinMu.Lock()
	defer p.pinMu.Unlock()
	if io, ok := p.pins[g]; ok {
		return io
	}
	var io gpio.PinIO
	if p.isSys() {
		if sp, ok := sysfs.Pins[g]; ok {
			io = sp
		}
	} else {
		io = gpioreg.ByName(fmt.Sprintf("GPIO%d", g))
	}
	if io == nil {
		slog.Warn("Failed to find pin", "pin", pin, "gpio", g)
		return nil
	}
	p.pins[g] = io
	return io
}

func (p *Periph) pull(g int) gpio.Pull {
	p.pinMu.Lock()
	defer p.pinMu.Unlock()
	if pull, ok := p.pulls[g]; ok {
		return pull
	}
	return gpio.PullNoChange
}

func (p *Periph) PinMode(pin, mode int) {
	if p.isSys() {
		return
	}
	io := p.pin(pin)
	if io == nil {
		return
	}
	g := p.gpio(pin)
	var err error
	switch mode {
	case ModeInput:
		err = io.In(p.pull(g), gpio.NoEdge)
	case ModeOutput:
		err = io.Out(io.Read())
	case ModePwmOutput, ModeGpioClock:
		// Started by PwmWrite and GpioClockSet, which carry the duty and
		// frequency periph needs.
	default:
		slog.Warn("Unsupported pin mode", "pin", pin, "mode", mode)
		return
	}
	if err != nil {
		slog.Error("Failed to set pin mode", "pin", pin, "mode", mode, "error", err)
		return
	}
	p.recordMode(g, mode)
}

func (p *Periph) PullUpDnControl(pin, pud int) {
	if p.isSys() {
		return
	}
	io := p.pin(pin)
	if io == nil {
		return
	}
	var pull gpio.Pull
	switch pud {
	case PudOff:
		pull = gpio.Float
	case PudDown:
		pull = gpio.PullDown
	case PudUp:
		pull = gpio.PullUp
	default:
		slog.Warn("Unsupported resistor mode", "pin", pin, "pud", pud)
		return
	}
	g := p.gpio(pin)
	p.pinMu.Lock()
	p.pulls[g] = pull
	p.pinMu.Unlock()
	if err := io.In(pull, gpio.NoEdge); err != nil {
		slog.Error("Failed to set pull", "pin", pin, "error", err)
	}
}

func (p *Periph) DigitalRead(pin int) int {
	io := p.pin(pin)
	if io == nil {
		return Low
	}
	if io.Read() == gpio.High {
		return High
	}
	return Low
}

func (p *Periph) DigitalWrite(pin, value int) {
	io := p.pin(pin)
	if io == nil {
		return
	}
	if err := io.Out(gpio.Level(value != Low)); err != nil {
		slog.Error("Failed to write pin", "pin", pin, "error", err)
	}
}

func (p *Periph) DigitalWriteByte(value int) {
	for i, g := range byteGpios(p.PiBoardRev()) {
		io := p.bcm(g, i)
		if io == nil {
			continue
		}
		if err := io.Out(gpio.Level(util.Bit(uint8(value), uint(i)) != Low)); err != nil {
			slog.Error("Failed to write pin", "gpio", g, "error", err)
		}
	}
}

func (p *Periph) PwmWrite(pin, value int) {
	if p.isSys() {
		return
	}
	io := p.pin(pin)
	if io == nil {
		return
	}
	rng, divisor := p.pwmSettings()
	v := int64(value)
	if v < 0 {
		v = 0
	}
	if v > int64(rng) {
		v = int64(rng)
	}
	duty := gpio.Duty(v * int64(gpio.DutyMax) / int64(rng))
	freq := physic.Frequency(pwmBaseClock/divisor/int(rng)) * physic.Hertz
	if err := io.PWM(duty, freq); err != nil {
		slog.Error("Failed to write pwm", "pin", pin, "value", value, "error", err)
	}
}

// PwmSetClock takes effect at the next PwmWrite.
func (p *Periph) PwmSetClock(divisor int) {
	if p.isSys() {
		return
	}
	p.mu.Lock()
	p.pwmDivisor = divisor
	p.mu.Unlock()
}

func (p *Periph) GpioClockSet(pin, freq int) {
	io := p.pin(pin)
	if io == nil || freq <= 0 {
		return
	}
	if err := io.PWM(gpio.DutyHalf, physic.Frequency(freq)*physic.Hertz); err != nil {
		slog.Error("Failed to start gpio clock", "pin", pin, "freq", freq, "error", err)
	}
}

func (p *Periph) SetPadDrive(group, value int) {
	slog.Debug("Pad drive not available through periph", "group", group, "value", value)
}

func (p *Periph) ISR(pin, edge int, fn func()) int {
	io := p.pin(pin)
	if io == nil {
		return -1
	}
	var e gpio.Edge
	switch edge {
	case EdgeFalling:
		e = gpio.FallingEdge
	case EdgeRising:
		e = gpio.RisingEdge
	default:
		e = gpio.BothEdges
	}
	g := p.gpio(pin)
	if err := io.In(p.pull(g), e); err != nil {
		slog.Error("Failed to enable edge detection", "pin", pin, "error", err)
		return -1
	}
	p.recordMode(g, ModeInput)
	p.goISR(pin, func() bool {
		return io.WaitForEdge(edgeWaitTimeout)
	}, fn)
	slog.Debug("ISR registered", "pin", pin, "gpio", g, "edge", edgeName(edge))
	return 0
}

func (p *Periph) SPISetup(channel, speed int) int {
	if channel < 0 || channel > 1 {
		return -1
	}
	p.spiMu.Lock()
	defer p.spiMu.Unlock()
	if old, ok := p.spiPorts[channel]; ok {
		old.Close()
	}
	port, err := spireg.Open(fmt.Sprintf("/dev/spidev0.%d", channel))
	if err != nil {
		slog.Error("Failed to open spi", "channel", channel, "error", err)
		return -1
	}
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		slog.Error("Failed to connect to spi device", "channel", channel, "error", err)
		return -1
	}
	p.spiPorts[channel] = port
	p.spiConns[channel] = conn
	return channel
}

func (p *Periph) SPIDataRW(channel int, data []byte) int {
	p.spiMu.Lock()
	defer p.spiMu.Unlock()
	conn, ok := p.spiConns[channel]
	if !ok {
		return -1
	}
	read := make([]byte, len(data))
	if err := conn.Tx(data, read); err != nil {
		slog.Error("SPI exchange failed", "channel", channel, "error", err)
		return -1
	}
	copy(data, read)
	return len(data)
}

func (p *Periph) ShiftIn(dPin, cPin, order uint8) uint8 {
	return shiftIn(p, dPin, cPin, order)
}

func (p *Periph) ShiftOut(dPin, cPin, order, val uint8) {
	shiftOut(p, dPin, cPin, order, val)
}

func (p *Periph) Close() error {
	p.closeNative()
	var firstErr error
	p.spiMu.Lock()
	for ch, port := range p.spiPorts {
		if err := port.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close spi channel %d: %w", ch, err)
		}
	}
	p.spiPorts = make(map[int]spi.PortCloser)
	p.spiConns = make(map[int]spi.Conn)
	p.spiMu.Unlock()

	p.pinMu.Lock()
	defer p.pinMu.Unlock()
	for g, io := range p.pins {
		if err := io.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to halt gpio %d: %w", g, err)
		}
	}
	return firstErr
}
