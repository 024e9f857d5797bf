package hardware

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"lautenbacher.net/gowiring/util"
)

func init() {
	Register(BackendSim, func() Driver { return NewSim() })
}

// SimPin is the simulated state of one pin. Mode is -1 until PinMode ran.
type SimPin struct {
	Mode    int
	Pull    int
	Level   int
	Analog  int
	Pwm     int
	ClockHz int
}

// Call records one invocation of the Driver surface.
type Call struct {
	Op   string
	Args []int
}

type simISR struct {
	edge int
	fn   func()
}

// simShiftReg models an 8 bit shift register hanging off a data/clock pair:
// while the data pin is an output it captures a bit on every rising clock
// edge, while the data pin is an input it presents captured bits back in
// the same order.
type simShiftReg struct {
	data int
	bits deque.Deque[int]
}

// Sim is an in-memory board. It needs no hardware and no privileges, which
// makes it the backend for tests and for trying the command line tools on a
// workstation. Serial devices are looped back, SPI echoes unless a handler
// is installed, and I2C devices are plain register files.
type Sim struct {
	*serialTable
	epochClock

	mu         sync.Mutex
	scheme     numbering
	setups     int
	rev        int
	pins       map[int]*SimPin
	calls      []Call
	failures   map[string][]int
	pwmMode    int
	pwmRange   uint32
	pwmDivisor int
	pads       map[int]int
	priority   int
	isrs       map[int][]simISR
	links      map[int][]int
	shiftRegs  map[int]*simShiftReg
	i2cDevs    map[int]int
	i2cRegs    map[int]map[int]byte
	i2cPtr     map[int]int
	nextFD     int
	spiSpeeds  map[int]int
	spiHandler map[int]func([]byte) []byte
	closed     bool
}

func NewSim() *Sim {
	s := &Sim{
		rev:        2,
		pins:       make(map[int]*SimPin),
		failures:   make(map[string][]int),
		pwmMode:    PwmModeBalanced,
		pwmRange:   defaultPwmRange,
		pwmDivisor: defaultPwmDivisor,
		pads:       make(map[int]int),
		isrs:       make(map[int][]simISR),
		links:      make(map[int][]int),
		shiftRegs:  make(map[int]*simShiftReg),
		i2cDevs:    make(map[int]int),
		i2cRegs:    make(map[int]map[int]byte),
		i2cPtr:     make(map[int]int),
		nextFD:     3,
		spiSpeeds:  make(map[int]int),
		spiHandler: make(map[int]func([]byte) []byte),
	}
	s.serialTable = newSerialTable(func(device string, baud int) (io.ReadWriteCloser, error) {
		return newLoopbackPort(), nil
	})
	return s
}

func (s *Sim) Name() string { return BackendSim }

// record must be called with s.mu held.
func (s *Sim) record(op string, args ...int) {
	s.calls = append(s.calls, Call{Op: op, Args: args})
}

// failure pops a status queued by FailNext, must be called with s.mu held.
func (s *Sim) failure(op string) (int, bool) {
	queue := s.failures[op]
	if len(queue) == 0 {
		return 0, false
	}
	s.failures[op] = queue[1:]
	return queue[0], true
}

// FailNext makes the next call of op return status instead of succeeding.
// Only ops that report a status can fail.
func (s *Sim) FailNext(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], status)
}

// Calls returns a copy of the call log.
func (s *Sim) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts logged invocations of op.
func (s *Sim) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *Sim) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// SetupCount reports how many setup calls reached the board.
func (s *Sim) SetupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setups
}

// Numbering names the scheme of the last successful setup.
func (s *Sim) Numbering() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme.String()
}

// Pin returns a copy of a pin's state.
func (s *Sim) Pin(pin int) SimPin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.pinLocked(pin)
}

func (s *Sim) pinLocked(pin int) *SimPin {
	p, ok := s.pins[pin]
	if !ok {
		p = &SimPin{Mode: -1}
		s.pins[pin] = p
	}
	return p
}

func (s *Sim) SetBoardRev(rev int) {
	s.mu.Lock()
	s.rev = rev
	s.mu.Unlock()
}

// SetSerialTimeout shortens the getchar timeout for tests.
func (s *Sim) SetSerialTimeout(d time.Duration) {
	s.serialTable.mu.Lock()
	s.serialTable.timeout = d
	s.serialTable.mu.Unlock()
}

// SetInput drives a pin from outside the board, firing matching ISRs.
func (s *Sim) SetInput(pin, level int) {
	s.mu.Lock()
	fire := s.driveLocked(pin, level)
	s.mu.Unlock()
	run(fire)
}

// SetAnalog sets what AnalogRead returns for a pin.
func (s *Sim) SetAnalog(pin, value int) {
	s.mu.Lock()
	s.pinLocked(pin).Analog = value
	s.mu.Unlock()
}

// Connect wires output pin from to input pin to.
func (s *Sim) Connect(from, to int) {
	s.mu.Lock()
	s.links[from] = append(s.links[from], to)
	s.mu.Unlock()
}

// AttachShiftRegister hangs a simulated shift register off a data/clock
// pair.
func (s *Sim) AttachShiftRegister(dataPin, clockPin int) {
	s.mu.Lock()
	s.shiftRegs[clockPin] = &simShiftReg{data: dataPin}
	s.mu.Unlock()
}

// SetI2CRegister presets a register of the device at devID.
func (s *Sim) SetI2CRegister(devID, reg int, value byte) {
	s.mu.Lock()
	s.regsLocked(devID)[reg] = value
	s.mu.Unlock()
}

// I2CRegister reads back a register of the device at devID.
func (s *Sim) I2CRegister(devID, reg int) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regsLocked(devID)[reg]
}

// SetSPIHandler answers exchanges on a channel; the default echoes.
func (s *Sim) SetSPIHandler(channel int, h func(tx []byte) []byte) {
	s.mu.Lock()
	s.spiHandler[channel] = h
	s.mu.Unlock()
}

// PadDrive reports the last drive strength set for a group.
func (s *Sim) PadDrive(group int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pads[group]
}

// PwmSettings reports the generator mode, range and clock divisor.
func (s *Sim) PwmSettings() (mode int, rng uint32, divisor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pwmMode, s.pwmRange, s.pwmDivisor
}

// Priority reports the last thread priority requested.
func (s *Sim) Priority() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priority
}

func run(fns []func()) {
	for _, fn := range fns {
		go fn()
	}
}

// driveLocked sets a pin's level and returns the ISR callbacks the change
// triggers, including those of linked pins.
func (s *Sim) driveLocked(pin, level int) []func() {
	if level != Low {
		level = High
	}
	p := s.pinLocked(pin)
	old := p.Level
	p.Level = level
	if old == level {
		return nil
	}
	var fire []func()
	for _, isr := range s.isrs[pin] {
		switch {
		case isr.edge == EdgeRising && level == High,
			isr.edge == EdgeFalling && level == Low,
			isr.edge == EdgeBoth, isr.edge == EdgeSetup:
			fire = append(fire, isr.fn)
		}
	}
	for _, to := range s.links[pin] {
		fire = append(fire, s.driveLocked(to, level)...)
	}
	if reg, ok := s.shiftRegs[pin]; ok && level == High {
		data := s.pinLocked(reg.data)
		if data.Mode == ModeInput {
			if reg.bits.Len() > 0 {
				fire = append(fire, s.driveLocked(reg.data, reg.bits.PopFront())...)
			}
		} else {
			reg.bits.PushBack(data.Level)
			if reg.bits.Len() > 8 {
				reg.bits.PopFront()
			}
		}
	}
	return fire
}

func (s *Sim) setup(op string, scheme numbering) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(op)
	if status, failed := s.failure(op); failed {
		return status
	}
	s.setups++
	s.scheme = scheme
	s.start()
	slog.Info("Simulated board set up", "numbering", scheme.String())
	return 0
}

func (s *Sim) Setup() int     { return s.setup("Setup", numberingWpi) }
func (s *Sim) SetupGpio() int { return s.setup("SetupGpio", numberingGpio) }
func (s *Sim) SetupPhys() int { return s.setup("SetupPhys", numberingPhys) }
func (s *Sim) SetupSys() int  { return s.setup("SetupSys", numberingSys) }

func (s *Sim) PinMode(pin, mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PinMode", pin, mode)
	if s.scheme == numberingSys {
		return
	}
	s.pinLocked(pin).Mode = mode
}

func (s *Sim) PullUpDnControl(pin, pud int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PullUpDnControl", pin, pud)
	if s.scheme == numberingSys {
		return
	}
	p := s.pinLocked(pin)
	p.Pull = pud
	if p.Mode == ModeInput {
		switch pud {
		case PudUp:
			p.Level = High
		case PudDown:
			p.Level = Low
		}
	}
}

func (s *Sim) DigitalRead(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DigitalRead", pin)
	return s.pinLocked(pin).Level
}

// DigitalWrite only moves the level of pins not configured as inputs.
func (s *Sim) DigitalWrite(pin, value int) {
	s.mu.Lock()
	s.record("DigitalWrite", pin, value)
	var fire []func()
	if s.pinLocked(pin).Mode != ModeInput {
		fire = s.driveLocked(pin, value)
	}
	s.mu.Unlock()
	run(fire)
}

func (s *Sim) AnalogRead(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("AnalogRead", pin)
	return s.pinLocked(pin).Analog
}

func (s *Sim) AnalogWrite(pin, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("AnalogWrite", pin, value)
	s.pinLocked(pin).Analog = value
}

func (s *Sim) PwmWrite(pin, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PwmWrite", pin, value)
	if s.scheme == numberingSys {
		return
	}
	s.pinLocked(pin).Pwm = value
}

func (s *Sim) GpioClockSet(pin, freq int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GpioClockSet", pin, freq)
	s.pinLocked(pin).ClockHz = freq
}

func (s *Sim) DigitalWriteByte(value int) {
	s.mu.Lock()
	s.record("DigitalWriteByte", value)
	var fire []func()
	for i, g := range byteGpios(s.rev) {
		pin := untranslate(s.scheme, s.rev, g)
		if pin < 0 {
			continue
		}
		fire = append(fire, s.driveLocked(pin, util.Bit(uint8(value), uint(i)))...)
	}
	s.mu.Unlock()
	run(fire)
}

func (s *Sim) PwmSetMode(mode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PwmSetMode", mode)
	if s.scheme != numberingSys {
		s.pwmMode = mode
	}
}

func (s *Sim) PwmSetRange(rng uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PwmSetRange", int(rng))
	if s.scheme != numberingSys {
		s.pwmRange = rng
	}
}

func (s *Sim) PwmSetClock(divisor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PwmSetClock", divisor)
	if s.scheme != numberingSys {
		s.pwmDivisor = divisor
	}
}

// GetAlt reports the function select code matching the last PinMode.
func (s *Sim) GetAlt(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return altForMode(translate(s.scheme, s.rev, pin), s.pinLocked(pin).Mode)
}

func (s *Sim) PiBoardRev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Sim) WpiPinToGpio(pin int) int {
	return WpiToGpio(s.PiBoardRev(), pin)
}

func (s *Sim) PhysPinToGpio(pin int) int {
	return PhysToGpio(s.PiBoardRev(), pin)
}

func (s *Sim) SetPadDrive(group, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetPadDrive", group, value)
	if s.scheme != numberingSys {
		s.pads[group] = value
	}
}

func (s *Sim) PiHiPri(priority int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PiHiPri", priority)
	if status, failed := s.failure("PiHiPri"); failed {
		return status
	}
	s.priority = priority
	return 0
}

func (s *Sim) ISR(pin, edge int, fn func()) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ISR", pin, edge)
	if status, failed := s.failure("ISR"); failed {
		return status
	}
	s.isrs[pin] = append(s.isrs[pin], simISR{edge: edge, fn: fn})
	return 0
}

func (s *Sim) regsLocked(devID int) map[int]byte {
	regs, ok := s.i2cRegs[devID]
	if !ok {
		regs = make(map[int]byte)
		s.i2cRegs[devID] = regs
	}
	return regs
}

func (s *Sim) I2CSetup(devID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("I2CSetup", devID)
	if status, failed := s.failure("I2CSetup"); failed {
		return status
	}
	fd := s.nextFD
	s.nextFD++
	s.i2cDevs[fd] = devID
	s.regsLocked(devID)
	return fd
}

// i2cOp resolves fd and applies a queued failure, must be called with s.mu
// held.
func (s *Sim) i2cOp(op string, fd int, args ...int) (int, int) {
	s.record(op, append([]int{fd}, args...)...)
	if status, failed := s.failure(op); failed {
		return 0, status
	}
	devID, ok := s.i2cDevs[fd]
	if !ok {
		return 0, -1
	}
	return devID, 0
}

func (s *Sim) I2CRead(fd int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CRead", fd)
	if status < 0 {
		return status
	}
	return int(s.regsLocked(devID)[s.i2cPtr[devID]])
}

// I2CWrite sets the device's register pointer, the common convention for
// single byte writes.
func (s *Sim) I2CWrite(fd, data int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CWrite", fd, data)
	if status < 0 {
		return status
	}
	s.i2cPtr[devID] = data & 0xff
	return 0
}

func (s *Sim) I2CReadReg8(fd, reg int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CReadReg8", fd, reg)
	if status < 0 {
		return status
	}
	return int(s.regsLocked(devID)[reg])
}

func (s *Sim) I2CWriteReg8(fd, reg, data int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CWriteReg8", fd, reg, data)
	if status < 0 {
		return status
	}
	s.regsLocked(devID)[reg] = byte(data)
	return 0
}

func (s *Sim) I2CReadReg16(fd, reg int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CReadReg16", fd, reg)
	if status < 0 {
		return status
	}
	regs := s.regsLocked(devID)
	return int(regs[reg]) | int(regs[reg+1])<<8
}

func (s *Sim) I2CWriteReg16(fd, reg, data int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	devID, status := s.i2cOp("I2CWriteReg16", fd, reg, data)
	if status < 0 {
		return status
	}
	regs := s.regsLocked(devID)
	regs[reg] = byte(data)
	regs[reg+1] = byte(data >> 8)
	return 0
}

func (s *Sim) SPISetup(channel, speed int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SPISetup", channel, speed)
	if status, failed := s.failure("SPISetup"); failed {
		return status
	}
	if channel < 0 || channel > 1 {
		return -1
	}
	s.spiSpeeds[channel] = speed
	return channel
}

func (s *Sim) SPIDataRW(channel int, data []byte) int {
	s.mu.Lock()
	s.record("SPIDataRW", channel, len(data))
	if status, failed := s.failure("SPIDataRW"); failed {
		s.mu.Unlock()
		return status
	}
	if _, ok := s.spiSpeeds[channel]; !ok {
		s.mu.Unlock()
		return -1
	}
	h := s.spiHandler[channel]
	s.mu.Unlock()
	if h != nil {
		copy(data, h(slices.Clone(data)))
	}
	return len(data)
}

func (s *Sim) SerialOpen(device string, baud int) int {
	s.mu.Lock()
	s.record("SerialOpen", baud)
	status, failed := s.failure("SerialOpen")
	s.mu.Unlock()
	if failed {
		return status
	}
	return s.serialTable.SerialOpen(device, baud)
}

func (s *Sim) SerialDataAvail(fd int) int {
	s.mu.Lock()
	s.record("SerialDataAvail", fd)
	status, failed := s.failure("SerialDataAvail")
	s.mu.Unlock()
	if failed {
		return status
	}
	return s.serialTable.SerialDataAvail(fd)
}

func (s *Sim) ShiftIn(dPin, cPin, order uint8) uint8 {
	s.mu.Lock()
	s.record("ShiftIn", int(dPin), int(cPin), int(order))
	s.mu.Unlock()
	return shiftIn(s, dPin, cPin, order)
}

func (s *Sim) ShiftOut(dPin, cPin, order, val uint8) {
	s.mu.Lock()
	s.record("ShiftOut", int(dPin), int(cPin), int(order), int(val))
	s.mu.Unlock()
	shiftOut(s, dPin, cPin, order, val)
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.serialTable.closeAll()
	return nil
}

// Snapshot copies the state of every pin touched so far.
func (s *Sim) Snapshot() map[int]SimPin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]SimPin, len(s.pins))
	for n, p := range s.pins {
		out[n] = *p
	}
	return out
}
