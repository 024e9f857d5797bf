package hardware

import (
	"log/slog"
	"sync"
	"time"

	"lautenbacher.net/gowiring/util"
)

// numbering is the pin numbering scheme chosen by the setup call.
type numbering int

const (
	numberingNone numbering = iota
	numberingWpi
	numberingGpio
	numberingPhys
	numberingSys
)

func (n numbering) String() string {
	switch n {
	case numberingWpi:
		return "wiringPi"
	case numberingGpio:
		return "gpio"
	case numberingPhys:
		return "phys"
	case numberingSys:
		return "sys"
	default:
		return "none"
	}
}

// isrPollInterval is how often edge detection is checked by backends that
// can't block on an edge.
const isrPollInterval = time.Millisecond

// native carries what the go-native backends share: numbering translation,
// the setup clock, board data, PWM generator settings and the serial and
// I2C tables.
type native struct {
	*serialTable
	*i2cTable
	epochClock

	mu         sync.Mutex
	scheme     numbering
	rev        int
	pwmMode    int
	pwmRange   uint32
	pwmDivisor int
	modes      map[int]int

	isrStop chan struct{}
	isrWg   sync.WaitGroup
}

func newNative() *native {
	return &native{
		serialTable: newSerialTable(openTarm),
		i2cTable:    newI2CTable(""),
		rev:         2,
		pwmMode:     PwmModeBalanced,
		pwmRange:    defaultPwmRange,
		pwmDivisor:  defaultPwmDivisor,
		modes:       make(map[int]int),
		isrStop:     make(chan struct{}),
	}
}

func (n *native) setup(scheme numbering) {
	rev := boardRevision()
	n.mu.Lock()
	n.scheme = scheme
	n.rev = rev
	n.mu.Unlock()
	n.start()
	slog.Info("Hardware set up", "numbering", scheme.String(), "boardRev", rev)
}

func (n *native) isSys() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scheme == numberingSys
}

// gpio translates a caller pin number into a Broadcom number, -1 when the
// position carries no GPIO.
func (n *native) gpio(pin int) int {
	n.mu.Lock()
	scheme, rev := n.scheme, n.rev
	n.mu.Unlock()
	g := translate(scheme, rev, pin)
	if g < 0 {
		slog.Debug("Pin has no GPIO", "pin", pin, "numbering", scheme.String())
	}
	return g
}

// translate maps a pin number in scheme to a Broadcom number, -1 when the
// position carries no GPIO.
func translate(scheme numbering, rev, pin int) int {
	var g int
	switch scheme {
	case numberingWpi:
		g = WpiToGpio(rev, pin)
	case numberingPhys:
		g = PhysToGpio(rev, pin)
	default:
		g = pin
	}
	if g < 0 || g > 53 {
		return -1
	}
	return g
}

// untranslate is the reverse of translate: the number scheme uses for a
// Broadcom GPIO, -1 when scheme can't address it.
func untranslate(scheme numbering, rev, gpio int) int {
	if gpio < 0 {
		return -1
	}
	switch scheme {
	case numberingWpi:
		return GpioToWpi(rev, gpio)
	case numberingPhys:
		return GpioToPhys(rev, gpio)
	}
	return gpio
}

// byteGpios lists the Broadcom numbers of wiringPi pins 0..7, least
// significant bit first. DigitalWriteByte drives these whatever numbering
// was set up.
func byteGpios(rev int) [8]int {
	var gs [8]int
	for i := range gs {
		gs[i] = WpiToGpio(rev, i)
	}
	return gs
}

func (n *native) recordMode(g, mode int) {
	n.mu.Lock()
	n.modes[g] = mode
	n.mu.Unlock()
}

func (n *native) GetAlt(pin int) int {
	g := n.gpio(pin)
	n.mu.Lock()
	defer n.mu.Unlock()
	if mode, ok := n.modes[g]; ok {
		return altForMode(g, mode)
	}
	return -1
}

func (n *native) pinsInMode(mode int) []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var pins []int
	for g, m := range n.modes {
		if m == mode {
			pins = append(pins, g)
		}
	}
	return pins
}

func (n *native) PiBoardRev() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rev
}

func (n *native) WpiPinToGpio(pin int) int {
	return WpiToGpio(n.PiBoardRev(), pin)
}

func (n *native) PhysPinToGpio(pin int) int {
	return PhysToGpio(n.PiBoardRev(), pin)
}

func (n *native) PiHiPri(priority int) int {
	return promote(priority)
}

func (n *native) PwmSetMode(mode int) {
	n.mu.Lock()
	n.pwmMode = mode
	n.mu.Unlock()
}

func (n *native) PwmSetRange(rng uint32) {
	n.mu.Lock()
	n.pwmRange = rng
	n.mu.Unlock()
}

func (n *native) pwmSettings() (rng uint32, divisor int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rng = n.pwmRange
	if rng == 0 {
		rng = 1
	}
	divisor = util.Clamp(n.pwmDivisor, 1, 4095)
	return rng, divisor
}

// AnalogRead has nothing to sample: the Pi has no on-board ADC.
func (n *native) AnalogRead(pin int) int {
	return 0
}

func (n *native) AnalogWrite(pin, value int) {
	slog.Debug("No analog output on this board", "pin", pin, "value", value)
}

// goISR runs poll until the backend closes. poll blocks for at most a short
// interval and reports whether an edge was seen.
func (n *native) goISR(pin int, poll func() bool, fn func()) {
	n.isrWg.Add(1)
	go func() {
		defer n.isrWg.Done()
		for {
			select {
			case <-n.isrStop:
				return
			default:
			}
			if poll() {
				slog.Debug("Edge detected", "pin", pin)
				go fn()
			}
		}
	}()
}

func (n *native) closeNative() {
	select {
	case <-n.isrStop:
	default:
		close(n.isrStop)
	}
	n.isrWg.Wait()
	n.serialTable.closeAll()
	n.i2cTable.closeAll()
}

func edgeName(edge int) string {
	switch edge {
	case EdgeFalling:
		return "falling"
	case EdgeRising:
		return "rising"
	case EdgeBoth:
		return "both"
	default:
		return "setup"
	}
}
