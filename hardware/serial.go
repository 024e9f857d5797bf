package hardware

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/tarm/serial"
	"lautenbacher.net/gowiring/util"
)

// serialPollInterval bounds how long a blocking port read may take, so the
// reader goroutine notices Close.
const serialPollInterval = 100 * time.Millisecond

type serialOpener func(device string, baud int) (io.ReadWriteCloser, error)

func openTarm(device string, baud int) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: serialPollInterval,
	})
}

// serialTable hands out descriptors for open ports and buffers what each
// port receives, which is what wiringSerial's avail/getchar calls need.
type serialTable struct {
	mu      sync.Mutex
	open    serialOpener
	ports   map[int]*serialPort
	nextFD  int
	timeout time.Duration
}

func newSerialTable(open serialOpener) *serialTable {
	return &serialTable{
		open:    open,
		ports:   make(map[int]*serialPort),
		nextFD:  3,
		timeout: SerialReadTimeout,
	}
}

type serialPort struct {
	device  string
	rwc     io.ReadWriteCloser
	mu      sync.Mutex
	rx      deque.Deque[byte]
	ready   *util.Signal
	closing chan struct{}
	stopped chan struct{}
}

func (t *serialTable) SerialOpen(device string, baud int) int {
	rwc, err := t.open(device, baud)
	if err != nil {
		slog.Error("Failed to open serial device", "device", device, "baud", baud, "error", err)
		return -1
	}
	p := &serialPort{
		device:  device,
		rwc:     rwc,
		ready:   util.NewSignal(),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.readLoop()

	t.mu.Lock()
	defer t.mu.Unlock()
	fd := t.nextFD
	t.nextFD++
	t.ports[fd] = p
	slog.Debug("Serial device opened", "device", device, "baud", baud, "fd", fd)
	return fd
}

func (t *serialTable) port(fd int) *serialPort {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ports[fd]
}

func (t *serialTable) SerialClose(fd int) {
	t.mu.Lock()
	p := t.ports[fd]
	delete(t.ports, fd)
	t.mu.Unlock()
	if p != nil {
		p.close()
	}
}

func (t *serialTable) SerialPutchar(fd int, c byte) {
	t.write(fd, []byte{c})
}

func (t *serialTable) SerialPuts(fd int, s string) {
	t.write(fd, []byte(s))
}

func (t *serialTable) write(fd int, b []byte) {
	p := t.port(fd)
	if p == nil {
		slog.Warn("Write to unknown serial descriptor", "fd", fd)
		return
	}
	if _, err := p.rwc.Write(b); err != nil {
		slog.Error("Serial write failed", "device", p.device, "error", err)
	}
}

func (t *serialTable) SerialDataAvail(fd int) int {
	p := t.port(fd)
	if p == nil {
		return -1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.Len()
}

func (t *serialTable) SerialGetchar(fd int) int {
	p := t.port(fd)
	if p == nil {
		return -1
	}
	return p.getchar(t.timeout)
}

// SerialFlush discards everything received but not yet read.
func (t *serialTable) SerialFlush(fd int) {
	p := t.port(fd)
	if p == nil {
		return
	}
	p.mu.Lock()
	p.rx.Clear()
	p.mu.Unlock()
}

func (t *serialTable) closeAll() {
	t.mu.Lock()
	ports := t.ports
	t.ports = make(map[int]*serialPort)
	t.mu.Unlock()
	for _, p := range ports {
		p.close()
	}
}

func (p *serialPort) readLoop() {
	defer close(p.stopped)
	buf := make([]byte, 64)
	for {
		n, err := p.rwc.Read(buf)
		if n > 0 {
			p.mu.Lock()
			for _, b := range buf[:n] {
				p.rx.PushBack(b)
			}
			p.mu.Unlock()
			p.ready.Raise()
		}
		select {
		case <-p.closing:
			return
		default:
		}
		// A read timeout surfaces as EOF.
		if err != nil && !errors.Is(err, io.EOF) {
			slog.Error("Serial read failed", "device", p.device, "error", err)
			return
		}
	}
}

func (p *serialPort) getchar(timeout time.Duration) int {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		p.mu.Lock()
		if p.rx.Len() > 0 {
			b := p.rx.PopFront()
			p.mu.Unlock()
			return int(b)
		}
		p.mu.Unlock()

		select {
		case <-p.ready.C():
		case <-p.stopped:
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.rx.Len() > 0 {
				return int(p.rx.PopFront())
			}
			return -1
		case <-timer.C:
			return -1
		}
	}
}

func (p *serialPort) close() {
	close(p.closing)
	if err := p.rwc.Close(); err != nil {
		slog.Warn("Error closing serial device", "device", p.device, "error", err)
	}
	<-p.stopped
	slog.Debug("Serial device closed", "device", p.device)
}

// loopbackPort is a TX-to-RX jumper: everything written is read back.
type loopbackPort struct {
	*io.PipeReader
	*io.PipeWriter
}

func newLoopbackPort() *loopbackPort {
	r, w := io.Pipe()
	return &loopbackPort{PipeReader: r, PipeWriter: w}
}

func (l *loopbackPort) Close() error {
	l.PipeWriter.Close()
	return l.PipeReader.Close()
}
