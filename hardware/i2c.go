package hardware

import (
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// i2cTable implements the I2C surface on top of periph.io's bus registry.
// Register reads and writes use the SMBus byte/word layout, words little
// endian.
type i2cTable struct {
	mu      sync.Mutex
	busName string
	bus     i2c.BusCloser
	devs    map[int]*i2c.Dev
	nextFD  int
}

func newI2CTable(busName string) *i2cTable {
	return &i2cTable{
		busName: busName,
		devs:    make(map[int]*i2c.Dev),
		nextFD:  3,
	}
}

func (t *i2cTable) I2CSetup(devID int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bus == nil {
		if _, err := host.Init(); err != nil {
			slog.Error("Failed to init periph host for I2C", "error", err)
			return -1
		}
		bus, err := i2creg.Open(t.busName)
		if err != nil {
			slog.Error("Failed to open I2C bus", "bus", t.busName, "error", err)
			return -1
		}
		t.bus = bus
	}
	fd := t.nextFD
	t.nextFD++
	t.devs[fd] = &i2c.Dev{Bus: t.bus, Addr: uint16(devID)}
	slog.Debug("I2C device set up", "devID", devID, "fd", fd)
	return fd
}

func (t *i2cTable) dev(fd int) *i2c.Dev {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.devs[fd]
}

func (t *i2cTable) tx(fd int, w, r []byte) int {
	d := t.dev(fd)
	if d == nil {
		return -1
	}
	if err := d.Tx(w, r); err != nil {
		slog.Debug("I2C transaction failed", "addr", d.Addr, "error", err)
		return -1
	}
	return 0
}

func (t *i2cTable) I2CRead(fd int) int {
	r := make([]byte, 1)
	if t.tx(fd, nil, r) < 0 {
		return -1
	}
	return int(r[0])
}

func (t *i2cTable) I2CWrite(fd, data int) int {
	return t.tx(fd, []byte{byte(data)}, nil)
}

func (t *i2cTable) I2CReadReg8(fd, reg int) int {
	r := make([]byte, 1)
	if t.tx(fd, []byte{byte(reg)}, r) < 0 {
		return -1
	}
	return int(r[0])
}

func (t *i2cTable) I2CWriteReg8(fd, reg, data int) int {
	return t.tx(fd, []byte{byte(reg), byte(data)}, nil)
}

func (t *i2cTable) I2CReadReg16(fd, reg int) int {
	r := make([]byte, 2)
	if t.tx(fd, []byte{byte(reg)}, r) < 0 {
		return -1
	}
	return int(r[0]) | int(r[1])<<8
}

func (t *i2cTable) I2CWriteReg16(fd, reg, data int) int {
	return t.tx(fd, []byte{byte(reg), byte(data), byte(data >> 8)}, nil)
}

func (t *i2cTable) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devs = make(map[int]*i2c.Dev)
	if t.bus != nil {
		if err := t.bus.Close(); err != nil {
			slog.Warn("Error closing I2C bus", "error", err)
		}
		t.bus = nil
	}
}
