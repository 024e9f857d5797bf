package wiring

import (
	"fmt"
	"log/slog"

	"lautenbacher.net/gowiring/hardware"
)

// I2CDevice is a device on the I2C bus, addressed by the descriptor its
// setup returned.
type I2CDevice struct {
	drv   hardware.Driver
	devID int
	fd    int
}

// SetupI2C opens the device at address devID. Only a status of exactly -1
// counts as failure, as with wiringPiI2CSetup.
func (l *Library) SetupI2C(devID int) (*I2CDevice, error) {
	fd := l.drv.I2CSetup(devID)
	if fd == -1 {
		return nil, &Error{Code: ErrHardwareFailure, Op: "i2c_setup", Pin: -1, Status: fd,
			Msg: fmt.Sprintf("no I2C device at %#02x", devID)}
	}
	slog.Debug("I2C device set up", "devID", devID, "fd", fd)
	return &I2CDevice{drv: l.drv, devID: devID, fd: fd}, nil
}

func (d *I2CDevice) Descriptor() int { return d.fd }

func (d *I2CDevice) Address() int { return d.devID }

// Read reads one byte without selecting a register.
func (d *I2CDevice) Read() (byte, error) {
	v := d.drv.I2CRead(d.fd)
	if v < 0 {
		return 0, hardwareFailure("i2c_read", -1, v)
	}
	return byte(v), nil
}

// Write writes one byte without selecting a register.
func (d *I2CDevice) Write(data byte) error {
	if status := d.drv.I2CWrite(d.fd, int(data)); status < 0 {
		return hardwareFailure("i2c_write", -1, status)
	}
	return nil
}

func (d *I2CDevice) ReadReg8(reg int) (byte, error) {
	v := d.drv.I2CReadReg8(d.fd, reg)
	if v < 0 {
		return 0, hardwareFailure("i2c_read_reg8", -1, v)
	}
	return byte(v), nil
}

func (d *I2CDevice) WriteReg8(reg int, data byte) error {
	if status := d.drv.I2CWriteReg8(d.fd, reg, int(data)); status < 0 {
		return hardwareFailure("i2c_write_reg8", -1, status)
	}
	return nil
}

// ReadReg16 reads a little endian word starting at reg.
func (d *I2CDevice) ReadReg16(reg int) (uint16, error) {
	v := d.drv.I2CReadReg16(d.fd, reg)
	if v < 0 {
		return 0, hardwareFailure("i2c_read_reg16", -1, v)
	}
	return uint16(v), nil
}

func (d *I2CDevice) WriteReg16(reg int, data uint16) error {
	if status := d.drv.I2CWriteReg16(d.fd, reg, int(data)); status < 0 {
		return hardwareFailure("i2c_write_reg16", -1, status)
	}
	return nil
}
