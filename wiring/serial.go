package wiring

import (
	"fmt"
	"io"
	"log/slog"

	"lautenbacher.net/gowiring/hardware"
)

// SerialDevice is an open serial port. Besides the wiringSerial style calls
// it implements io.ReadWriteCloser.
type SerialDevice struct {
	drv    hardware.Driver
	fd     int
	device string
	baud   int
}

var _ io.ReadWriteCloser = (*SerialDevice)(nil)

// OpenSerial opens device at baud, 8N1.
func (l *Library) OpenSerial(device string, baud int) (*SerialDevice, error) {
	fd := l.drv.SerialOpen(device, baud)
	if fd == -1 {
		return nil, &Error{Code: ErrHardwareFailure, Op: "serial_open", Pin: -1, Status: fd,
			Msg: fmt.Sprintf("%s at %d baud", device, baud)}
	}
	slog.Debug("Serial device opened", "device", device, "baud", baud, "fd", fd)
	return &SerialDevice{drv: l.drv, fd: fd, device: device, baud: baud}, nil
}

func (d *SerialDevice) Descriptor() int { return d.fd }

func (d *SerialDevice) Device() string { return d.device }

func (d *SerialDevice) Close() error {
	d.drv.SerialClose(d.fd)
	return nil
}

func (d *SerialDevice) PutChar(c byte) {
	d.drv.SerialPutchar(d.fd, c)
}

func (d *SerialDevice) PutString(s string) {
	d.drv.SerialPuts(d.fd, s)
}

func (d *SerialDevice) Printf(format string, args ...any) {
	d.PutString(fmt.Sprintf(format, args...))
}

// DataAvailable reports how many received bytes are waiting.
func (d *SerialDevice) DataAvailable() (int, error) {
	n := d.drv.SerialDataAvail(d.fd)
	if n < 0 {
		return 0, hardwareFailure("serial_data_available", -1, n)
	}
	return n, nil
}

// GetChar waits up to hardware.SerialReadTimeout for a byte.
func (d *SerialDevice) GetChar() (byte, error) {
	c := d.drv.SerialGetchar(d.fd)
	if c < 0 {
		return 0, &Error{Code: ErrHardwareFailure, Op: "serial_get_char", Pin: -1, Status: c,
			Msg: "nothing received within " + hardware.SerialReadTimeout.String()}
	}
	return byte(c), nil
}

// Flush discards received data not read yet.
func (d *SerialDevice) Flush() {
	d.drv.SerialFlush(d.fd)
}

// Read blocks for the first byte like GetChar, then takes whatever else is
// already waiting.
func (d *SerialDevice) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c, err := d.GetChar()
	if err != nil {
		return 0, err
	}
	p[0] = c
	n := 1
	for n < len(p) {
		avail, err := d.DataAvailable()
		if err != nil || avail == 0 {
			break
		}
		c, err := d.GetChar()
		if err != nil {
			break
		}
		p[n] = c
		n++
	}
	return n, nil
}

func (d *SerialDevice) Write(p []byte) (int, error) {
	for _, c := range p {
		d.drv.SerialPutchar(d.fd, c)
	}
	return len(p), nil
}
