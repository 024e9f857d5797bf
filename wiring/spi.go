package wiring

import (
	"fmt"
	"log/slog"

	"lautenbacher.net/gowiring/hardware"
)

// SpiChannel selects the chip select line of SPI0.
type SpiChannel int

const (
	Channel0 SpiChannel = iota
	Channel1
)

// SPIDevice exchanges data with the device on one chip select.
type SPIDevice struct {
	drv     hardware.Driver
	channel SpiChannel
	speed   int
}

// SetupSPI opens a channel at speed Hz. The controller handles 500kHz up to
// 32MHz; the value is passed on unchecked.
func (l *Library) SetupSPI(channel SpiChannel, speed int) (*SPIDevice, error) {
	if status := l.drv.SPISetup(int(channel), speed); status < 0 {
		return nil, &Error{Code: ErrHardwareFailure, Op: "spi_setup", Pin: -1, Status: status,
			Msg: fmt.Sprintf("channel %d at %dHz", channel, speed)}
	}
	slog.Debug("SPI channel set up", "channel", int(channel), "speed", speed)
	return &SPIDevice{drv: l.drv, channel: channel, speed: speed}, nil
}

func (d *SPIDevice) Channel() SpiChannel { return d.channel }

func (d *SPIDevice) Speed() int { return d.speed }

// ReadWrite clocks buf out and replaces its contents with what came back.
func (d *SPIDevice) ReadWrite(buf []byte) error {
	if status := d.drv.SPIDataRW(int(d.channel), buf); status < 0 {
		return hardwareFailure("spi_read_write", -1, status)
	}
	return nil
}
