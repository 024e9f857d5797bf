package hardware

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Pin number tables, indexed by wiringPi or physical pin number (masked to
// 0..63). -1 marks an unconnected position.
var (
	wpiToGpioR1 = [64]int{
		17, 18, 21, 22, 23, 24, 25, 4, // 0..7
		0, 1, // I2C
		8, 7, // SPI CE0, CE1
		10, 9, 11, // SPI MOSI, MISO, SCLK
		14, 15, // UART
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	}

	wpiToGpioR2 = [64]int{
		17, 18, 27, 22, 23, 24, 25, 4, // 0..7
		2, 3, // I2C
		8, 7, // SPI CE0, CE1
		10, 9, 11, // SPI MOSI, MISO, SCLK
		14, 15, // UART
		28, 29, 30, 31, // P5 connector
		5, 6, 13, 19, 26, // B+ 21..25
		12, 16, 20, 21, // B+ 26..29
		0, 1, // B+ ID EEPROM
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	}

	physToGpioR1 = [64]int{
		-1,
		-1, -1,
		0, -1,
		1, -1,
		4, 14,
		-1, 15,
		17, 18,
		21, -1,
		22, 23,
		-1, 24,
		10, -1,
		9, 25,
		11, 8,
		-1, 7,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	}

	physToGpioR2 = [64]int{
		-1,
		-1, -1,
		2, -1,
		3, -1,
		4, 14,
		-1, 15,
		17, 18,
		27, -1,
		22, 23,
		-1, 24,
		10, -1,
		9, 25,
		11, 8,
		-1, 7,
		0, 1, // B+ 27, 28
		5, -1,
		6, 12,
		13, -1,
		19, 16,
		26, 20,
		-1, 21,
		-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, // 41..50
		28, 29, 30, 31, // P5 connector 51..54
		-1, -1, -1, -1, -1, -1, -1, -1, -1,
	}
)

// PhysNames labels the power and ground positions of the 40 pin header.
// Positions carrying a GPIO are labelled by HeaderName.
var PhysNames = map[int]string{
	1: "3.3v", 2: "5v", 4: "5v", 6: "0v", 9: "0v", 14: "0v", 17: "3.3v",
	20: "0v", 25: "0v", 30: "0v", 34: "0v", 39: "0v",
}

var gpioNames = map[int]string{
	2: "SDA.1", 3: "SCL.1", 14: "TxD", 15: "RxD",
	10: "MOSI", 9: "MISO", 11: "SCLK", 8: "CE0", 7: "CE1",
	0: "SDA.0", 1: "SCL.0",
}

// WpiToGpio maps a wiringPi pin to its Broadcom number for a board revision.
func WpiToGpio(rev, pin int) int {
	if rev == 1 {
		return wpiToGpioR1[pin&63]
	}
	return wpiToGpioR2[pin&63]
}

// PhysToGpio maps a P1 header position to its Broadcom number.
func PhysToGpio(rev, pin int) int {
	if rev == 1 {
		return physToGpioR1[pin&63]
	}
	return physToGpioR2[pin&63]
}

// GpioToWpi is the reverse of WpiToGpio, -1 when the GPIO has no wiringPi
// number.
func GpioToWpi(rev, gpio int) int {
	table := &wpiToGpioR2
	if rev == 1 {
		table = &wpiToGpioR1
	}
	for wpi, g := range table {
		if g == gpio && gpio >= 0 {
			return wpi
		}
	}
	return -1
}

// GpioToPhys returns the header position carrying a GPIO, -1 when it isn't
// on the header.
func GpioToPhys(rev, gpio int) int {
	table := &physToGpioR2
	if rev == 1 {
		table = &physToGpioR1
	}
	for phys, g := range table {
		if g == gpio && gpio >= 0 {
			return phys
		}
	}
	return -1
}

// HeaderName returns the readall label for a header position.
func HeaderName(rev, phys int) string {
	if name, ok := PhysNames[phys]; ok {
		return name
	}
	gpio := PhysToGpio(rev, phys)
	if gpio < 0 {
		return ""
	}
	if name, ok := gpioNames[gpio]; ok {
		return name
	}
	return "GPIO. " + strconv.Itoa(GpioToWpi(rev, gpio))
}

// boardRevision returns 1 for the original Model B boards and 2 for
// everything newer, following wiringPi's piBoardRev.
func boardRevision() int {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		slog.Debug("Can't read cpuinfo, assuming board revision 2", "error", err)
		return 2
	}
	defer f.Close()
	return parseBoardRevision(bufio.NewScanner(f))
}

func parseBoardRevision(s *bufio.Scanner) int {
	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Revision" {
			continue
		}
		value = strings.TrimSpace(value)
		code, err := strconv.ParseUint(value, 16, 32)
		if err != nil {
			slog.Debug("Unparsable board revision", "revision", value)
			return 2
		}
		// New style revision codes carry bit 23.
		if code&(1<<23) != 0 {
			return 2
		}
		// Over-volted boards prefix 1000 in front of the old code.
		switch code & 0xffff {
		case 0x0002, 0x0003:
			return 1
		}
		return 2
	}
	return 2
}
