package hardware

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWpiToGpio(t *testing.T) {
	assert.Equal(t, 17, WpiToGpio(2, 0))
	assert.Equal(t, 27, WpiToGpio(2, 2))
	assert.Equal(t, 21, WpiToGpio(1, 2))
	assert.Equal(t, 2, WpiToGpio(2, 8))
	assert.Equal(t, 0, WpiToGpio(1, 8))
	assert.Equal(t, 14, WpiToGpio(2, 15))
	assert.Equal(t, 21, WpiToGpio(2, 29))
	assert.Equal(t, -1, WpiToGpio(1, 29))
	// numbers wrap at 64 the way wiringPi masks them
	assert.Equal(t, WpiToGpio(2, 1), WpiToGpio(2, 65))
}

func TestPhysToGpio(t *testing.T) {
	assert.Equal(t, 4, PhysToGpio(2, 7))
	assert.Equal(t, 14, PhysToGpio(2, 8))
	assert.Equal(t, 3, PhysToGpio(2, 5))
	assert.Equal(t, 1, PhysToGpio(1, 5))
	assert.Equal(t, -1, PhysToGpio(2, 1))
	assert.Equal(t, 21, PhysToGpio(2, 40))
	assert.Equal(t, -1, PhysToGpio(1, 40))
}

func TestGpioToWpi(t *testing.T) {
	assert.Equal(t, 7, GpioToWpi(2, 4))
	assert.Equal(t, 2, GpioToWpi(2, 27))
	assert.Equal(t, -1, GpioToWpi(2, 99))
	assert.Equal(t, -1, GpioToWpi(2, -1))
}

func TestGpioToPhys(t *testing.T) {
	assert.Equal(t, 7, GpioToPhys(2, 4))
	assert.Equal(t, 13, GpioToPhys(2, 27))
	assert.Equal(t, 13, GpioToPhys(1, 21))
	assert.Equal(t, -1, GpioToPhys(1, 27))
	assert.Equal(t, -1, GpioToPhys(2, -1))
}

func TestHeaderName(t *testing.T) {
	assert.Equal(t, "3.3v", HeaderName(2, 1))
	assert.Equal(t, "0v", HeaderName(2, 6))
	assert.Equal(t, "SDA.1", HeaderName(2, 3))
	assert.Equal(t, "SDA.0", HeaderName(1, 3))
	assert.Equal(t, "TxD", HeaderName(2, 8))
	assert.Equal(t, "GPIO. 7", HeaderName(2, 7))
	assert.Equal(t, "GPIO. 0", HeaderName(2, 11))
	assert.Equal(t, "", HeaderName(1, 40))
}

func TestParseBoardRevision(t *testing.T) {
	tests := []struct {
		name    string
		cpuinfo string
		want    int
	}{
		{"rev1", "processor\t: 0\nRevision\t: 0003\n", 1},
		{"rev1 overvolted", "Revision\t: 1000002\n", 1},
		{"rev2", "Revision\t: 000e\n", 2},
		{"new style", "Revision\t: a02082\n", 2},
		{"missing", "Hardware\t: BCM2835\n", 2},
		{"garbage", "Revision\t: zz\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseBoardRevision(bufio.NewScanner(strings.NewReader(tt.cpuinfo)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPinTablesAreComplete(t *testing.T) {
	for wpi := 0; wpi <= 16; wpi++ {
		assert.NotEqual(t, -1, WpiToGpio(1, wpi), "wpi %d on rev 1", wpi)
		assert.NotEqual(t, -1, WpiToGpio(2, wpi), "wpi %d on rev 2", wpi)
	}
	for phys := 1; phys <= 40; phys++ {
		_, power := PhysNames[phys]
		assert.NotEqual(t, power, PhysToGpio(2, phys) >= 0, "phys %d", phys)
	}
}
