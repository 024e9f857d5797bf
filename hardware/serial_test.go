package hardware

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackTable(timeout time.Duration) *serialTable {
	t := newSerialTable(func(string, int) (io.ReadWriteCloser, error) {
		return newLoopbackPort(), nil
	})
	t.timeout = timeout
	return t
}

func TestSerialLoopback(t *testing.T) {
	table := loopbackTable(time.Second)
	t.Cleanup(table.closeAll)

	fd := table.SerialOpen("/dev/ttyAMA0", 9600)
	require.GreaterOrEqual(t, fd, 0)

	table.SerialPutchar(fd, 'A')
	table.SerialPuts(fd, "BC")
	assert.Eventually(t, func() bool { return table.SerialDataAvail(fd) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int('A'), table.SerialGetchar(fd))
	assert.Equal(t, int('B'), table.SerialGetchar(fd))
	assert.Equal(t, 1, table.SerialDataAvail(fd))

	table.SerialFlush(fd)
	assert.Equal(t, 0, table.SerialDataAvail(fd))
}

func TestSerialGetcharTimesOut(t *testing.T) {
	table := loopbackTable(20 * time.Millisecond)
	t.Cleanup(table.closeAll)
	fd := table.SerialOpen("/dev/ttyS0", 115200)

	start := time.Now()
	assert.Equal(t, -1, table.SerialGetchar(fd))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSerialUnknownDescriptor(t *testing.T) {
	table := loopbackTable(time.Second)
	assert.Equal(t, -1, table.SerialDataAvail(42))
	assert.Equal(t, -1, table.SerialGetchar(42))
	table.SerialPuts(42, "ignored")
	table.SerialFlush(42)
	table.SerialClose(42)
}

func TestSerialOpenFailure(t *testing.T) {
	table := newSerialTable(func(string, int) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	})
	assert.Equal(t, -1, table.SerialOpen("/dev/nothing", 9600))
}

func TestSerialCloseReleasesDescriptor(t *testing.T) {
	table := loopbackTable(time.Second)
	fd := table.SerialOpen("/dev/ttyAMA0", 9600)
	other := table.SerialOpen("/dev/ttyAMA0", 9600)
	assert.NotEqual(t, fd, other)

	table.SerialClose(fd)
	assert.Equal(t, -1, table.SerialDataAvail(fd))
	assert.Equal(t, 0, table.SerialDataAvail(other))
	table.closeAll()
	assert.Equal(t, -1, table.SerialDataAvail(other))
}
