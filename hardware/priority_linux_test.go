//go:build linux

package hardware

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func stubSchedSetAttr(t *testing.T, fn func(pid int, attr *unix.SchedAttr, flags uint) error) {
	t.Helper()
	orig := schedSetAttr
	schedSetAttr = fn
	t.Cleanup(func() { schedSetAttr = orig })
}

func TestPromoteKeepsGoroutineOnPromotedThread(t *testing.T) {
	var promotedTid int
	var got unix.SchedAttr
	stubSchedSetAttr(t, func(pid int, attr *unix.SchedAttr, flags uint) error {
		promotedTid = unix.Gettid()
		got = *attr
		return nil
	})

	done := make(chan []int)
	go func() {
		assert.Equal(t, 0, promote(150))
		var tids []int
		for i := 0; i < 50; i++ {
			runtime.Gosched()
			tids = append(tids, unix.Gettid())
		}
		done <- tids
	}()
	for _, tid := range <-done {
		assert.Equal(t, promotedTid, tid)
	}
	assert.Equal(t, uint32(unix.SCHED_RR), got.Policy)
	assert.Equal(t, uint32(maxPriority), got.Priority)
}

func TestPromoteFailure(t *testing.T) {
	stubSchedSetAttr(t, func(pid int, attr *unix.SchedAttr, flags uint) error {
		return errors.New("operation not permitted")
	})

	done := make(chan int)
	go func() { done <- promote(10) }()
	assert.Equal(t, -1, <-done)
}
