//go:build linux

package hardware

import (
	"log/slog"
	"runtime"

	"golang.org/x/sys/unix"
	"lautenbacher.net/gowiring/util"
)

var schedSetAttr = unix.SchedSetAttr

// promote moves the calling thread to round-robin real-time scheduling and
// locks the calling goroutine to it, so the promoted thread keeps running
// the caller's code. The lock is kept for the life of the goroutine.
// It only succeeds with CAP_SYS_NICE, normally meaning root.
func promote(priority int) int {
	runtime.LockOSThread()
	attr := &unix.SchedAttr{
		Policy:   unix.SCHED_RR,
		Priority: uint32(util.Clamp(priority, 0, maxPriority)),
	}
	if err := schedSetAttr(0, attr, 0); err != nil {
		runtime.UnlockOSThread()
		slog.Warn("Failed to promote thread priority", "priority", priority, "error", err)
		return -1
	}
	slog.Debug("Thread promoted", "priority", attr.Priority, "tid", unix.Gettid())
	return 0
}
