//go:build !linux

package hardware

import "log/slog"

func promote(priority int) int {
	slog.Warn("Thread priority promotion is only supported on linux", "priority", priority)
	return -1
}
