package hardware

import (
	"sync"
	"time"
)

// epochClock implements Clock relative to the moment setup ran.
type epochClock struct {
	mu    sync.RWMutex
	epoch time.Time
}

func (c *epochClock) start() {
	c.mu.Lock()
	c.epoch = time.Now()
	c.mu.Unlock()
}

func (c *epochClock) since() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.epoch.IsZero() {
		return 0
	}
	return time.Since(c.epoch)
}

// Millis wraps after roughly 49 days.
func (c *epochClock) Millis() uint32 {
	return uint32(c.since().Milliseconds())
}

// Micros wraps after roughly 71 minutes.
func (c *epochClock) Micros() uint32 {
	return uint32(c.since().Microseconds())
}

func (c *epochClock) Delay(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// DelayMicroseconds spins for short delays where the scheduler would
// overshoot, and sleeps for anything of 100us or more.
func (c *epochClock) DelayMicroseconds(us uint32) {
	d := time.Duration(us) * time.Microsecond
	if us == 0 {
		return
	}
	if us < 100 {
		deadline := time.Now().Add(d)
		for time.Now().Before(deadline) {
		}
		return
	}
	time.Sleep(d)
}
