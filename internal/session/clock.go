// Package session holds the lifecycle shared by every mini-game: a cooperative
// clock with periodic and one-shot timers, the ready/playing/ended phase
// machine, the in-memory best score and ordered entity collections.
package session

import "time"

// slack absorbs rounding when fixed ticks do not divide an interval exactly
// (e.g. 60 ticks of time.Second/60).
const slack = time.Microsecond

// Timer is a callback registered on a Clock.
type Timer struct {
	interval time.Duration
	acc      time.Duration
	fn       func()
	once     bool
	dead     bool
}

// SetInterval changes the period of the timer. Accumulated time is kept,
// so a shorter interval may fire on the next Advance.
func (t *Timer) SetInterval(d time.Duration) {
	t.interval = d
}

// Interval returns the current period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Cancel prevents any further firing.
func (t *Timer) Cancel() {
	t.dead = true
}

// Active reports whether the timer can still fire.
func (t *Timer) Active() bool {
	return !t.dead
}

// Clock is a single cooperative tick source. The platform calls Advance
// once per simulation step; timers fire from inside Advance, in
// registration order, never concurrently.
type Clock struct {
	timers  []*Timer
	running bool
	elapsed time.Duration
}

// NewClock creates a stopped clock.
func NewClock() *Clock {
	return &Clock{}
}

// Every registers a periodic timer.
func (c *Clock) Every(interval time.Duration, fn func()) *Timer {
	t := &Timer{interval: interval, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// After registers a one-shot timer.
func (c *Clock) After(delay time.Duration, fn func()) *Timer {
	t := &Timer{interval: delay, fn: fn, once: true}
	c.timers = append(c.timers, t)
	return t
}

// Start marks the clock running and rewinds elapsed time and every timer.
// Starting a running clock is a no-op.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.running = true
	c.elapsed = 0
	for _, t := range c.timers {
		t.acc = 0
	}
}

// Stop cancels every timer. It is idempotent and safe at any time,
// including from inside a timer callback.
func (c *Clock) Stop() {
	c.running = false
	for _, t := range c.timers {
		t.dead = true
	}
	c.timers = nil
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool {
	return c.running
}

// Elapsed returns the time advanced since Start.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Advance moves the clock forward by dt and fires due timers. A timer whose
// interval elapsed several times fires once per interval. A callback that
// stops the clock prevents every later callback of the same Advance.
func (c *Clock) Advance(dt time.Duration) {
	if !c.running || dt <= 0 {
		return
	}
	c.elapsed += dt

	// Timers registered by callbacks start accumulating on the next Advance.
	due := c.timers
	for _, t := range due {
		if t.dead {
			continue
		}
		t.acc += dt
		for !t.dead && t.acc+slack >= t.interval {
			if t.interval > 0 {
				t.acc -= t.interval
			} else {
				t.acc = 0
			}
			if t.once {
				t.dead = true
			}
			t.fn()
			if !c.running {
				return
			}
			if t.interval <= 0 {
				break
			}
		}
	}
	c.compact()
}

func (c *Clock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.dead {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = live
}

// Pending returns the number of live timers.
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.dead {
			n++
		}
	}
	return n
}
