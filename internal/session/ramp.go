package session

import "time"

// Ramp is a stepwise speed-up: the interval shrinks by Step once per
// completed Every of elapsed time, never going below Floor.
type Ramp struct {
	Initial time.Duration
	Step    time.Duration
	Every   time.Duration
	Floor   time.Duration
}

// At returns the interval in effect after elapsed time.
func (r Ramp) At(elapsed time.Duration) time.Duration {
	if r.Every <= 0 || elapsed < 0 {
		return max(r.Initial, r.Floor)
	}
	steps := (elapsed + slack) / r.Every
	return max(r.Floor, r.Initial-time.Duration(steps)*r.Step)
}

// Scale multiplies every duration of the ramp by f (difficulty presets).
func (r Ramp) Scale(f float64) Ramp {
	if f <= 0 {
		return r
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	return Ramp{
		Initial: scale(r.Initial),
		Step:    scale(r.Step),
		Every:   r.Every,
		Floor:   scale(r.Floor),
	}
}
